package damage

import (
	"image"
	"testing"
)

func rect(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(x0, y0, x1, y1)
}

func TestEmpty(t *testing.T) {
	d := New()
	if d.Dirty() != 0 {
		t.Fatalf("Dirty() = %d, want 0", d.Dirty())
	}
	if !d.Region().IsEmpty() {
		t.Fatal("Region() of empty damage is not empty")
	}
}

func TestAddBoxSkipsEmpty(t *testing.T) {
	d := New()
	d = d.AddBox(image.Rectangle{})
	d = d.AddBox(rect(5, 5, 5, 10))
	if d.Dirty() != 0 {
		t.Fatalf("Dirty() = %d after empty boxes, want 0", d.Dirty())
	}
}

func TestReduceMergesAdjacent(t *testing.T) {
	d := New()
	d = d.AddBox(rect(0, 0, 10, 10))
	d = d.AddBox(rect(10, 0, 20, 10))
	r := d.Region()
	if got := r.NumRects(); got != 1 {
		t.Fatalf("NumRects() = %d, want 1 (horizontally adjacent boxes merge)", got)
	}
	if got := r.Extents(); got != rect(0, 0, 20, 10) {
		t.Fatalf("Extents() = %v, want %v", got, rect(0, 0, 20, 10))
	}
	if d.Dirty() != 0 {
		t.Fatalf("Dirty() = %d after Region(), want 0", d.Dirty())
	}
}

func TestReducePreservesArea(t *testing.T) {
	boxes := []image.Rectangle{
		rect(0, 0, 10, 10),
		rect(5, 5, 15, 15),
		rect(20, 20, 30, 30),
	}
	d := New().AddBoxes(boxes)
	r := d.Region()

	// Every damaged pixel is covered, and nothing else.
	for y := -2; y < 35; y++ {
		for x := -2; x < 35; x++ {
			want := false
			for _, b := range boxes {
				if (image.Point{x, y}).In(b) {
					want = true
					break
				}
			}
			if got := r.ContainsPoint(x, y); got != want {
				t.Fatalf("ContainsPoint(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestReduceAccumulates(t *testing.T) {
	d := New()
	d = d.AddBox(rect(0, 0, 4, 4)).Reduce()
	d = d.AddBox(rect(100, 100, 104, 104)).Reduce()
	r := d.Region()
	if !r.ContainsRect(rect(0, 0, 4, 4)) || !r.ContainsRect(rect(100, 100, 104, 104)) {
		t.Fatal("earlier reduced damage lost after second Reduce")
	}
}

func TestGrowthBeyondInline(t *testing.T) {
	d := New()
	const n = 5 * inlineBoxes
	for i := 0; i < n; i++ {
		d = d.AddBox(rect(i*10, 0, i*10+5, 5))
	}
	if d.Dirty() != n {
		t.Fatalf("Dirty() = %d, want %d", d.Dirty(), n)
	}
	r := d.Region()
	if got := r.NumRects(); got != n {
		t.Fatalf("NumRects() = %d, want %d (disjoint boxes stay separate)", got, n)
	}
	for i := 0; i < n; i++ {
		if !r.ContainsRect(rect(i*10, 0, i*10+5, 5)) {
			t.Fatalf("box %d missing after growth past inline storage", i)
		}
	}
}

func TestAddBoxesBatchGrowth(t *testing.T) {
	boxes := make([]image.Rectangle, 0, 3*inlineBoxes)
	for i := 0; i < cap(boxes); i++ {
		boxes = append(boxes, rect(0, i*2, 1, i*2+1))
	}
	d := New().AddBoxes(boxes)
	if d.Dirty() != len(boxes) {
		t.Fatalf("Dirty() = %d, want %d", d.Dirty(), len(boxes))
	}
	if got := d.Region().NumRects(); got != len(boxes) {
		t.Fatalf("NumRects() = %d, want %d", got, len(boxes))
	}
}

func TestAddBoxesFillsTailThenGrowsOnce(t *testing.T) {
	boxes := make([]image.Rectangle, 70)
	for i := range boxes {
		boxes[i] = rect(i, 0, i+1, 1)
	}
	d := New().AddBoxes(boxes)

	if d.head.count != inlineBoxes {
		t.Fatalf("inline chunk holds %d boxes, want all %d filled before growing", d.head.count, inlineBoxes)
	}
	chunks := 0
	for c := d.head.next; c != nil; c = c.next {
		chunks++
	}
	if chunks != 1 {
		t.Fatalf("batch allocated %d heap chunks, want 1", chunks)
	}
	if d.Dirty() != len(boxes) {
		t.Fatalf("Dirty() = %d, want %d", d.Dirty(), len(boxes))
	}
}

func TestAddBoxesAfterPartialFill(t *testing.T) {
	d := New()
	for i := 0; i < 5; i++ {
		d = d.AddBox(rect(i, 0, i+1, 1))
	}
	boxes := make([]image.Rectangle, inlineBoxes)
	for i := range boxes {
		boxes[i] = rect(i, 2, i+1, 3)
	}
	d = d.AddBoxes(boxes)

	if d.head.count != inlineBoxes {
		t.Fatalf("inline chunk holds %d boxes, want its free slots used first", d.head.count)
	}
	chunks := 0
	for c := d.head.next; c != nil; c = c.next {
		chunks++
	}
	if chunks != 1 {
		t.Fatalf("overflow allocated %d heap chunks, want 1", chunks)
	}
}

func TestAddRegion(t *testing.T) {
	src := New().AddBox(rect(0, 0, 8, 8)).AddBox(rect(16, 0, 24, 8)).Region()
	d := New().AddRegion(src)
	if got := d.Region().Area(); got != src.Area() {
		t.Fatalf("Area() = %d, want %d", got, src.Area())
	}
}

func TestDestroy(t *testing.T) {
	d := New().AddBox(rect(0, 0, 10, 10))
	d.Destroy()
	if d.Err() == nil {
		t.Fatal("Err() = nil after Destroy")
	}
	d = d.AddBox(rect(0, 0, 5, 5))
	if d.Dirty() != 0 {
		t.Fatal("AddBox after Destroy accumulated damage")
	}
	if !d.Region().IsEmpty() {
		t.Fatal("Region() after Destroy is not empty")
	}
}

func TestNilHandle(t *testing.T) {
	var d *Damage
	d = d.AddBox(rect(0, 0, 1, 1))
	if d != nil {
		t.Fatal("AddBox on nil handle returned non-nil")
	}
	if !d.Region().IsEmpty() {
		t.Fatal("Region() on nil handle is not empty")
	}
	d.Destroy()
}
