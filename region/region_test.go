package region

import (
	"image"
	"testing"
)

func TestFromRectsDisjoint(t *testing.T) {
	r := FromRects([]image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(20, 20, 30, 30),
	})
	if r.NumRects() != 2 {
		t.Fatalf("NumRects = %d, want 2", r.NumRects())
	}
	if r.Area() != 200 {
		t.Errorf("Area = %d, want 200", r.Area())
	}
}

func TestFromRectsOverlapping(t *testing.T) {
	r := FromRects([]image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(5, 5, 15, 15),
	})
	// Union area: 100 + 100 - 25 overlap.
	if r.Area() != 175 {
		t.Errorf("Area = %d, want 175", r.Area())
	}
	if !r.ContainsPoint(12, 12) {
		t.Error("point (12,12) should be inside")
	}
	if r.ContainsPoint(12, 2) {
		t.Error("point (12,2) should be outside")
	}
}

func TestBandsDisjointAndExact(t *testing.T) {
	in := []image.Rectangle{
		image.Rect(0, 0, 4, 4),
		image.Rect(2, 2, 6, 6),
		image.Rect(0, 4, 6, 8),
		image.Rect(10, 0, 12, 8),
	}
	r := FromRects(in)

	// Banded rectangles must not overlap each other.
	rects := r.Rects()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if !rects[i].Intersect(rects[j]).Empty() {
				t.Fatalf("rects %v and %v overlap", rects[i], rects[j])
			}
		}
	}

	// Every input pixel is covered; no pixel outside the inputs is.
	bounds := r.Extents().Inset(-1)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			want := false
			for _, b := range in {
				if image.Pt(x, y).In(b) {
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

func TestVerticalCoalesce(t *testing.T) {
	// Two vertically adjacent rects with identical x-range should
	// collapse into one band.
	r := FromRects([]image.Rectangle{
		image.Rect(0, 0, 10, 5),
		image.Rect(0, 5, 10, 10),
	})
	if r.NumRects() != 1 {
		t.Errorf("NumRects = %d, want 1 (coalesced)", r.NumRects())
	}
	if got := r.Extents(); got != image.Rect(0, 0, 10, 10) {
		t.Errorf("Extents = %v", got)
	}
}

func TestContainsRect(t *testing.T) {
	r := FromRects([]image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(10, 0, 20, 10),
	})
	if !r.ContainsRect(image.Rect(5, 2, 15, 8)) {
		t.Error("rect spanning both bands should be contained")
	}
	if r.ContainsRect(image.Rect(5, 5, 25, 8)) {
		t.Error("rect extending past the region should not be contained")
	}
}

func TestIntersectRect(t *testing.T) {
	r := FromRect(image.Rect(0, 0, 10, 10)).IntersectRect(image.Rect(5, 5, 20, 20))
	if got := r.Extents(); got != image.Rect(5, 5, 10, 10) {
		t.Errorf("Extents = %v", got)
	}
	empty := r.IntersectRect(image.Rect(50, 50, 60, 60))
	if !empty.IsEmpty() {
		t.Error("disjoint intersection should be empty")
	}
}

func TestEmpty(t *testing.T) {
	var r *Region
	if !r.IsEmpty() {
		t.Error("nil region should be empty")
	}
	if r.ContainsPoint(0, 0) {
		t.Error("nil region contains nothing")
	}
	if FromRect(image.Rectangle{}).NumRects() != 0 {
		t.Error("empty rect yields empty region")
	}
}
