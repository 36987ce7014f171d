package vg

import (
	"image"
	"testing"
)

func TestNilClipMeansUnclipped(t *testing.T) {
	var c *Clip
	if c.IsEmpty() {
		t.Fatal("nil clip reported empty")
	}
	if !c.Contains(image.Rect(-1000, -1000, 1000, 1000)) {
		t.Fatal("nil clip does not contain everything")
	}
	if _, ok := c.Extents(); ok {
		t.Fatal("nil clip reported bounded extents")
	}
	if c.Copy() != nil {
		t.Fatal("copying nil clip is not nil")
	}
}

func TestEmptyClip(t *testing.T) {
	c := EmptyClip()
	if !c.IsEmpty() {
		t.Fatal("EmptyClip not empty")
	}
	if c.Contains(image.Rect(0, 0, 1, 1)) {
		t.Fatal("empty clip contains a rect")
	}
	if NewClip(image.Rectangle{}).IsEmpty() != true {
		t.Fatal("clip from empty rect not the empty sentinel")
	}
}

func TestClipIntersect(t *testing.T) {
	a := NewClip(image.Rect(0, 0, 10, 10))
	b := NewClip(image.Rect(5, 5, 20, 20))

	c := a.Intersect(b)
	if got := c.Rects(); len(got) != 1 || got[0] != image.Rect(5, 5, 10, 10) {
		t.Fatalf("intersection rects = %v", got)
	}

	disjoint := a.Intersect(NewClip(image.Rect(50, 50, 60, 60)))
	if !disjoint.IsEmpty() {
		t.Fatal("disjoint intersection not empty")
	}

	if got := a.Intersect(nil).Rects(); len(got) != 1 || got[0] != image.Rect(0, 0, 10, 10) {
		t.Fatalf("intersect with nil = %v, want copy of a", got)
	}
}

func TestClipIntersectRect(t *testing.T) {
	c := NewClip(image.Rect(0, 0, 10, 10)).IntersectRect(image.Rect(5, -5, 15, 5))
	if got := c.Rects(); len(got) != 1 || got[0] != image.Rect(5, 0, 10, 5) {
		t.Fatalf("rects = %v", got)
	}

	var unclipped *Clip
	if got := unclipped.IntersectRect(image.Rect(1, 2, 3, 4)).Rects(); got[0] != image.Rect(1, 2, 3, 4) {
		t.Fatalf("nil.IntersectRect = %v", got)
	}
}

func TestClipTransform(t *testing.T) {
	c := NewClip(image.Rect(1, 1, 3, 3)).Transform(Scale(10, 10))
	if got := c.Rects(); len(got) != 1 || got[0] != image.Rect(10, 10, 30, 30) {
		t.Fatalf("transformed rects = %v", got)
	}
}

func TestClipPathRidesAlong(t *testing.T) {
	p := NewPath()
	p.Circle(10, 10, 5)
	c := NewClipPath(p, FillRuleEvenOdd)

	got, rule := c.Path()
	if got == nil || rule != FillRuleEvenOdd {
		t.Fatalf("Path() = %v %v", got, rule)
	}
	if ext, ok := c.Extents(); !ok || ext != image.Rect(5, 5, 15, 15) {
		t.Fatalf("extents = %v %v", ext, ok)
	}

	// The copy owns an independent path.
	cp := c.Copy()
	clone, _ := cp.Path()
	clone.LineTo(100, 100)
	orig, _ := c.Path()
	if orig.DeviceBounds() != image.Rect(5, 5, 15, 15) {
		t.Fatal("copy shares the clip path")
	}
}

func TestClipContains(t *testing.T) {
	c := NewClip(image.Rect(0, 0, 10, 10))
	if !c.Contains(image.Rect(2, 2, 8, 8)) {
		t.Fatal("contained rect reported outside")
	}
	if c.Contains(image.Rect(5, 5, 15, 15)) {
		t.Fatal("overlapping rect reported contained")
	}
}
