package vg

import (
	"image"
	"math"
	"testing"
)

func TestPathBounds(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.LineTo(5, -3)
	p.LineTo(-4, 7)

	x0, y0, x1, y1 := p.Bounds()
	if x0 != -4 || y0 != -3 || x1 != 5 || y1 != 7 {
		t.Fatalf("bounds = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
	if got := p.DeviceBounds(); got != image.Rect(-4, -3, 5, 7) {
		t.Fatalf("device bounds = %v", got)
	}
}

func TestEmptyPath(t *testing.T) {
	p := NewPath()
	if !p.IsEmpty() {
		t.Fatal("new path not empty")
	}
	if got := p.DeviceBounds(); !got.Empty() {
		t.Fatalf("empty path device bounds = %v", got)
	}
}

func TestFlattenLines(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.Close()
	p.MoveTo(20, 20)
	p.LineTo(30, 20)

	polys := p.Flatten(0.1)
	if len(polys) != 2 {
		t.Fatalf("polyline count = %d, want 2", len(polys))
	}
	if !polys[0].Closed || polys[1].Closed {
		t.Fatalf("closed flags = %v %v, want true false", polys[0].Closed, polys[1].Closed)
	}
	first := polys[0].Points
	if first[0] != (Point{0, 0}) || first[len(first)-1] != (Point{0, 0}) {
		t.Fatalf("closed polyline does not return to start: %v", first)
	}
}

func TestFlattenCurveWithinTolerance(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.QuadTo(5, 10, 10, 0)

	const tol = 0.1
	polys := p.Flatten(tol)
	if len(polys) != 1 {
		t.Fatalf("polyline count = %d", len(polys))
	}
	pts := polys[0].Points
	if len(pts) < 4 {
		t.Fatalf("curve flattened to %d points, want subdivision", len(pts))
	}
	// Every sample must lie on or near the exact curve.
	for _, q := range pts {
		// Solve for the parameter from x (the curve is symmetric and
		// monotone in x).
		u := q.X / 10
		exactY := 2 * u * (1 - u) * 10
		if math.Abs(q.Y-exactY) > 4*tol {
			t.Fatalf("point %v deviates from curve y=%v", q, exactY)
		}
	}
}

func TestPathTransform(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 1)
	p.LineTo(2, 2)
	p.Transform(Scale(10, 10))

	x0, y0, x1, y1 := p.Bounds()
	if x0 != 10 || y0 != 10 || x1 != 20 || y1 != 20 {
		t.Fatalf("transformed bounds = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
}

func TestPathCloneIndependent(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(1, 1)

	c := p.Clone()
	c.LineTo(100, 100)

	_, _, x1, _ := p.Bounds()
	if x1 != 1 {
		t.Fatalf("original path bounds grew to %v after editing clone", x1)
	}
}

func TestPathCircle(t *testing.T) {
	p := NewPath()
	p.Circle(50, 50, 10)
	if got := p.DeviceBounds(); got != image.Rect(40, 40, 60, 60) {
		t.Fatalf("circle bounds = %v", got)
	}
}
