package vg

import "testing"

func TestStrokeStyleClone(t *testing.T) {
	s := DefaultStrokeStyle()
	s.Dash = []float64{4, 2}
	c := s.Clone()

	c.Dash[0] = 99
	c.Width = 10
	if s.Dash[0] != 4 {
		t.Fatal("Clone shares the dash slice")
	}
	if s.Width != 1 {
		t.Fatal("Clone shares the style struct")
	}
}

func TestMaxDistanceFromPath(t *testing.T) {
	s := DefaultStrokeStyle()
	s.Width = 2
	s.Join = LineJoinRound

	base := s.MaxDistanceFromPath(Identity())
	if base != 1 {
		t.Fatalf("round join distance = %v, want half width", base)
	}

	// Miter joins can push ink out to MiterLimit/2 widths.
	s.Join = LineJoinMiter
	s.MiterLimit = 10
	if got := s.MaxDistanceFromPath(Identity()); got != 10 {
		t.Fatalf("miter distance = %v, want 10", got)
	}

	// The CTM's largest axis stretch scales the expansion.
	if got := s.MaxDistanceFromPath(Scale(3, 1)); got != 30 {
		t.Fatalf("scaled miter distance = %v, want 30", got)
	}
}

func TestPenVertexCount(t *testing.T) {
	s := DefaultStrokeStyle()
	s.Width = 0
	if got := s.PenVertexCount(0.1); got != 0 {
		t.Fatalf("zero-width pen vertices = %d, want 0", got)
	}

	s.Width = 0.01
	if got := s.PenVertexCount(0.1); got != 1 {
		t.Fatalf("tiny pen vertices = %d, want 1 (degenerate)", got)
	}

	s.Width = 10
	coarse := s.PenVertexCount(0.5)
	fine := s.PenVertexCount(0.01)
	if coarse < 3 || fine <= coarse {
		t.Fatalf("vertices coarse=%d fine=%d, want finer tolerance to need more", coarse, fine)
	}
}
