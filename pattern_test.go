package vg

import (
	"image"
	"testing"
)

func TestSolidPattern(t *testing.T) {
	p := NewSolidPattern(RGBA{R: 1, A: 1})
	if !p.IsOpaque() || p.IsClear() {
		t.Fatal("opaque red misclassified")
	}
	if got := p.ColorAt(123, -456); got != (RGBA{R: 1, A: 1}) {
		t.Fatalf("ColorAt = %v", got)
	}
	if _, ok := p.Extents(); ok {
		t.Fatal("solid pattern reported bounded extents")
	}
	if p.Transformed(Scale(2, 2)) != Pattern(p) {
		t.Fatal("Transformed solid is not the same pattern")
	}

	clear := NewSolidPattern(RGBA{})
	if !clear.IsClear() {
		t.Fatal("transparent solid not clear")
	}
}

func TestLinearGradientStops(t *testing.T) {
	g := NewLinearGradient(0, 0, 10, 0)
	g.AddStop(0, RGBA{R: 1, A: 1})
	g.AddStop(1, RGBA{B: 1, A: 1})

	if got := g.ColorAt(-5, 0); got != (RGBA{R: 1, A: 1}) {
		t.Fatalf("before start = %v, want first stop", got)
	}
	if got := g.ColorAt(15, 3); got != (RGBA{B: 1, A: 1}) {
		t.Fatalf("past end = %v, want last stop", got)
	}
	mid := g.ColorAt(5, 0)
	if !almostEqual(mid.R, 0.5) || !almostEqual(mid.B, 0.5) || !almostEqual(mid.A, 1) {
		t.Fatalf("midpoint = %v, want half red half blue", mid)
	}
}

func TestGradientTransformed(t *testing.T) {
	g := NewLinearGradient(0, 0, 10, 0)
	g.AddStop(0, RGBA{R: 1, A: 1})
	g.AddStop(1, RGBA{B: 1, A: 1})

	// Doubling user space halves the gradient's apparent position.
	tg := g.Transformed(Scale(2, 2)).(*LinearGradient)
	got := tg.ColorAt(2.5, 0)
	want := g.ColorAt(5, 0)
	if !almostEqual(got.R, want.R) || !almostEqual(got.B, want.B) {
		t.Fatalf("transformed sample = %v, want %v", got, want)
	}

	// The original is unchanged.
	tg.AddStop(1, RGBA{G: 1, A: 1})
	if len(g.stops) != 2 {
		t.Fatalf("original stop count = %d after modifying copy", len(g.stops))
	}
}

func TestRadialGradient(t *testing.T) {
	g := NewRadialGradient(0, 0, 0, 0, 0, 10)
	g.AddStop(0, RGBA{R: 1, A: 1})
	g.AddStop(1, RGBA{R: 0, A: 0})

	center := g.ColorAt(0, 0)
	if !almostEqual(center.R, 1) {
		t.Fatalf("center = %v, want first stop", center)
	}
	edge := g.ColorAt(10, 0)
	if !almostEqual(edge.A, 0) {
		t.Fatalf("edge = %v, want last stop", edge)
	}
	if g.IsOpaque() {
		t.Fatal("gradient with transparent stop reported opaque")
	}
}

func TestGradientNoStops(t *testing.T) {
	g := NewLinearGradient(0, 0, 1, 0)
	if got := g.ColorAt(0.5, 0); got != (RGBA{}) {
		t.Fatalf("empty gradient sample = %v, want zero", got)
	}
	if !g.IsClear() {
		t.Fatal("empty gradient not clear")
	}
}

type boundedSource struct {
	r image.Rectangle
}

func (s boundedSource) Status() error                    { return nil }
func (s boundedSource) IsFinished() bool                 { return false }
func (s boundedSource) Extents() (image.Rectangle, bool) { return s.r, true }

func TestSurfacePatternExtents(t *testing.T) {
	src := boundedSource{r: image.Rect(0, 0, 10, 10)}
	p := NewSurfacePattern(src)

	ext, ok := p.Extents()
	if !ok || ext != src.r {
		t.Fatalf("extents = %v %v, want source rect", ext, ok)
	}

	// A pattern matrix scaling user to pattern space by 2 makes the
	// source cover half the user-space area.
	p.SetMatrix(Scale(2, 2))
	ext, ok = p.Extents()
	if !ok || ext != image.Rect(0, 0, 5, 5) {
		t.Fatalf("scaled extents = %v %v, want (0,0)-(5,5)", ext, ok)
	}

	// Repeat extends infinitely.
	p.SetExtend(ExtendRepeat)
	if _, ok := p.Extents(); ok {
		t.Fatal("repeating pattern reported bounded extents")
	}
}

func TestSurfacePatternNilSource(t *testing.T) {
	p := NewSurfacePattern(nil)
	if p.Err() != ErrTypeMismatch {
		t.Fatalf("Err = %v, want ErrTypeMismatch", p.Err())
	}
}

func TestForegroundMarker(t *testing.T) {
	if !IsForegroundMarker(ForegroundMarker) {
		t.Fatal("marker not recognized")
	}
	if IsForegroundMarker(NewSolidPattern(RGBA{A: 1})) {
		t.Fatal("solid pattern recognized as marker")
	}
	if IsForegroundMarker(ForegroundMarker.Transformed(Scale(2, 2))) != true {
		t.Fatal("transformed marker lost its identity")
	}
}
