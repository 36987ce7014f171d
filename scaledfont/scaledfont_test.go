package scaledfont

import (
	"errors"
	"image"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/vg"
)

func newTestFont(t *testing.T, size float64) *ScaledFont {
	t.Helper()
	src, err := NewSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	sf, err := New(src, vg.Scale(size, size), vg.Identity())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sf
}

func glyphFor(t *testing.T, sf *ScaledFont, r rune) vg.Glyph {
	t.Helper()
	idx, ok := sf.GlyphIndex(r)
	if !ok {
		t.Fatalf("no glyph for %q", r)
	}
	return vg.Glyph{Index: idx}
}

func TestSourceSharing(t *testing.T) {
	a, err := NewSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	b, err := NewSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if a != b {
		t.Error("same font data should return the shared Source")
	}
	if a.UnitsPerEm() <= 0 {
		t.Errorf("UnitsPerEm = %v, want > 0", a.UnitsPerEm())
	}
}

func TestSourceEmptyData(t *testing.T) {
	if _, err := NewSource(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("err = %v, want ErrEmptyFontData", err)
	}
}

func TestScaledFontInterned(t *testing.T) {
	a := newTestFont(t, 16)
	b := newTestFont(t, 16)
	if a != b {
		t.Error("same (source, matrices) should intern to one ScaledFont")
	}
}

func TestWithCTM(t *testing.T) {
	sf := newTestFont(t, 16)

	same, err := sf.WithCTM(vg.Identity())
	if err != nil {
		t.Fatalf("WithCTM: %v", err)
	}
	if same != vg.Font(sf) {
		t.Error("identical CTM should return the receiver")
	}

	ctm := vg.Translate(5, 7)
	derived, err := sf.WithCTM(ctm)
	if err != nil {
		t.Fatalf("WithCTM: %v", err)
	}
	if derived == vg.Font(sf) {
		t.Error("new CTM should return a derived font")
	}
	if derived.CTM() != ctm {
		t.Errorf("derived CTM = %+v, want %+v", derived.CTM(), ctm)
	}
}

func TestSingularFontMatrix(t *testing.T) {
	src, err := NewSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if _, err := New(src, vg.Matrix{}, vg.Identity()); !errors.Is(err, vg.ErrInvalidMatrix) {
		t.Errorf("err = %v, want ErrInvalidMatrix", err)
	}
}

func TestGlyphExtents(t *testing.T) {
	sf := newTestFont(t, 32)

	empty, err := sf.GlyphExtents(nil)
	if err != nil {
		t.Fatalf("GlyphExtents(nil): %v", err)
	}
	if !empty.Empty() {
		t.Errorf("extents of no glyphs = %v, want empty", empty)
	}

	g := glyphFor(t, sf, 'A')
	g.X, g.Y = 100, 100
	ext, err := sf.GlyphExtents([]vg.Glyph{g})
	if err != nil {
		t.Fatalf("GlyphExtents: %v", err)
	}
	if ext.Empty() {
		t.Fatal("extents of 'A' should not be empty")
	}
	// Ink sits on the baseline at y=100 and extends upward.
	if ext.Max.Y > 101 || ext.Min.Y >= 100 {
		t.Errorf("extents %v should sit above the baseline y=100", ext)
	}
	if !ext.In(image.Rect(90, 50, 150, 110)) {
		t.Errorf("extents %v implausible for a 32px glyph at (100,100)", ext)
	}
}

func TestGlyphExtentsScaleWithSize(t *testing.T) {
	small := newTestFont(t, 16)
	large := newTestFont(t, 48)

	g := glyphFor(t, small, 'M')
	se, err := small.GlyphExtents([]vg.Glyph{g})
	if err != nil {
		t.Fatalf("GlyphExtents: %v", err)
	}
	le, err := large.GlyphExtents([]vg.Glyph{g})
	if err != nil {
		t.Fatalf("GlyphExtents: %v", err)
	}
	if le.Dx() <= se.Dx() || le.Dy() <= se.Dy() {
		t.Errorf("48px extents %v should exceed 16px extents %v", le, se)
	}
}

func TestGlyphAdvance(t *testing.T) {
	sf := newTestFont(t, 24)
	g := glyphFor(t, sf, 'W')
	adv := sf.GlyphAdvance(g.Index)
	if adv <= 0 || adv > 48 {
		t.Errorf("advance of 'W' at 24px = %v, want within (0, 48]", adv)
	}
}

func TestGlyphPath(t *testing.T) {
	sf := newTestFont(t, 32)
	g := glyphFor(t, sf, 'o')
	path, err := sf.GlyphPath([]vg.Glyph{g})
	if err != nil {
		t.Fatalf("GlyphPath: %v", err)
	}
	if path.IsEmpty() {
		t.Fatal("outline of 'o' should not be empty")
	}
	minX, minY, maxX, maxY := path.Bounds()
	if maxX <= minX || maxY <= minY {
		t.Errorf("degenerate path bounds (%v,%v)-(%v,%v)", minX, minY, maxX, maxY)
	}
}

func TestFontExtents(t *testing.T) {
	sf := newTestFont(t, 20)
	ext := sf.FontExtents()
	if ext.Ascent <= 0 {
		t.Errorf("Ascent = %v, want > 0", ext.Ascent)
	}
	if ext.Descent < 0 {
		t.Errorf("Descent = %v, want >= 0", ext.Descent)
	}
	if ext.Height < ext.Ascent+ext.Descent {
		t.Errorf("Height = %v, want >= Ascent+Descent = %v", ext.Height, ext.Ascent+ext.Descent)
	}
}

func TestShapeText(t *testing.T) {
	sf := newTestFont(t, 16)
	glyphs, clusters, flags, err := sf.ShapeText("Hello", 10, 20)
	if err != nil {
		t.Fatalf("ShapeText: %v", err)
	}
	if len(glyphs) == 0 {
		t.Fatal("shaping produced no glyphs")
	}
	if flags != 0 {
		t.Errorf("flags = %v, want 0 for LTR text", flags)
	}

	// Glyph origins advance left to right from the requested start.
	if glyphs[0].X < 10 {
		t.Errorf("first glyph at %v, want >= 10", glyphs[0].X)
	}
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i].X <= glyphs[i-1].X {
			t.Errorf("glyph %d does not advance: %v <= %v", i, glyphs[i].X, glyphs[i-1].X)
		}
	}

	var bytes, count int
	for _, c := range clusters {
		bytes += c.NumBytes
		count += c.NumGlyphs
	}
	if bytes != len("Hello") {
		t.Errorf("cluster bytes sum = %d, want %d", bytes, len("Hello"))
	}
	if count != len(glyphs) {
		t.Errorf("cluster glyph sum = %d, want %d", count, len(glyphs))
	}
}

func TestShapeTextEmpty(t *testing.T) {
	sf := newTestFont(t, 16)
	glyphs, clusters, flags, err := sf.ShapeText("", 0, 0)
	if err != nil {
		t.Fatalf("ShapeText: %v", err)
	}
	if glyphs != nil || clusters != nil || flags != 0 {
		t.Errorf("empty text should shape to nothing, got %d glyphs", len(glyphs))
	}
}

func TestNoColorGlyphs(t *testing.T) {
	sf := newTestFont(t, 16)
	if sf.HasColorGlyphs() {
		t.Error("Go Regular should not report color glyphs")
	}
	g := glyphFor(t, sf, 'A')
	if _, err := sf.ColorGlyph(g.Index); !errors.Is(err, vg.ErrUnsupported) {
		t.Errorf("ColorGlyph err = %v, want ErrUnsupported", err)
	}
}
