package surface

import (
	"image"
	"testing"

	"github.com/gogpu/vg"
)

// colorFont resolves even glyph indices to a solid color image and
// counts resolution calls so cache behavior is observable.
type colorFont struct {
	stubFont
	resolved map[uint32]int
}

func (f *colorFont) HasColorGlyphs() bool { return true }

func (f *colorFont) ColorGlyph(index uint32) (*vg.ColorGlyph, error) {
	f.resolved[index]++
	if index%2 != 0 {
		return nil, vg.ErrUnsupported
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	return &vg.ColorGlyph{Image: img}, nil
}

func TestColorGlyphInterception(t *testing.T) {
	b := newTestBackend(50, 50)
	s := NewFromBackend(b)
	font := &colorFont{resolved: make(map[uint32]int)}

	glyphs := []vg.Glyph{
		{Index: 2, X: 5, Y: 5},
		{Index: 3, X: 10, Y: 5},
		{Index: 4, X: 15, Y: 5},
	}
	if err := s.ShowGlyphs(vg.OpOver, opaqueBlack(), font, glyphs, nil); err != nil {
		t.Fatalf("ShowGlyphs: %v", err)
	}
	// Two color glyphs composited as masks, one ordinary glyph left for
	// the text path.
	if b.masks != 2 {
		t.Fatalf("masks = %d, want 2", b.masks)
	}
	if b.glyphCalls != 1 {
		t.Fatalf("glyph calls = %d, want 1", b.glyphCalls)
	}
}

func TestColorGlyphCacheHit(t *testing.T) {
	b := newTestBackend(50, 50)
	s := NewFromBackend(b)
	font := &colorFont{resolved: make(map[uint32]int)}

	glyphs := []vg.Glyph{{Index: 2, X: 5, Y: 5}}
	for i := 0; i < 3; i++ {
		if err := s.ShowGlyphs(vg.OpOver, opaqueBlack(), font, glyphs, nil); err != nil {
			t.Fatalf("ShowGlyphs: %v", err)
		}
	}
	if font.resolved[2] != 1 {
		t.Fatalf("glyph 2 resolved %d times, want 1 (cached)", font.resolved[2])
	}
}

func TestColorGlyphCacheCollisionEvicts(t *testing.T) {
	b := newTestBackend(50, 50)
	s := NewFromBackend(b)
	font := &colorFont{resolved: make(map[uint32]int)}

	// Indices 2 and 2+colorGlyphCacheSize map to the same slot.
	a := []vg.Glyph{{Index: 2, X: 5, Y: 5}}
	c := []vg.Glyph{{Index: 2 + colorGlyphCacheSize, X: 5, Y: 5}}
	if err := s.ShowGlyphs(vg.OpOver, opaqueBlack(), font, a, nil); err != nil {
		t.Fatalf("ShowGlyphs: %v", err)
	}
	if err := s.ShowGlyphs(vg.OpOver, opaqueBlack(), font, c, nil); err != nil {
		t.Fatalf("ShowGlyphs: %v", err)
	}
	if err := s.ShowGlyphs(vg.OpOver, opaqueBlack(), font, a, nil); err != nil {
		t.Fatalf("ShowGlyphs: %v", err)
	}
	if font.resolved[2] != 2 {
		t.Fatalf("glyph 2 resolved %d times, want 2 (evicted by collision)", font.resolved[2])
	}
}
