package vg

import "image"

// Glyph is one positioned glyph: a glyph index in some scaled font plus
// the device-space position of its origin.
type Glyph struct {
	// Index is the glyph index in the font (not a character code).
	Index uint32

	// X, Y is the glyph origin.
	X, Y float64
}

// TextCluster maps a run of UTF-8 bytes to a run of glyphs.
type TextCluster struct {
	// NumBytes is the number of UTF-8 bytes this cluster covers.
	NumBytes int

	// NumGlyphs is the number of glyphs this cluster produced.
	NumGlyphs int
}

// ClusterFlags carries properties of a whole cluster mapping.
type ClusterFlags uint8

const (
	// ClusterFlagBackward indicates the clusters map bytes to glyphs in
	// reverse order (right-to-left text).
	ClusterFlagBackward ClusterFlags = 1 << iota
)

// CopyGlyphs returns a private copy of a glyph slice. Backends receive
// copies so that no callee ever observes caller mutations (or vice
// versa); the fan-out backends re-copy per target for the same reason.
func CopyGlyphs(glyphs []Glyph) []Glyph {
	if len(glyphs) == 0 {
		return nil
	}
	return append([]Glyph(nil), glyphs...)
}

// ColorGlyph is a glyph resolved to a standalone color image, ready to
// be composited like any other image source.
type ColorGlyph struct {
	// Image holds the rendered glyph pixels.
	Image *image.RGBA

	// OriginX, OriginY locate Image's top-left corner relative to the
	// glyph origin.
	OriginX, OriginY float64
}

// Font is a scaled font: a font face bound to a font matrix and CTM.
// It is the library's view of the out-of-scope glyph machinery; the
// concrete implementation lives in the scaledfont package.
type Font interface {
	// GlyphExtents returns the device-space rectangle covering the ink
	// of the given positioned glyphs.
	GlyphExtents(glyphs []Glyph) (image.Rectangle, error)

	// CTM returns the transformation the font was scaled under.
	CTM() Matrix

	// WithCTM returns a font identical to this one but bound to a new
	// CTM. Implementations return the receiver when the CTM is equal.
	WithCTM(ctm Matrix) (Font, error)

	// HasColorGlyphs reports whether any glyph may resolve to a
	// standalone color image.
	HasColorGlyphs() bool

	// ColorGlyph resolves one glyph to a color image.
	// Returns ErrUnsupported for glyphs without color data; such glyphs
	// pass through the ordinary rendering path.
	ColorGlyph(index uint32) (*ColorGlyph, error)
}
