package scaledfont

import (
	"image"
	"math"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/cache"
)

// ScaledFont is a font source bound to a font matrix and CTM. The font
// matrix maps font space (one em square) to user space; the CTM maps
// user space to device space. Glyph positions and extents are device
// space throughout.
//
// ScaledFont values are interned: New returns the same instance for
// the same (source, font matrix, CTM) triple, so identity comparison
// is meaningful. A ScaledFont is immutable and safe for concurrent
// use; per-call face state is created on demand.
type ScaledFont struct {
	src        *Source
	fontMatrix vg.Matrix
	ctm        vg.Matrix

	// scale maps font space directly to device space: the font matrix
	// followed by the CTM.
	scale vg.Matrix
}

var _ vg.Font = (*ScaledFont)(nil)

type fontKey struct {
	src        uint64
	fontMatrix vg.Matrix
	ctm        vg.Matrix
}

func fontKeyHasher(k fontKey) uint64 {
	h := k.src
	for _, f := range [12]float64{
		k.fontMatrix.A, k.fontMatrix.B, k.fontMatrix.C,
		k.fontMatrix.D, k.fontMatrix.E, k.fontMatrix.F,
		k.ctm.A, k.ctm.B, k.ctm.C,
		k.ctm.D, k.ctm.E, k.ctm.F,
	} {
		h ^= math.Float64bits(f)
		h *= 1099511628211
	}
	return h
}

// fonts interns scaled fonts process-wide. Entries are cheap; the map
// exists so WithCTM round-trips hand back the caller's own font and
// repeated lookups share glyph state.
var fonts = cache.NewSharded[fontKey, *ScaledFont](cache.DefaultCapacity, fontKeyHasher)

// New returns the scaled font binding src to the given font matrix and
// CTM. The font matrix must be invertible.
func New(src *Source, fontMatrix, ctm vg.Matrix) (*ScaledFont, error) {
	if _, err := fontMatrix.Invert(); err != nil {
		return nil, err
	}

	key := fontKey{src: src.key, fontMatrix: fontMatrix, ctm: ctm}
	sf := fonts.GetOrCreate(key, func() *ScaledFont {
		return &ScaledFont{
			src:        src,
			fontMatrix: fontMatrix,
			ctm:        ctm,
			scale:      ctm.Multiply(fontMatrix),
		}
	})
	return sf, nil
}

// Source returns the font source this scaled font draws from.
func (sf *ScaledFont) Source() *Source { return sf.src }

// FontMatrix returns the font-space to user-space transformation.
func (sf *ScaledFont) FontMatrix() vg.Matrix { return sf.fontMatrix }

// CTM returns the transformation the font was scaled under.
func (sf *ScaledFont) CTM() vg.Matrix { return sf.ctm }

// WithCTM returns a font identical to this one bound to a new CTM.
// The receiver is returned unchanged when the CTM already matches.
func (sf *ScaledFont) WithCTM(ctm vg.Matrix) (vg.Font, error) {
	if ctm == sf.ctm {
		return sf, nil
	}
	return New(sf.src, sf.fontMatrix, ctm)
}

// HasColorGlyphs reports whether any glyph may resolve to a standalone
// color image.
func (sf *ScaledFont) HasColorGlyphs() bool { return sf.src.hasColor }

// face returns a fresh per-call face. font.Face is not safe for
// concurrent use; creating one is cheap since it only wraps the shared
// read-only tables.
func (sf *ScaledFont) face() *font.Face {
	return font.NewFace(sf.src.font)
}

// fontPoint maps a point from font units to device space. Font unit Y
// grows upward while device Y grows downward, so Y is flipped before
// the scale matrix applies.
func (sf *ScaledFont) fontPoint(x, y float64) vg.Point {
	return sf.scale.TransformVector(vg.Point{
		X: x / sf.src.upem,
		Y: -y / sf.src.upem,
	})
}

// emSize returns the device-space lengths of the em square's axes.
func (sf *ScaledFont) emSize() (sx, sy float64) {
	ex := sf.scale.TransformVector(vg.Point{X: 1, Y: 0})
	ey := sf.scale.TransformVector(vg.Point{X: 0, Y: 1})
	return math.Hypot(ex.X, ex.Y), math.Hypot(ey.X, ey.Y)
}

// GlyphExtents returns the device-space rectangle covering the ink of
// the given positioned glyphs. Glyphs without ink (or absent from the
// font) contribute nothing.
func (sf *ScaledFont) GlyphExtents(glyphs []vg.Glyph) (image.Rectangle, error) {
	if len(glyphs) == 0 {
		return image.Rectangle{}, nil
	}

	face := sf.face()

	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)
	any := false

	for _, g := range glyphs {
		ext, ok := face.GlyphExtents(font.GID(g.Index))
		if !ok || ext.Width == 0 || ext.Height == 0 {
			continue
		}

		// The ink box in font units: XBearing/YBearing is the top-left
		// corner with Y up, Width positive, Height negative.
		x0 := float64(ext.XBearing)
		y0 := float64(ext.YBearing)
		x1 := x0 + float64(ext.Width)
		y1 := y0 + float64(ext.Height)

		for _, fp := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
			p := sf.fontPoint(fp[0], fp[1])
			px := g.X + p.X
			py := g.Y + p.Y
			minX = math.Min(minX, px)
			minY = math.Min(minY, py)
			maxX = math.Max(maxX, px)
			maxY = math.Max(maxY, py)
		}
		any = true
	}

	if !any {
		return image.Rectangle{}, nil
	}
	return vg.RectFromExtents(minX, minY, maxX, maxY), nil
}

// Extents describes font-wide vertical metrics in device space.
type Extents struct {
	// Ascent is the distance from the baseline to the highest glyph
	// coordinate, positive up.
	Ascent float64

	// Descent is the distance from the baseline to the lowest glyph
	// coordinate, positive down.
	Descent float64

	// Height is the recommended baseline-to-baseline distance.
	Height float64
}

// FontExtents returns the font-wide vertical metrics scaled to device
// space.
func (sf *ScaledFont) FontExtents() Extents {
	_, sy := sf.emSize()

	m, ok := sf.face().FontHExtents()
	if !ok {
		// Fonts without an hhea table get a conventional split.
		return Extents{
			Ascent:  sy * 0.8,
			Descent: sy * 0.2,
			Height:  sy,
		}
	}

	ascent := float64(m.Ascender) / sf.src.upem * sy
	descent := -float64(m.Descender) / sf.src.upem * sy
	gap := float64(m.LineGap) / sf.src.upem * sy
	return Extents{
		Ascent:  ascent,
		Descent: descent,
		Height:  ascent + descent + gap,
	}
}

// GlyphAdvance returns the horizontal advance of one glyph in device
// space.
func (sf *ScaledFont) GlyphAdvance(index uint32) float64 {
	adv := float64(sf.face().HorizontalAdvance(font.GID(index)))
	p := sf.fontPoint(adv, 0)
	return math.Hypot(p.X, p.Y)
}

// GlyphIndex returns the glyph index for a rune, or false if the font
// has no glyph for it.
func (sf *ScaledFont) GlyphIndex(r rune) (uint32, bool) {
	gid, ok := sf.face().NominalGlyph(r)
	return uint32(gid), ok
}
