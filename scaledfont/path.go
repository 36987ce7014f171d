package scaledfont

import (
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"

	"github.com/gogpu/vg"
)

// GlyphPath returns the device-space outline of the given positioned
// glyphs as one path. Glyphs without an outline (bitmap or SVG glyphs,
// or indices absent from the font) are skipped; use ColorGlyph for
// those.
func (sf *ScaledFont) GlyphPath(glyphs []vg.Glyph) (*vg.Path, error) {
	face := sf.face()
	path := vg.NewPath()

	for _, g := range glyphs {
		outline, ok := face.GlyphData(font.GID(g.Index)).(font.GlyphOutline)
		if !ok {
			continue
		}
		sf.appendOutline(path, outline, g.X, g.Y)
	}
	return path, nil
}

// appendOutline converts one glyph outline from font units to device
// space and appends it to path at the glyph origin (ox, oy).
func (sf *ScaledFont) appendOutline(path *vg.Path, outline font.GlyphOutline, ox, oy float64) {
	at := func(p opentype.SegmentPoint) (float64, float64) {
		d := sf.fontPoint(float64(p.X), float64(p.Y))
		return ox + d.X, oy + d.Y
	}

	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			if open {
				path.Close()
			}
			x, y := at(seg.Args[0])
			path.MoveTo(x, y)
			open = true

		case opentype.SegmentOpLineTo:
			x, y := at(seg.Args[0])
			path.LineTo(x, y)

		case opentype.SegmentOpQuadTo:
			cx, cy := at(seg.Args[0])
			x, y := at(seg.Args[1])
			path.QuadTo(cx, cy, x, y)

		case opentype.SegmentOpCubeTo:
			c1x, c1y := at(seg.Args[0])
			c2x, c2y := at(seg.Args[1])
			x, y := at(seg.Args[2])
			path.CubicTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if open {
		path.Close()
	}
}
