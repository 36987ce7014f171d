package surface

import (
	"errors"
	"image"

	"github.com/gogpu/vg"
)

// colorGlyphCacheSize is the slot count of the per-surface color glyph
// cache. The cache is direct-mapped: a glyph lives in slot
// index % colorGlyphCacheSize, and a collision evicts.
const colorGlyphCacheSize = 64

type colorGlyphEntry struct {
	index uint32
	valid bool
	// glyph is nil for glyphs known to have no color representation.
	glyph *vg.ColorGlyph
}

type colorGlyphCache struct {
	slots [colorGlyphCacheSize]colorGlyphEntry
}

// lookup resolves a glyph's color representation, consulting the cache
// first. A nil result with nil error means the glyph has no color form
// and takes the ordinary text path.
func (c *colorGlyphCache) lookup(font vg.Font, index uint32) (*vg.ColorGlyph, error) {
	slot := &c.slots[index%colorGlyphCacheSize]
	if slot.valid && slot.index == index {
		return slot.glyph, nil
	}
	g, err := font.ColorGlyph(index)
	if err != nil {
		if errors.Is(err, vg.ErrUnsupported) {
			g = nil
		} else {
			return nil, err
		}
	}
	*slot = colorGlyphEntry{index: index, valid: true, glyph: g}
	return g, nil
}

// imageSource adapts a raw image to the pattern source contract so a
// resolved color glyph can be composited like any surface source.
type imageSource struct {
	img *image.RGBA
}

func (imageSource) Status() error    { return nil }
func (imageSource) IsFinished() bool { return false }

func (s imageSource) Extents() (image.Rectangle, bool) {
	return s.img.Bounds(), true
}

func (s imageSource) AcquireSourceImage() (*image.RGBA, func(), error) {
	return s.img, func() {}, nil
}

// validateClusters checks that the cluster mapping covers the glyph and
// text arrays exactly.
func validateClusters(text string, glyphs []vg.Glyph, clusters []vg.TextCluster) error {
	if len(clusters) == 0 {
		return nil
	}
	bytes, count := 0, 0
	for _, cl := range clusters {
		if cl.NumBytes < 0 || cl.NumGlyphs < 0 {
			return vg.ErrInvalidClusters
		}
		bytes += cl.NumBytes
		count += cl.NumGlyphs
	}
	if bytes != len(text) || count != len(glyphs) {
		return vg.ErrInvalidClusters
	}
	return nil
}

// ShowTextGlyphs renders shaped glyphs, optionally with the text and
// cluster mapping they came from.
//
// When the scaled font carries color glyphs, each glyph resolving to a
// standalone color image is composited immediately as an image and
// removed from the list handed to the ordinary glyph path; glyphs
// without color info pass through unchanged.
func (s *Surface) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	if err := s.prepare(source); err != nil {
		return err
	}
	if clip.IsEmpty() {
		return nil
	}
	if len(glyphs) == 0 {
		return nil
	}
	if err := validateClusters(text, glyphs, clusters); err != nil {
		return s.setError(err)
	}
	op, noop := s.nothingToDo(op, source)
	if noop {
		return nil
	}
	s.beginModification()
	source = s.resolveSource(source)

	if font.HasColorGlyphs() {
		rest, err := s.showColorGlyphs(op, source, font, glyphs, clip)
		if err != nil {
			return s.finishOp(err)
		}
		if len(rest) == 0 {
			return s.finishOp(nil)
		}
		glyphs = rest
		// The cluster mapping no longer matches the reduced list.
		text, clusters, flags = "", nil, 0
	}

	err := vg.ErrUnsupported
	if tg, ok := s.backend.(TextGlyphShower); ok {
		err = tg.ShowTextGlyphs(op, source, text, font, glyphs, clusters, flags, clip)
	}
	if errors.Is(err, vg.ErrUnsupported) {
		if g, ok := s.backend.(GlyphShower); ok {
			err = g.ShowGlyphs(op, source, font, glyphs, clip)
		}
	}
	return s.finishOp(err)
}

// showColorGlyphs composites every glyph with a color representation
// and returns the remaining glyphs for the ordinary path. The glyph
// image goes through Mask so the source operator semantics hold;
// SOURCE and CLEAR paint the image directly since masking with those
// operators would clear outside the glyph.
func (s *Surface) showColorGlyphs(op vg.Op, source vg.Pattern, font vg.Font,
	glyphs []vg.Glyph, clip *vg.Clip) ([]vg.Glyph, error) {
	rest := make([]vg.Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		cg, err := s.colorGlyphs.lookup(font, g.Index)
		if err != nil {
			return nil, err
		}
		if cg == nil || cg.Image == nil {
			rest = append(rest, g)
			continue
		}
		if err := s.compositeColorGlyph(op, source, cg, g, clip); err != nil {
			return nil, err
		}
	}
	return rest, nil
}

func (s *Surface) compositeColorGlyph(op vg.Op, source vg.Pattern, cg *vg.ColorGlyph, g vg.Glyph, clip *vg.Clip) error {
	pat := vg.NewSurfacePattern(imageSource{img: cg.Image})
	ox := g.X + cg.OriginX
	oy := g.Y + cg.OriginY
	pat.SetMatrix(vg.Translate(-ox, -oy))

	var err error
	switch op {
	case vg.OpSource, vg.OpClear:
		b := cg.Image.Bounds()
		area := image.Rect(int(ox)+b.Min.X, int(oy)+b.Min.Y, int(ox)+b.Max.X, int(oy)+b.Max.Y)
		glyphClip := clip.Copy().IntersectRect(area)
		if glyphClip.IsEmpty() {
			return nil
		}
		if p, ok := s.backend.(Painter); ok {
			err = p.Paint(op, pat, glyphClip)
		} else {
			err = vg.ErrUnsupported
		}
	default:
		if m, ok := s.backend.(Masker); ok {
			err = m.Mask(op, source, pat, clip)
		} else {
			err = vg.ErrUnsupported
		}
	}
	if errors.Is(err, vg.ErrNothingToDo) {
		return nil
	}
	return err
}
