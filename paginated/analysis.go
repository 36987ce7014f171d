package paginated

import (
	"errors"
	"image"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/recording"
	"github.com/gogpu/vg/surface"
)

// analyze replays the recording against the target backend in analysis
// mode and reports, per command, whether the target executes it
// natively. The second result is the device-space rectangles needing a
// rasterized fallback. Any error other than "unsupported" aborts the
// analysis.
func (b *Backend) analyze() (native []bool, fallbackRects []image.Rectangle, err error) {
	backend := b.target.Backend()

	ms, modeAware := backend.(ModeSetter)
	if modeAware {
		ms.SetPaginatedMode(ModeAnalyze)
	}

	cmds := b.rec.Commands()
	native = make([]bool, len(cmds))

	for i, cmd := range cmds {
		ok, err := probeCommand(backend, cmd, modeAware)
		if err != nil {
			return nil, nil, err
		}
		native[i] = ok
		if !ok {
			if r := b.commandExtents(cmd); !r.Empty() {
				fallbackRects = append(fallbackRects, r)
			}
		}
	}
	return native, fallbackRects, nil
}

// probeCommand asks the backend whether it can execute one command.
// A missing capability interface means no. Mode-aware backends are
// additionally invoked (in analysis mode, so no output is produced):
// vg.ErrUnsupported means no, any other failure aborts.
func probeCommand(backend surface.Backend, cmd recording.Command, modeAware bool) (bool, error) {
	var invoke func() error

	switch c := cmd.(type) {
	case *recording.PaintCmd:
		p, ok := backend.(surface.Painter)
		if !ok {
			return false, nil
		}
		invoke = func() error { return p.Paint(c.Operator, c.Source, c.Clip) }

	case *recording.MaskCmd:
		m, ok := backend.(surface.Masker)
		if !ok {
			return false, nil
		}
		invoke = func() error { return m.Mask(c.Operator, c.Source, c.Mask, c.Clip) }

	case *recording.StrokeCmd:
		s, ok := backend.(surface.Stroker)
		if !ok {
			return false, nil
		}
		invoke = func() error {
			return s.Stroke(c.Operator, c.Source, c.Path.Clone(), c.Style,
				c.CTM, c.CTMInverse, c.Tolerance, c.Clip)
		}

	case *recording.FillCmd:
		f, ok := backend.(surface.Filler)
		if !ok {
			return false, nil
		}
		invoke = func() error {
			return f.Fill(c.Operator, c.Source, c.Path.Clone(), c.Rule, c.Tolerance, c.Clip)
		}

	case *recording.ShowTextGlyphsCmd:
		switch g := backend.(type) {
		case surface.TextGlyphShower:
			invoke = func() error {
				return g.ShowTextGlyphs(c.Operator, c.Source, c.Text, c.Font,
					vg.CopyGlyphs(c.Glyphs), c.Clusters, c.Flags, c.Clip)
			}
		case surface.GlyphShower:
			invoke = func() error {
				return g.ShowGlyphs(c.Operator, c.Source, c.Font, vg.CopyGlyphs(c.Glyphs), c.Clip)
			}
		default:
			return false, nil
		}

	case *recording.TagCmd:
		// Tags are metadata; targets without a Tagger skip them.
		return true, nil

	default:
		return false, nil
	}

	if !modeAware {
		return true, nil
	}

	err := invoke()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, vg.ErrUnsupported):
		return false, nil
	case errors.Is(err, vg.ErrNothingToDo):
		return true, nil
	default:
		return false, err
	}
}

// commandExtents over-approximates the device-space rectangle a
// command touches. Unbounded operators and paints cover the whole
// page; geometric commands are narrowed by their path or glyph box
// and the clip.
func (b *Backend) commandExtents(cmd recording.Command) image.Rectangle {
	page := b.pageBox()

	bounds := func(clip *vg.Clip, geom image.Rectangle, haveGeom bool) image.Rectangle {
		r := page
		if !cmd.Op().BoundedByMask() {
			// CLEAR and friends affect everything inside the clip.
			haveGeom = false
		}
		if haveGeom {
			r = r.Intersect(geom)
		}
		if ce, ok := clip.Extents(); ok {
			r = r.Intersect(ce)
		}
		return r
	}

	switch c := cmd.(type) {
	case *recording.PaintCmd:
		return bounds(c.Clip, image.Rectangle{}, false)
	case *recording.MaskCmd:
		geom, bounded := c.Mask.Extents()
		return bounds(c.Clip, geom, bounded)
	case *recording.StrokeCmd:
		minX, minY, maxX, maxY := c.Path.Bounds()
		pad := c.Style.MaxDistanceFromPath(c.CTM)
		geom := vg.RectFromExtents(minX-pad, minY-pad, maxX+pad, maxY+pad)
		return bounds(c.Clip, geom, true)
	case *recording.FillCmd:
		return bounds(c.Clip, c.Path.DeviceBounds(), true)
	case *recording.ShowTextGlyphsCmd:
		geom, err := c.Font.GlyphExtents(c.Glyphs)
		return bounds(c.Clip, geom, err == nil)
	default:
		return image.Rectangle{}
	}
}

// pageBox returns the finite rectangle fallback rasterization covers.
// Unbounded targets get the union of everything recorded.
func (b *Backend) pageBox() image.Rectangle {
	if b.bounded {
		return b.extents
	}
	if r, ok := b.rec.Extents(); ok {
		return r
	}
	// Recorded-command union for unbounded recordings: fall back to
	// the union of clip and geometry boxes.
	var union image.Rectangle
	for _, cmd := range b.rec.Commands() {
		switch c := cmd.(type) {
		case *recording.StrokeCmd:
			union = union.Union(c.Path.DeviceBounds())
		case *recording.FillCmd:
			union = union.Union(c.Path.DeviceBounds())
		case *recording.ShowTextGlyphsCmd:
			if r, err := c.Font.GlyphExtents(c.Glyphs); err == nil {
				union = union.Union(r)
			}
		case *recording.PaintCmd:
			if ce, ok := c.Clip.Extents(); ok {
				union = union.Union(ce)
			}
		case *recording.MaskCmd:
			if r, ok := c.Mask.Extents(); ok {
				union = union.Union(r)
			}
		}
	}
	return union
}
