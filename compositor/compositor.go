// Package compositor dispatches drawing operations down a chain of
// compositors until one handles the operation.
//
// A Compositor implements any subset of the five drawing primitives;
// nil function fields mean "not supported". Dispatch walks the chain in
// a single flat loop: entries lacking the primitive are skipped, and an
// entry that returns vg.ErrUnsupported hands the operation to the next
// one. A chain is usable when it ends in a compositor implementing all
// five primitives, so dispatch can never fall off the end.
package compositor

import (
	"errors"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/damage"
)

// PaintFunc composites the source over the computed rectangles.
type PaintFunc func(r *Rectangles) error

// MaskFunc composites the source through r.Mask.
type MaskFunc func(r *Rectangles) error

// StrokeFunc strokes the path outline. ctmInverse is the precomputed
// inverse of ctm.
type StrokeFunc func(r *Rectangles, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64) error

// FillFunc fills the path interior.
type FillFunc func(r *Rectangles, path *vg.Path, rule vg.FillRule, tolerance float64) error

// GlyphsFunc renders glyphs from the scaled font.
type GlyphsFunc func(r *Rectangles, font vg.Font, glyphs []vg.Glyph) error

// Compositor is one entry in a delegate chain.
type Compositor struct {
	// Delegate is tried when this compositor cannot handle an
	// operation. Nil terminates the chain.
	Delegate *Compositor

	PaintFn  PaintFunc
	MaskFn   MaskFunc
	StrokeFn StrokeFunc
	FillFn   FillFunc
	GlyphsFn GlyphsFunc
}

// Damager is implemented by destinations that track dirty areas.
// After a successful composite the operation's unbounded rectangle is
// appended to it.
type Damager interface {
	Damage() *damage.Damage
	SetDamage(*damage.Damage)
}

// accumulate records the unbounded rectangle on the target's damage
// accumulator, if it has a live one. The unbounded rectangle is used
// even for bounded operations: it over-approximates safely and is
// already computed.
func accumulate(r *Rectangles) {
	t, ok := r.Target.(Damager)
	if !ok {
		return
	}
	d := t.Damage()
	if d == nil || d.Err() != nil {
		return
	}
	t.SetDamage(d.AddBox(r.Unbounded))
}

// Paint dispatches a paint operation down the chain.
func (c *Compositor) Paint(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	r, err := ForPaint(dst, op, source, clip)
	if err != nil {
		return err
	}
	for cur := c; cur != nil; cur = cur.Delegate {
		if cur.PaintFn == nil {
			continue
		}
		err := cur.PaintFn(r)
		if errors.Is(err, vg.ErrUnsupported) {
			continue
		}
		if err == nil {
			accumulate(r)
		}
		return err
	}
	return vg.ErrUnsupported
}

// Mask dispatches a mask operation down the chain.
func (c *Compositor) Mask(dst vg.SurfaceSource, op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	r, err := ForMask(dst, op, source, mask, clip)
	if err != nil {
		return err
	}
	for cur := c; cur != nil; cur = cur.Delegate {
		if cur.MaskFn == nil {
			continue
		}
		err := cur.MaskFn(r)
		if errors.Is(err, vg.ErrUnsupported) {
			continue
		}
		if err == nil {
			accumulate(r)
		}
		return err
	}
	return vg.ErrUnsupported
}

// Stroke dispatches a stroke operation down the chain.
//
// A pen that degenerates to at most one vertex at this tolerance draws
// nothing, and returns before any extents are computed. A hairline
// style renders at exactly one device pixel regardless of the CTM: the
// style is copied with width 1 and the transform replaced by identity
// for the duration of the call.
func (c *Compositor) Stroke(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	if !style.IsHairline && style.PenVertexCount(tolerance) <= 1 {
		return vg.ErrNothingToDo
	}
	if style.IsHairline {
		hair := style.Clone()
		hair.Width = 1.0
		hair.IsHairline = false
		style = hair
		ctm = vg.Identity()
		ctmInverse = vg.Identity()
	}

	r, err := ForStroke(dst, op, source, path, style, ctm, clip)
	if err != nil {
		return err
	}
	for cur := c; cur != nil; cur = cur.Delegate {
		if cur.StrokeFn == nil {
			continue
		}
		err := cur.StrokeFn(r, path, style, ctm, ctmInverse, tolerance)
		if errors.Is(err, vg.ErrUnsupported) {
			continue
		}
		if err == nil {
			accumulate(r)
		}
		return err
	}
	return vg.ErrUnsupported
}

// Fill dispatches a fill operation down the chain.
func (c *Compositor) Fill(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	r, err := ForFill(dst, op, source, path, clip)
	if err != nil {
		return err
	}
	for cur := c; cur != nil; cur = cur.Delegate {
		if cur.FillFn == nil {
			continue
		}
		err := cur.FillFn(r, path, rule, tolerance)
		if errors.Is(err, vg.ErrUnsupported) {
			continue
		}
		if err == nil {
			accumulate(r)
		}
		return err
	}
	return vg.ErrUnsupported
}

// Glyphs dispatches a glyph-rendering operation down the chain.
func (c *Compositor) Glyphs(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) error {
	if len(glyphs) == 0 {
		return vg.ErrNothingToDo
	}
	r, err := ForGlyphs(dst, op, source, font, glyphs, clip)
	if err != nil {
		return err
	}
	for cur := c; cur != nil; cur = cur.Delegate {
		if cur.GlyphsFn == nil {
			continue
		}
		err := cur.GlyphsFn(r, font, glyphs)
		if errors.Is(err, vg.ErrUnsupported) {
			continue
		}
		if err == nil {
			accumulate(r)
		}
		return err
	}
	return vg.ErrUnsupported
}
