package surface

import (
	"image"

	"github.com/gogpu/vg"
)

// Wrapper redirects drawing operations to a target surface under a
// coordinate transform, an optional rectangular extents restriction,
// and an optional extra clip. Higher layers (tee fan-out, paginated
// replay) draw through wrappers instead of touching targets directly.
//
// The zero Wrapper is unusable; use NewWrapper.
type Wrapper struct {
	target *Surface

	// transform maps wrapper user space to target user space; the
	// target's own device transform composes on top of it on the way
	// in.
	transform vg.Matrix
	inverse   vg.Matrix

	hasExtents bool
	extents    image.Rectangle

	// clip is an extra restriction in target device space.
	clip *vg.Clip
}

// NewWrapper creates a wrapper around target with an identity
// transform and no restrictions.
func NewWrapper(target *Surface) *Wrapper {
	return &Wrapper{
		target:    target,
		transform: vg.Identity(),
		inverse:   vg.Identity(),
	}
}

// Target returns the wrapped surface.
func (w *Wrapper) Target() *Surface { return w.target }

// SetTransform sets the wrapper-to-target transform. Fails with
// vg.ErrInvalidMatrix for singular matrices.
func (w *Wrapper) SetTransform(m vg.Matrix) error {
	inv, err := m.Invert()
	if err != nil {
		return err
	}
	w.transform = m
	w.inverse = inv
	return nil
}

// Transform returns the wrapper-to-target transform.
func (w *Wrapper) Transform() vg.Matrix { return w.transform }

// SetExtents restricts drawing to r in wrapper space.
func (w *Wrapper) SetExtents(r image.Rectangle) {
	w.hasExtents = true
	w.extents = r
}

// ClearExtents removes the extents restriction.
func (w *Wrapper) ClearExtents() { w.hasExtents = false }

// SetClip installs an extra clip in target device space.
func (w *Wrapper) SetClip(c *vg.Clip) { w.clip = c }

// effective composes the wrapper transform with the target's device
// transform and returns the forward matrix, its inverse, and whether
// either differs from identity. Geometry handed to the target is
// forward-transformed once here; the inverse is computed from the two
// stored exact inverses so the pair stays exact.
func (w *Wrapper) effective() (fwd, inv vg.Matrix, needed bool) {
	fwd, inv = w.transform, w.inverse
	if d := w.target.DeviceTransform(); !d.IsIdentity() {
		fwd = d.Multiply(fwd)
		inv = inv.Multiply(w.target.DeviceTransformInverse())
	}
	return fwd, inv, !fwd.IsIdentity()
}

// deviceClip computes the effective target-space clip for one
// operation: the caller's clip, restricted to the wrapper extents,
// mapped through the composed transform, intersected with the
// wrapper's own clip. done is true when the result excludes
// everything.
func (w *Wrapper) deviceClip(clip *vg.Clip) (dev *vg.Clip, done bool) {
	dev = clip.Copy()
	if w.hasExtents {
		dev = dev.IntersectRect(w.extents)
	}
	if fwd, _, needed := w.effective(); needed {
		dev = dev.Transform(fwd)
	}
	if w.clip != nil {
		dev = dev.Intersect(w.clip)
	}
	return dev, dev.IsEmpty()
}

// pattern maps a pattern into target space: the pattern matrix is
// pre-multiplied by the composed inverse so sampling in target space
// lands on the same pattern pixels.
func (w *Wrapper) pattern(p vg.Pattern) vg.Pattern {
	if p == nil {
		return nil
	}
	if _, inv, needed := w.effective(); needed {
		return p.Transformed(inv)
	}
	return p
}

// path returns a copy of p mapped into target space, or p itself when
// no transform is needed.
func (w *Wrapper) path(p *vg.Path) *vg.Path {
	fwd, _, needed := w.effective()
	if p == nil || !needed {
		return p
	}
	cp := p.Clone()
	cp.Transform(fwd)
	return cp
}

// strokeCTM recomposes a stroke transform pair with the composed
// transform, since the path itself is handed over in target space.
func (w *Wrapper) strokeCTM(ctm, ctmInverse vg.Matrix) (vg.Matrix, vg.Matrix) {
	fwd, inv, needed := w.effective()
	if !needed {
		return ctm, ctmInverse
	}
	return fwd.Multiply(ctm), ctmInverse.Multiply(inv)
}

// Paint paints through the wrapper.
func (w *Wrapper) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}
	return w.target.Paint(op, w.pattern(source), dev)
}

// Mask masks through the wrapper.
func (w *Wrapper) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}
	return w.target.Mask(op, w.pattern(source), w.pattern(mask), dev)
}

// Stroke strokes through the wrapper.
func (w *Wrapper) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}
	devCTM, devInv := w.strokeCTM(ctm, ctmInverse)
	return w.target.Stroke(op, w.pattern(source), w.path(path), style, devCTM, devInv, tolerance, dev)
}

// Fill fills through the wrapper.
func (w *Wrapper) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}
	return w.target.Fill(op, w.pattern(source), w.path(path), rule, tolerance, dev)
}

// FillStroke fills and strokes one path through the wrapper. The fill
// and stroke inputs are transformed consistently since they share the
// path.
func (w *Wrapper) FillStroke(op vg.Op,
	fillSource vg.Pattern, rule vg.FillRule,
	strokeSource vg.Pattern, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix,
	path *vg.Path, tolerance float64, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}
	devCTM, devInv := w.strokeCTM(ctm, ctmInverse)
	return w.target.FillStroke(op,
		w.pattern(fillSource), rule,
		w.pattern(strokeSource), style, devCTM, devInv,
		w.path(path), tolerance, dev)
}

// ShowTextGlyphs renders glyphs through the wrapper. Glyph positions
// are transformed individually; under a non-translation transform a
// derived scaled font bound to the composed CTM replaces the caller's.
func (w *Wrapper) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	if err := w.target.Status(); err != nil {
		return err
	}
	dev, done := w.deviceClip(clip)
	if done {
		return nil
	}

	if fwd, _, needed := w.effective(); needed {
		moved := make([]vg.Glyph, len(glyphs))
		for i, g := range glyphs {
			p := fwd.TransformPoint(vg.Point{X: g.X, Y: g.Y})
			moved[i] = vg.Glyph{Index: g.Index, X: p.X, Y: p.Y}
		}
		glyphs = moved

		if !fwd.IsTranslation() {
			derived, err := font.WithCTM(fwd.Multiply(font.CTM()))
			if err != nil {
				return err
			}
			font = derived
		}
	}
	return w.target.ShowTextGlyphs(op, w.pattern(source), text, font, glyphs, clusters, flags, dev)
}

// ShowGlyphs renders glyphs without text through the wrapper.
func (w *Wrapper) ShowGlyphs(op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) error {
	return w.ShowTextGlyphs(op, source, "", font, glyphs, nil, 0, clip)
}
