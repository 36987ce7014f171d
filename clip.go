package vg

import "image"

// Clip restricts drawing to a region of the destination.
//
// A nil *Clip means "no clipping" (the whole surface). A non-nil Clip
// holds a union of device-space rectangles, optionally refined by an
// analytic path; a Clip whose rectangle set is empty is the
// "fully clipped" sentinel: every operation under it is a no-op.
type Clip struct {
	rects []image.Rectangle
	path  *Path
	rule  FillRule
}

// NewClip creates a rectangular clip.
func NewClip(r image.Rectangle) *Clip {
	if r.Empty() {
		return EmptyClip()
	}
	return &Clip{rects: []image.Rectangle{r}}
}

// NewClipPath creates a clip bounded by a path. The clip's rectangle set
// is the path's device bounds; the path itself rides along for backends
// that can clip analytically.
func NewClipPath(p *Path, rule FillRule) *Clip {
	b := p.DeviceBounds()
	if b.Empty() {
		return EmptyClip()
	}
	return &Clip{rects: []image.Rectangle{b}, path: p.Clone(), rule: rule}
}

// EmptyClip returns the fully-clipped sentinel.
func EmptyClip() *Clip {
	return &Clip{}
}

// IsEmpty reports whether the clip excludes everything.
func (c *Clip) IsEmpty() bool {
	return c != nil && len(c.rects) == 0
}

// Rects returns the clip rectangles. The caller must not modify them.
func (c *Clip) Rects() []image.Rectangle {
	if c == nil {
		return nil
	}
	return c.rects
}

// Path returns the analytic clip path, or nil.
func (c *Clip) Path() (*Path, FillRule) {
	if c == nil {
		return nil, FillRuleNonZero
	}
	return c.path, c.rule
}

// Extents returns the bounding rectangle of the clip.
// ok is false for an unbounded (nil) clip.
func (c *Clip) Extents() (image.Rectangle, bool) {
	if c == nil {
		return UnboundedRect, false
	}
	var r image.Rectangle
	for _, b := range c.rects {
		r = r.Union(b)
	}
	return r, true
}

// Copy returns an independent copy of the clip. Copying nil yields nil.
func (c *Clip) Copy() *Clip {
	if c == nil {
		return nil
	}
	cp := &Clip{
		rects: append([]image.Rectangle(nil), c.rects...),
		rule:  c.rule,
	}
	if c.path != nil {
		cp.path = c.path.Clone()
	}
	return cp
}

// IntersectRect returns the clip restricted to r.
func (c *Clip) IntersectRect(r image.Rectangle) *Clip {
	if c == nil {
		return NewClip(r)
	}
	out := &Clip{rule: c.rule}
	if c.path != nil {
		out.path = c.path.Clone()
	}
	for _, b := range c.rects {
		if i := b.Intersect(r); !i.Empty() {
			out.rects = append(out.rects, i)
		}
	}
	return out
}

// Intersect returns the intersection of two clips.
func (c *Clip) Intersect(other *Clip) *Clip {
	if other == nil {
		return c.Copy()
	}
	if c == nil {
		return other.Copy()
	}
	out := &Clip{rule: c.rule}
	for _, a := range c.rects {
		for _, b := range other.rects {
			if i := a.Intersect(b); !i.Empty() {
				out.rects = append(out.rects, i)
			}
		}
	}
	// Keep whichever analytic path survives; intersecting two arbitrary
	// paths is left to the rasterizer via the rectangle bound.
	switch {
	case c.path != nil:
		out.path = c.path.Clone()
	case other.path != nil:
		out.path = other.path.Clone()
		out.rule = other.rule
	}
	return out
}

// Transform returns the clip mapped through m. Rectangles become the
// device bounds of their transformed corners; the analytic path is
// transformed exactly.
func (c *Clip) Transform(m Matrix) *Clip {
	if c == nil {
		return nil
	}
	if m.IsIdentity() {
		return c.Copy()
	}
	out := &Clip{rule: c.rule}
	for _, b := range c.rects {
		if t := m.TransformRect(b); !t.Empty() {
			out.rects = append(out.rects, t)
		}
	}
	if c.path != nil {
		out.path = c.path.Clone()
		out.path.Transform(m)
	}
	return out
}

// Contains reports whether the clip completely covers r.
func (c *Clip) Contains(r image.Rectangle) bool {
	if c == nil {
		return true
	}
	for _, b := range c.rects {
		if r.In(b) {
			return true
		}
	}
	return false
}
