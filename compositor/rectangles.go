package compositor

import (
	"image"

	"github.com/gogpu/vg"
)

// Rectangles carries the shared per-operation state computed once before
// walking the compositor chain: the destination, operator, patterns and
// clip, plus the device-space extents the operation may touch.
//
// Unbounded is the destination intersected with the clip: the largest
// area the operation is allowed to modify. Bounded further intersects
// the operation's own extents (mask, path, glyphs) and, for operators
// bounded by their source, the source extents. IsBounded reports whether
// the two coincide, i.e. whether the operator leaves pixels outside the
// operation extents untouched.
type Rectangles struct {
	Target vg.SurfaceSource
	Op     vg.Op
	Source vg.Pattern
	Mask   vg.Pattern
	Clip   *vg.Clip

	Bounded   image.Rectangle
	Unbounded image.Rectangle
	IsBounded bool
}

// initRectangles computes the destination-and-clip intersection common to
// every operation. It reports vg.ErrNothingToDo when the clip excludes
// everything or the destination is empty.
func initRectangles(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, clip *vg.Clip) (*Rectangles, error) {
	if clip.IsEmpty() {
		return nil, vg.ErrNothingToDo
	}
	if source != nil {
		if err := source.Err(); err != nil {
			return nil, err
		}
	}

	dest := vg.UnboundedRect
	if ext, ok := dst.Extents(); ok {
		dest = ext
	}
	if ce, ok := clip.Extents(); ok {
		dest = dest.Intersect(ce)
	}
	if dest.Empty() {
		return nil, vg.ErrNothingToDo
	}

	r := &Rectangles{
		Target:    dst,
		Op:        op,
		Source:    source,
		Clip:      clip,
		Bounded:   dest,
		Unbounded: dest,
		IsBounded: true,
	}
	if source != nil && op.BoundedBySource() {
		if se, ok := source.Extents(); ok {
			r.Bounded = r.Bounded.Intersect(se)
		}
	}
	return r, nil
}

// intersectOperation narrows the bounded rectangle by the operation's own
// extents (mask, path or glyph bounds). Operators not bounded by their
// mask keep the full unbounded rectangle and are flagged unbounded.
func (r *Rectangles) intersectOperation(extents image.Rectangle) error {
	if r.Op.BoundedByMask() {
		r.Bounded = r.Bounded.Intersect(extents)
		if r.Bounded.Empty() {
			return vg.ErrNothingToDo
		}
		return nil
	}
	r.IsBounded = false
	r.Bounded = r.Bounded.Intersect(extents)
	return nil
}

// ForPaint computes composite rectangles for a paint operation, which has
// no operation extents of its own beyond the destination and clip.
func ForPaint(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, clip *vg.Clip) (*Rectangles, error) {
	r, err := initRectangles(dst, op, source, clip)
	if err != nil {
		return nil, err
	}
	if !op.BoundedByMask() {
		r.IsBounded = false
	}
	return r, nil
}

// ForMask computes composite rectangles for a mask operation.
func ForMask(dst vg.SurfaceSource, op vg.Op, source, mask vg.Pattern, clip *vg.Clip) (*Rectangles, error) {
	r, err := initRectangles(dst, op, source, clip)
	if err != nil {
		return nil, err
	}
	if err := mask.Err(); err != nil {
		return nil, err
	}
	r.Mask = mask
	me, ok := mask.Extents()
	if !ok {
		me = r.Unbounded
	}
	if err := r.intersectOperation(me); err != nil {
		return nil, err
	}
	return r, nil
}

// ForStroke computes composite rectangles for a stroke operation. The
// operation extents are the path bounds inflated by the style's maximum
// pen distance under the given CTM.
func ForStroke(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm vg.Matrix, clip *vg.Clip) (*Rectangles, error) {
	r, err := initRectangles(dst, op, source, clip)
	if err != nil {
		return nil, err
	}
	x0, y0, x1, y1 := path.Bounds()
	pad := style.MaxDistanceFromPath(ctm)
	ext := vg.RectFromExtents(x0-pad, y0-pad, x1+pad, y1+pad)
	if err := r.intersectOperation(ext); err != nil {
		return nil, err
	}
	return r, nil
}

// ForFill computes composite rectangles for a fill operation.
func ForFill(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, path *vg.Path, clip *vg.Clip) (*Rectangles, error) {
	r, err := initRectangles(dst, op, source, clip)
	if err != nil {
		return nil, err
	}
	if err := r.intersectOperation(path.DeviceBounds()); err != nil {
		return nil, err
	}
	return r, nil
}

// ForGlyphs computes composite rectangles for a glyph-rendering
// operation. The glyph extents come from the scaled font.
func ForGlyphs(dst vg.SurfaceSource, op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) (*Rectangles, error) {
	r, err := initRectangles(dst, op, source, clip)
	if err != nil {
		return nil, err
	}
	ext, err := font.GlyphExtents(glyphs)
	if err != nil {
		return nil, err
	}
	if err := r.intersectOperation(ext); err != nil {
		return nil, err
	}
	return r, nil
}
