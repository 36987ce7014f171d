package raster

import (
	"image"
	"image/color"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/compositor"
)

// newCompositor builds the backend's delegate chain: a fast path for
// solid sources over simple clips, ending in the general per-pixel
// compositor, which handles every operator and pattern and therefore
// terminates the chain.
func newCompositor(b *Backend) *compositor.Compositor {
	general := &compositor.Compositor{
		PaintFn:  b.generalPaint,
		MaskFn:   b.generalMask,
		StrokeFn: b.generalStroke,
		FillFn:   b.generalFill,
		GlyphsFn: b.generalGlyphs,
	}
	return &compositor.Compositor{
		Delegate: general,
		PaintFn:  b.solidPaint,
		FillFn:   b.solidFill,
	}
}

// coverage is an 8-bit per-pixel mask over a device rectangle.
type coverage struct {
	bounds image.Rectangle
	data   []uint8
}

func newCoverage(bounds image.Rectangle) *coverage {
	return &coverage{
		bounds: bounds,
		data:   make([]uint8, bounds.Dx()*bounds.Dy()),
	}
}

func (c *coverage) mark(s span) {
	row := (s.y - c.bounds.Min.Y) * c.bounds.Dx()
	for x := s.x0; x < s.x1; x++ {
		c.data[row+x-c.bounds.Min.X] = 255
	}
}

func (c *coverage) at(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(c.bounds) {
		return 0
	}
	return c.data[(y-c.bounds.Min.Y)*c.bounds.Dx()+x-c.bounds.Min.X]
}

// coverageForPath rasterizes a filled path into a coverage mask over
// bounds.
func coverageForPath(path *vg.Path, rule vg.FillRule, tolerance float64, bounds image.Rectangle) *coverage {
	cov := newCoverage(bounds)
	var edges edgeList
	edges.addPath(path, tolerance)
	sb := spanBounds{minX: bounds.Min.X, minY: bounds.Min.Y, maxX: bounds.Max.X, maxY: bounds.Max.Y}
	edges.scan(sb, rule, cov.mark)
	return cov
}

// clipCoverage rasterizes the clip's analytic path, if it has one.
func clipCoverage(clip *vg.Clip, bounds image.Rectangle) *coverage {
	p, rule := clip.Path()
	if p == nil {
		return nil
	}
	return coverageForPath(p, rule, vg.DefaultTolerance, bounds)
}

// clipRegions returns the clip rectangles intersected with bounds.
func clipRegions(clip *vg.Clip, bounds image.Rectangle) []image.Rectangle {
	rects := clip.Rects()
	if rects == nil {
		return []image.Rectangle{bounds}
	}
	out := make([]image.Rectangle, 0, len(rects))
	for _, cr := range rects {
		if i := cr.Intersect(bounds); !i.Empty() {
			out = append(out, i)
		}
	}
	return out
}

func mulColor(c color.RGBA, f uint32) color.RGBA {
	if f == 255 {
		return c
	}
	return color.RGBA{
		R: uint8(mul255(uint32(c.R), f)),
		G: uint8(mul255(uint32(c.G), f)),
		B: uint8(mul255(uint32(c.B), f)),
		A: uint8(mul255(uint32(c.A), f)),
	}
}

// compositeArea runs the operator over every pixel of area. Source
// pixels are sampled at pixel centers and scaled by the shape coverage,
// the clip-path coverage and the mask alpha before compositing, so a
// coverage of zero still applies operators that affect uncovered
// pixels.
func (b *Backend) compositeArea(op vg.Op, src sampler, area image.Rectangle, cov, clipCov *coverage, mask sampler) {
	area = area.Intersect(b.pixels.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			f := uint32(255)
			if cov != nil {
				f = uint32(cov.at(x, y))
			}
			if clipCov != nil {
				f = mul255(f, uint32(clipCov.at(x, y)))
			}
			cx, cy := float64(x)+0.5, float64(y)+0.5
			if mask != nil {
				f = mul255(f, uint32(mask(cx, cy).A))
			}
			var s color.RGBA
			if f > 0 {
				s = mulColor(src(cx, cy), f)
			}
			d := b.pixels.RGBAAt(x, y)
			b.pixels.SetRGBA(x, y, compose(op, s, d))
		}
	}
}

// opArea is the rectangle an operation touches: the precomputed bounded
// extents when the operator leaves uncovered pixels alone, the whole
// destination-and-clip intersection otherwise.
func opArea(r *compositor.Rectangles) image.Rectangle {
	if r.IsBounded {
		return r.Bounded
	}
	return r.Unbounded
}

func (b *Backend) generalPaint(r *compositor.Rectangles) error {
	src, release, err := newSampler(r.Source)
	if err != nil {
		return err
	}
	defer release()

	area := opArea(r)
	clipCov := clipCoverage(r.Clip, area)
	for _, region := range clipRegions(r.Clip, area) {
		b.compositeArea(r.Op, src, region, nil, clipCov, nil)
	}
	return nil
}

func (b *Backend) generalMask(r *compositor.Rectangles) error {
	src, release, err := newSampler(r.Source)
	if err != nil {
		return err
	}
	defer release()
	mask, maskRelease, err := newSampler(r.Mask)
	if err != nil {
		return err
	}
	defer maskRelease()

	area := opArea(r)
	clipCov := clipCoverage(r.Clip, area)
	for _, region := range clipRegions(r.Clip, area) {
		b.compositeArea(r.Op, src, region, nil, clipCov, mask)
	}
	return nil
}

// fillShape composites the source through the coverage of a filled
// device-space path. Shared by fill, stroke and glyph rendering.
func (b *Backend) fillShape(r *compositor.Rectangles, path *vg.Path, rule vg.FillRule, tolerance float64) error {
	src, release, err := newSampler(r.Source)
	if err != nil {
		return err
	}
	defer release()

	area := opArea(r)
	cov := coverageForPath(path, rule, tolerance, area)
	clipCov := clipCoverage(r.Clip, area)
	for _, region := range clipRegions(r.Clip, area) {
		b.compositeArea(r.Op, src, region, cov, clipCov, nil)
	}
	return nil
}

func (b *Backend) generalFill(r *compositor.Rectangles, path *vg.Path, rule vg.FillRule, tolerance float64) error {
	return b.fillShape(r, path, rule, tolerance)
}

func (b *Backend) generalStroke(r *compositor.Rectangles, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64) error {
	outline := strokeOutline(path, style, ctm, tolerance)
	if outline.IsEmpty() {
		return vg.ErrNothingToDo
	}
	return b.fillShape(r, outline, vg.FillRuleNonZero, tolerance)
}

// glyphPather is the glyph-to-path capability of scaled fonts.
type glyphPather interface {
	GlyphPath(glyphs []vg.Glyph) (*vg.Path, error)
}

func (b *Backend) generalGlyphs(r *compositor.Rectangles, font vg.Font, glyphs []vg.Glyph) error {
	gp, ok := font.(glyphPather)
	if !ok {
		return vg.ErrUnsupported
	}
	path, err := gp.GlyphPath(glyphs)
	if err != nil {
		return err
	}
	if path.IsEmpty() {
		return vg.ErrNothingToDo
	}
	return b.fillShape(r, path, vg.FillRuleNonZero, vg.DefaultTolerance)
}

// solidStore reports whether the operation reduces to storing a single
// pixel value, and that value. Holds for clears, solid sources, and
// opaque solid colors under OpOver.
func solidStore(op vg.Op, source vg.Pattern) (color.RGBA, bool) {
	switch op {
	case vg.OpClear:
		return color.RGBA{}, true
	case vg.OpSource, vg.OpOver:
		solid, ok := source.(*vg.SolidPattern)
		if !ok {
			return color.RGBA{}, false
		}
		if op == vg.OpOver && !solid.C.IsOpaque() {
			return color.RGBA{}, false
		}
		return solid.C.Premultiplied(), true
	}
	return color.RGBA{}, false
}

// solidPaint stores a single value over the paint area. Bails out to
// the general path when the clip carries an analytic path.
func (b *Backend) solidPaint(r *compositor.Rectangles) error {
	c, ok := solidStore(r.Op, r.Source)
	if !ok {
		return vg.ErrUnsupported
	}
	if p, _ := r.Clip.Path(); p != nil {
		return vg.ErrUnsupported
	}
	for _, region := range clipRegions(r.Clip, opArea(r)) {
		b.storeRect(region, c)
	}
	return nil
}

// solidFill stores a single value over the fill spans. Only operators
// bounded by their mask qualify: unbounded operators also modify pixels
// outside the shape and need the general path.
func (b *Backend) solidFill(r *compositor.Rectangles, path *vg.Path, rule vg.FillRule, tolerance float64) error {
	c, ok := solidStore(r.Op, r.Source)
	if !ok || !r.Op.BoundedByMask() {
		return vg.ErrUnsupported
	}
	if p, _ := r.Clip.Path(); p != nil {
		return vg.ErrUnsupported
	}

	var edges edgeList
	edges.addPath(path, tolerance)
	for _, region := range clipRegions(r.Clip, r.Bounded) {
		region = region.Intersect(b.pixels.Bounds())
		sb := spanBounds{minX: region.Min.X, minY: region.Min.Y, maxX: region.Max.X, maxY: region.Max.Y}
		edges.scan(sb, rule, func(s span) {
			row := b.pixels.PixOffset(s.x0, s.y)
			for x := s.x0; x < s.x1; x++ {
				b.pixels.Pix[row+0] = c.R
				b.pixels.Pix[row+1] = c.G
				b.pixels.Pix[row+2] = c.B
				b.pixels.Pix[row+3] = c.A
				row += 4
			}
		})
	}
	return nil
}

func (b *Backend) storeRect(r image.Rectangle, c color.RGBA) {
	r = r.Intersect(b.pixels.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.pixels.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			b.pixels.Pix[row+0] = c.R
			b.pixels.Pix[row+1] = c.G
			b.pixels.Pix[row+2] = c.B
			b.pixels.Pix[row+3] = c.A
			row += 4
		}
	}
}
