package vg

import (
	"image"
	"math"
)

// PathVerb identifies a path construction command.
type PathVerb uint8

const (
	// VerbMoveTo starts a new subpath. One point.
	VerbMoveTo PathVerb = iota

	// VerbLineTo adds a straight segment. One point.
	VerbLineTo

	// VerbQuadTo adds a quadratic Bezier. Two points (control, end).
	VerbQuadTo

	// VerbCubicTo adds a cubic Bezier. Three points (two controls, end).
	VerbCubicTo

	// VerbClose closes the current subpath. No points.
	VerbClose
)

// pointCount is the number of points each verb consumes.
var pointCount = [...]int{
	VerbMoveTo:  1,
	VerbLineTo:  1,
	VerbQuadTo:  2,
	VerbCubicTo: 3,
	VerbClose:   0,
}

// Path represents a vector path for drawing operations.
//
// A Path is a builder: MoveTo/LineTo/QuadTo/CubicTo/Close append to it.
// Paths handed to surfaces are not modified by the library; composite
// backends that need to transform a path operate on a Clone.
type Path struct {
	verbs  []PathVerb
	points []Point
	start  Point
	cur    Point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]PathVerb, 0, 16),
		points: make([]Point, 0, 32),
	}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.verbs = append(p.verbs, VerbMoveTo)
	p.points = append(p.points, Point{x, y})
	p.start = Point{x, y}
	p.cur = p.start
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbLineTo)
	p.points = append(p.points, Point{x, y})
	p.cur = Point{x, y}
}

// QuadTo adds a quadratic Bezier curve from the current point.
// (cx, cy) is the control point, (x, y) is the endpoint.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(cx, cy)
	}
	p.verbs = append(p.verbs, VerbQuadTo)
	p.points = append(p.points, Point{cx, cy}, Point{x, y})
	p.cur = Point{x, y}
}

// CubicTo adds a cubic Bezier curve from the current point.
// (c1x, c1y) and (c2x, c2y) are control points, (x, y) is the endpoint.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.verbs = append(p.verbs, VerbCubicTo)
	p.points = append(p.points, Point{c1x, c1y}, Point{c2x, c2y}, Point{x, y})
	p.cur = Point{x, y}
}

// Close closes the current subpath by connecting to the start point.
func (p *Path) Close() {
	if len(p.verbs) == 0 {
		return
	}
	p.verbs = append(p.verbs, VerbClose)
	p.cur = p.start
}

// Rectangle adds a closed rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a circle to the path, approximated with four cubics.
func (p *Path) Circle(cx, cy, r float64) {
	const k = 0.5522847498307936
	offset := r * k

	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+offset, cx+offset, cy+r, cx, cy+r)
	p.CubicTo(cx-offset, cy+r, cx-r, cy+offset, cx-r, cy)
	p.CubicTo(cx-r, cy-offset, cx-offset, cy-r, cx, cy-r)
	p.CubicTo(cx+offset, cy-r, cx+r, cy-offset, cx+r, cy)
	p.Close()
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.verbs) == 0
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point { return p.cur }

// Verbs returns the verb slice. The caller must not modify it.
func (p *Path) Verbs() []PathVerb { return p.verbs }

// Points returns the point slice. The caller must not modify it.
func (p *Path) Points() []Point { return p.points }

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	clone := &Path{
		verbs:  make([]PathVerb, len(p.verbs)),
		points: make([]Point, len(p.points)),
		start:  p.start,
		cur:    p.cur,
	}
	copy(clone.verbs, p.verbs)
	copy(clone.points, p.points)
	return clone
}

// Transform applies the matrix to every point of the path in place.
func (p *Path) Transform(m Matrix) {
	if m.IsIdentity() {
		return
	}
	for i := range p.points {
		p.points[i] = m.TransformPoint(p.points[i])
	}
	p.start = m.TransformPoint(p.start)
	p.cur = m.TransformPoint(p.cur)
}

// Bounds returns the control-point bounding box of the path.
// This over-approximates the ink extents: Bezier control points may lie
// outside the curve, but never inside it.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p.points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = p.points[0].X, p.points[0].Y
	maxX, maxY = minX, minY
	for _, pt := range p.points[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return minX, minY, maxX, maxY
}

// DeviceBounds returns the path bounds as an outward-rounded device
// rectangle. An empty path yields the empty rectangle.
func (p *Path) DeviceBounds() image.Rectangle {
	if p.IsEmpty() {
		return image.Rectangle{}
	}
	x0, y0, x1, y1 := p.Bounds()
	return RectFromExtents(x0, y0, x1, y1)
}

// Polyline is one flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Flatten converts the path to straight-line polylines, subdividing
// Bezier curves so that the maximum deviation stays within tolerance.
func (p *Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = 0.1
	}
	var (
		out   []Polyline
		cur   []Point
		start Point
		pos   Point
	)
	flush := func(closed bool) {
		if len(cur) > 1 {
			out = append(out, Polyline{Points: cur, Closed: closed})
		}
		cur = nil
	}

	pi := 0
	for _, v := range p.verbs {
		pts := p.points[pi : pi+pointCount[v]]
		pi += pointCount[v]
		switch v {
		case VerbMoveTo:
			flush(false)
			start = pts[0]
			pos = start
			cur = append(cur, pos)
		case VerbLineTo:
			pos = pts[0]
			cur = append(cur, pos)
		case VerbQuadTo:
			cur = appendQuad(cur, pos, pts[0], pts[1], tolerance)
			pos = pts[1]
		case VerbCubicTo:
			cur = appendCubic(cur, pos, pts[0], pts[1], pts[2], tolerance)
			pos = pts[2]
		case VerbClose:
			if len(cur) > 0 {
				cur = append(cur, start)
			}
			flush(true)
			pos = start
		}
	}
	flush(false)
	return out
}

// appendQuad subdivides a quadratic Bezier into line segments.
func appendQuad(dst []Point, p0, p1, p2 Point, tolerance float64) []Point {
	n := curveSegments(dist(p0, p1)+dist(p1, p2), tolerance)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X
		y := mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y
		dst = append(dst, Point{x, y})
	}
	return dst
}

// appendCubic subdivides a cubic Bezier into line segments.
func appendCubic(dst []Point, p0, p1, p2, p3 Point, tolerance float64) []Point {
	n := curveSegments(dist(p0, p1)+dist(p1, p2)+dist(p2, p3), tolerance)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		x := a*p0.X + b*p1.X + c*p2.X + d*p3.X
		y := a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y
		dst = append(dst, Point{x, y})
	}
	return dst
}

// curveSegments picks a subdivision count from the control polygon length.
func curveSegments(polyLen, tolerance float64) int {
	n := int(math.Ceil(math.Sqrt(polyLen / (4 * tolerance) * 3)))
	if n < 1 {
		return 1
	}
	if n > 256 {
		return 256
	}
	return n
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
