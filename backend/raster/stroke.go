package raster

import (
	"math"

	"github.com/gogpu/vg"
)

// discSegments is the vertex count used when approximating the round
// pen. Matches the coarse tolerance of the scanline rasterizer.
const discSegments = 16

// strokeOutline converts a stroked device-space path into a fillable
// outline. Each flattened segment becomes a quad of the pen width;
// joins and round caps become discs. Filling the result with the
// nonzero rule yields the union of the pieces, so overlap between
// consecutive segments does not double-count.
func strokeOutline(path *vg.Path, style *vg.StrokeStyle, ctm vg.Matrix, tolerance float64) *vg.Path {
	hw := deviceHalfWidth(style.Width, ctm)
	out := vg.NewPath()
	if hw <= 0 {
		return out
	}

	for _, poly := range path.Flatten(tolerance) {
		for _, run := range dashRuns(poly, style) {
			strokeRun(out, run, hw, style)
		}
	}
	return out
}

// deviceHalfWidth maps the user-space line width to device space using
// the average scale factor of the CTM.
func deviceHalfWidth(width float64, ctm vg.Matrix) float64 {
	det := math.Abs(ctm.A*ctm.E - ctm.B*ctm.D)
	return width / 2 * math.Sqrt(det)
}

// run is one connected piece of a stroke after dashing.
type run struct {
	points []vg.Point
	closed bool
}

// dashRuns splits a polyline into the on intervals of the dash
// pattern. An empty pattern returns the polyline unchanged.
func dashRuns(poly vg.Polyline, style *vg.StrokeStyle) []run {
	if len(poly.Points) < 2 {
		return nil
	}
	if len(style.Dash) == 0 {
		return []run{{points: poly.Points, closed: poly.Closed}}
	}

	period := 0.0
	for _, d := range style.Dash {
		period += d
	}
	if period <= 0 {
		return []run{{points: poly.Points, closed: poly.Closed}}
	}

	// Position within the repeated pattern.
	phase := math.Mod(style.DashOffset, period)
	if phase < 0 {
		phase += period
	}
	idx := 0
	for phase >= style.Dash[idx] {
		phase -= style.Dash[idx]
		idx = (idx + 1) % len(style.Dash)
	}
	on := idx%2 == 0
	remain := style.Dash[idx] - phase

	var (
		runs []run
		cur  []vg.Point
	)
	flush := func() {
		if len(cur) > 1 {
			runs = append(runs, run{points: cur})
		}
		cur = nil
	}

	pts := poly.Points
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		if segLen == 0 {
			continue
		}
		pos := 0.0
		if on && len(cur) == 0 {
			cur = append(cur, a)
		}
		for segLen-pos > remain {
			pos += remain
			t := pos / segLen
			p := vg.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if on {
				cur = append(cur, p)
				flush()
			} else {
				cur = append(cur, p)
			}
			on = !on
			idx = (idx + 1) % len(style.Dash)
			remain = style.Dash[idx]
		}
		remain -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	flush()
	return runs
}

// strokeRun appends the filled shape of one stroke run: a quad per
// segment, discs at the joints, and caps at open ends.
func strokeRun(out *vg.Path, r run, hw float64, style *vg.StrokeStyle) {
	pts := r.points
	if len(pts) < 2 {
		return
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		ux, uy := dx/l, dy/l

		if style.Cap == vg.LineCapSquare && !r.closed {
			if i == 1 {
				a = vg.Point{X: a.X - ux*hw, Y: a.Y - uy*hw}
			}
			if i == len(pts)-1 {
				b = vg.Point{X: b.X + ux*hw, Y: b.Y + uy*hw}
			}
		}

		// Normal of length hw.
		nx, ny := -uy*hw, ux*hw
		out.MoveTo(a.X+nx, a.Y+ny)
		out.LineTo(b.X+nx, b.Y+ny)
		out.LineTo(b.X-nx, b.Y-ny)
		out.LineTo(a.X-nx, a.Y-ny)
		out.Close()
	}

	// Discs cover the joints regardless of join style. Miter and bevel
	// corners render rounded at pen scale, which stays within the
	// extents bound MaxDistanceFromPath computes.
	for i := 1; i < len(pts)-1; i++ {
		appendDisc(out, pts[i], hw)
	}
	if r.closed && len(pts) > 2 {
		appendDisc(out, pts[0], hw)
	}
	if !r.closed && style.Cap == vg.LineCapRound {
		appendDisc(out, pts[0], hw)
		appendDisc(out, pts[len(pts)-1], hw)
	}
}

// appendDisc adds a filled regular polygon approximating a disc. The
// winding is counterclockwise to match the segment quads, keeping the
// nonzero fill a plain union.
func appendDisc(out *vg.Path, c vg.Point, radius float64) {
	for i := 0; i < discSegments; i++ {
		angle := 2 * math.Pi * float64(i) / discSegments
		x := c.X + radius*math.Cos(angle)
		y := c.Y + radius*math.Sin(angle)
		if i == 0 {
			out.MoveTo(x, y)
		} else {
			out.LineTo(x, y)
		}
	}
	out.Close()
}
