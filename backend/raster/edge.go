// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"github.com/gogpu/vg"
)

const epsilon = 1e-9

// edge is one non-horizontal line segment prepared for scanline
// conversion. Edges are normalized top-down; winding records the
// original direction.
type edge struct {
	yMin, yMax float64
	xAtYMin    float64
	dxdy       float64
	winding    int8

	// x is the intersection with the current scanline while the edge
	// sits in the active table.
	x float64
}

// edgeList collects the edges of one filled shape.
type edgeList struct {
	edges []edge
}

func (el *edgeList) reset() {
	el.edges = el.edges[:0]
}

// addLine appends the segment (x0,y0)-(x1,y1). Horizontal segments
// never cross a scanline and are dropped.
func (el *edgeList) addLine(x0, y0, x1, y1 float64) {
	var winding int8 = 1
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		winding = -1
	}
	dy := y1 - y0
	if dy < epsilon {
		return
	}
	el.edges = append(el.edges, edge{
		yMin:    y0,
		yMax:    y1,
		xAtYMin: x0,
		dxdy:    (x1 - x0) / dy,
		winding: winding,
	})
}

// addPath flattens a device-space path into edges, closing every
// subpath so fills are well defined.
func (el *edgeList) addPath(path *vg.Path, tolerance float64) {
	if tolerance <= 0 {
		tolerance = vg.DefaultTolerance
	}
	for _, poly := range path.Flatten(tolerance) {
		pts := poly.Points
		if len(pts) < 2 {
			continue
		}
		for i := 1; i < len(pts); i++ {
			el.addLine(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		}
		first, last := pts[0], pts[len(pts)-1]
		if first != last {
			el.addLine(last.X, last.Y, first.X, first.Y)
		}
	}
}

// yRange returns the scanline range covered by any edge.
func (el *edgeList) yRange() (minY, maxY float64, ok bool) {
	if len(el.edges) == 0 {
		return 0, 0, false
	}
	minY = el.edges[0].yMin
	maxY = el.edges[0].yMax
	for i := 1; i < len(el.edges); i++ {
		if el.edges[i].yMin < minY {
			minY = el.edges[i].yMin
		}
		if el.edges[i].yMax > maxY {
			maxY = el.edges[i].yMax
		}
	}
	return minY, maxY, true
}

// span is a run of covered pixels on one scanline.
type span struct {
	y      int
	x0, x1 int
}

// inside reports whether a crossing count selects the pixel under the
// given fill rule.
func inside(winding int, rule vg.FillRule) bool {
	if rule == vg.FillRuleEvenOdd {
		return winding%2 != 0
	}
	return winding != 0
}

// scan walks the shape one scanline at a time, sampling at pixel
// centers, and emits the covered spans clipped to bounds. The active
// table is rebuilt by linear filtering per line; shapes here are small
// enough that the simple form beats bookkeeping.
func (el *edgeList) scan(bounds spanBounds, rule vg.FillRule, emit func(span)) {
	minY, maxY, ok := el.yRange()
	if !ok {
		return
	}

	y0 := int(minY)
	if y0 < bounds.minY {
		y0 = bounds.minY
	}
	y1 := int(maxY + 1)
	if y1 > bounds.maxY {
		y1 = bounds.maxY
	}

	active := make([]edge, 0, 16)

	for y := y0; y < y1; y++ {
		cy := float64(y) + 0.5

		active = active[:0]
		for i := range el.edges {
			e := &el.edges[i]
			if cy < e.yMin || cy >= e.yMax {
				continue
			}
			ae := *e
			ae.x = e.xAtYMin + (cy-e.yMin)*e.dxdy
			active = append(active, ae)
		}
		if len(active) == 0 {
			continue
		}

		// Insertion sort by crossing X; the list is tiny and nearly
		// sorted between lines.
		for i := 1; i < len(active); i++ {
			for j := i; j > 0 && active[j].x < active[j-1].x; j-- {
				active[j], active[j-1] = active[j-1], active[j]
			}
		}

		winding := 0
		var startX float64
		for i := range active {
			was := inside(winding, rule)
			winding += int(active[i].winding)
			now := inside(winding, rule)

			switch {
			case !was && now:
				startX = active[i].x
			case was && !now:
				emitSpan(y, startX, active[i].x, bounds, emit)
			}
		}
	}
}

// spanBounds clips emitted spans to the device/clip rectangle.
type spanBounds struct {
	minX, minY, maxX, maxY int
}

func emitSpan(y int, fx0, fx1 float64, bounds spanBounds, emit func(span)) {
	// A pixel is covered when its center lies inside [fx0, fx1).
	x0 := int(fx0 + 0.5)
	x1 := int(fx1 + 0.5)
	if x0 < bounds.minX {
		x0 = bounds.minX
	}
	if x1 > bounds.maxX {
		x1 = bounds.maxX
	}
	if x0 >= x1 {
		return
	}
	emit(span{y: y, x0: x0, x1: x1})
}
