// Package region implements pixel regions: sets of device pixels stored
// as y-banded, x-sorted, non-overlapping rectangles.
//
// A Region is the reduction target for damage accumulation: arbitrary
// overlapping dirty boxes are folded into a canonical set of disjoint
// rectangles whose union is exactly the union of the inputs.
package region

import (
	"image"
	"sort"
)

// Region is a set of device pixels.
//
// The zero value is an empty region. Regions are built with FromRects or
// by Union/IntersectRect on existing regions; once built they are
// treated as immutable.
type Region struct {
	// rects is banded: sorted by Min.Y, then Min.X; within one y-band
	// all rectangles share Min.Y and Max.Y and do not touch or overlap
	// in x. Bands with identical x-structure are coalesced vertically.
	rects []image.Rectangle
}

// FromRect creates a region covering a single rectangle.
func FromRect(r image.Rectangle) *Region {
	if r.Empty() {
		return &Region{}
	}
	return &Region{rects: []image.Rectangle{r}}
}

// FromRects creates a region covering the union of the given rectangles.
// The inputs may overlap and may appear in any order.
func FromRects(rects []image.Rectangle) *Region {
	return &Region{rects: band(rects)}
}

// IsEmpty reports whether the region contains no pixels.
func (r *Region) IsEmpty() bool {
	return r == nil || len(r.rects) == 0
}

// NumRects returns the number of banded rectangles.
func (r *Region) NumRects() int {
	if r == nil {
		return 0
	}
	return len(r.rects)
}

// Rect returns the i-th banded rectangle.
func (r *Region) Rect(i int) image.Rectangle {
	return r.rects[i]
}

// Rects returns the banded rectangles. The caller must not modify them.
func (r *Region) Rects() []image.Rectangle {
	if r == nil {
		return nil
	}
	return r.rects
}

// Extents returns the bounding rectangle of the region.
func (r *Region) Extents() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	e := r.rects[0]
	for _, b := range r.rects[1:] {
		e = e.Union(b)
	}
	return e
}

// ContainsPoint reports whether the pixel at (x, y) is in the region.
func (r *Region) ContainsPoint(x, y int) bool {
	if r == nil {
		return false
	}
	p := image.Pt(x, y)
	for _, b := range r.rects {
		if p.In(b) {
			return true
		}
	}
	return false
}

// ContainsRect reports whether the region completely covers rect.
func (r *Region) ContainsRect(rect image.Rectangle) bool {
	if rect.Empty() {
		return true
	}
	if r.IsEmpty() {
		return false
	}
	// Area comparison against the banded (disjoint) intersection.
	want := rect.Dx() * rect.Dy()
	got := 0
	for _, b := range r.rects {
		i := b.Intersect(rect)
		got += i.Dx() * i.Dy()
	}
	return got == want
}

// Area returns the number of pixels in the region.
func (r *Region) Area() int {
	if r == nil {
		return 0
	}
	a := 0
	for _, b := range r.rects {
		a += b.Dx() * b.Dy()
	}
	return a
}

// Union returns a new region covering both regions.
func (r *Region) Union(other *Region) *Region {
	all := make([]image.Rectangle, 0, r.NumRects()+other.NumRects())
	all = append(all, r.Rects()...)
	all = append(all, other.Rects()...)
	return FromRects(all)
}

// UnionRects returns a new region additionally covering rects.
func (r *Region) UnionRects(rects []image.Rectangle) *Region {
	all := make([]image.Rectangle, 0, r.NumRects()+len(rects))
	all = append(all, r.Rects()...)
	all = append(all, rects...)
	return FromRects(all)
}

// IntersectRect returns the region restricted to rect.
func (r *Region) IntersectRect(rect image.Rectangle) *Region {
	if r.IsEmpty() || rect.Empty() {
		return &Region{}
	}
	var out []image.Rectangle
	for _, b := range r.rects {
		if i := b.Intersect(rect); !i.Empty() {
			out = append(out, i)
		}
	}
	// Banded input intersected with one rectangle stays banded but may
	// leave coalescable neighbor bands.
	return &Region{rects: band(out)}
}

// band folds arbitrary rectangles into the canonical banded form.
//
// The sweep runs over the distinct y-edges of the input. For each band
// it merges the x-intervals of every rectangle spanning that band, then
// coalesces vertically adjacent bands with identical x-structure.
func band(rects []image.Rectangle) []image.Rectangle {
	in := rects[:0:0]
	for _, r := range rects {
		if !r.Empty() {
			in = append(in, r)
		}
	}
	if len(in) == 0 {
		return nil
	}
	if len(in) == 1 {
		return []image.Rectangle{in[0]}
	}

	ys := make([]int, 0, 2*len(in))
	for _, r := range in {
		ys = append(ys, r.Min.Y, r.Max.Y)
	}
	sort.Ints(ys)
	ys = dedupInts(ys)

	type span struct{ x0, x1 int }
	var out []image.Rectangle
	prevStart := -1 // index into out of the previous band's first rect

	for yi := 0; yi+1 < len(ys); yi++ {
		y0, y1 := ys[yi], ys[yi+1]

		var spans []span
		for _, r := range in {
			if r.Min.Y <= y0 && r.Max.Y >= y1 {
				spans = append(spans, span{r.Min.X, r.Max.X})
			}
		}
		if len(spans) == 0 {
			prevStart = -1
			continue
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })

		// Merge overlapping or touching x-intervals.
		merged := spans[:1]
		for _, s := range spans[1:] {
			last := &merged[len(merged)-1]
			if s.x0 <= last.x1 {
				if s.x1 > last.x1 {
					last.x1 = s.x1
				}
			} else {
				merged = append(merged, s)
			}
		}

		bandStart := len(out)
		for _, s := range merged {
			out = append(out, image.Rect(s.x0, y0, s.x1, y1))
		}

		// Coalesce with the previous band when it is vertically
		// adjacent and has the same x-structure.
		if prevStart >= 0 && out[prevStart].Max.Y == y0 &&
			len(out)-bandStart == bandStart-prevStart {
			same := true
			for i := 0; i < len(out)-bandStart; i++ {
				a, b := out[prevStart+i], out[bandStart+i]
				if a.Min.X != b.Min.X || a.Max.X != b.Max.X {
					same = false
					break
				}
			}
			if same {
				for i := prevStart; i < bandStart; i++ {
					out[i].Max.Y = y1
				}
				out = out[:bandStart]
				continue
			}
		}
		prevStart = bandStart
	}
	return out
}

func dedupInts(xs []int) []int {
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
