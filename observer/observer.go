// Package observer implements a pass-through surface that measures the
// drawing operations flowing to a target: per-operation counts and wall
// time, for profiling an application's rendering.
//
// Timing brackets each forwarded operation with an explicit Flush of
// the target, so device-side work a backend queues asynchronously is
// charged to the operation that queued it.
package observer

import (
	"image"
	"time"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/surface"
)

// OpKind names an observed operation class.
type OpKind int

const (
	KindPaint OpKind = iota
	KindMask
	KindStroke
	KindFill
	KindGlyphs
	numKinds
)

var kindNames = [...]string{
	KindPaint:  "paint",
	KindMask:   "mask",
	KindStroke: "stroke",
	KindFill:   "fill",
	KindGlyphs: "glyphs",
}

func (k OpKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// OpStats accumulates measurements for one operation class.
type OpStats struct {
	// Count is the number of forwarded operations.
	Count uint64
	// Errors is the number of forwarded operations that failed.
	Errors uint64
	// Elapsed is the total wall time spent, including the target flush
	// after each operation.
	Elapsed time.Duration
	// Slowest is the longest single operation observed.
	Slowest time.Duration
}

// Stats is a snapshot of all observed operation classes.
type Stats struct {
	Paint  OpStats
	Mask   OpStats
	Stroke OpStats
	Fill   OpStats
	Glyphs OpStats
}

// Total returns the combined count and elapsed time of all classes.
func (s Stats) Total() (uint64, time.Duration) {
	var n uint64
	var d time.Duration
	for _, op := range []OpStats{s.Paint, s.Mask, s.Stroke, s.Fill, s.Glyphs} {
		n += op.Count
		d += op.Elapsed
	}
	return n, d
}

// Callback is invoked after every observed operation.
type Callback func(kind OpKind, elapsed time.Duration, err error)

// Backend is the observing surface backend.
type Backend struct {
	target    *surface.Surface
	stats     [numKinds]OpStats
	callbacks []Callback
}

// New creates an observer surface forwarding to target.
func New(target *surface.Surface) *surface.Surface {
	return surface.NewFromBackend(NewBackend(target))
}

// NewBackend creates the observing backend for target.
func NewBackend(target *surface.Surface) *Backend {
	return &Backend{target: target}
}

// FromSurface returns the observer backend of s, or nil if s is not an
// observer surface.
func FromSurface(s *surface.Surface) *Backend {
	b, _ := s.Backend().(*Backend)
	return b
}

// Target returns the observed surface.
func (b *Backend) Target() *surface.Surface { return b.target }

// AddCallback registers a callback invoked after every observed
// operation.
func (b *Backend) AddCallback(cb Callback) {
	b.callbacks = append(b.callbacks, cb)
}

// Stats returns a snapshot of the accumulated measurements.
func (b *Backend) Stats() Stats {
	return Stats{
		Paint:  b.stats[KindPaint],
		Mask:   b.stats[KindMask],
		Stroke: b.stats[KindStroke],
		Fill:   b.stats[KindFill],
		Glyphs: b.stats[KindGlyphs],
	}
}

// Reset zeroes the accumulated measurements.
func (b *Backend) Reset() {
	b.stats = [numKinds]OpStats{}
}

// observe times fn, flushing the target inside the measured window.
func (b *Backend) observe(kind OpKind, fn func() error) error {
	start := time.Now()
	err := fn()
	if err == nil {
		err = b.target.Flush()
	}
	elapsed := time.Since(start)

	st := &b.stats[kind]
	st.Count++
	st.Elapsed += elapsed
	if elapsed > st.Slowest {
		st.Slowest = elapsed
	}
	if err != nil {
		st.Errors++
	}
	for _, cb := range b.callbacks {
		cb(kind, elapsed, err)
	}
	return err
}

func (b *Backend) Content() vg.Content { return b.target.Content() }

func (b *Backend) Extents() (image.Rectangle, bool) { return b.target.Extents() }

func (b *Backend) Finish() error {
	n, d := b.Stats().Total()
	vg.Logger().Debug("observer finished", "ops", n, "elapsed", d)
	return nil
}

func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	return b.observe(KindPaint, func() error {
		return b.target.Paint(op, source, clip)
	})
}

func (b *Backend) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	return b.observe(KindMask, func() error {
		return b.target.Mask(op, source, mask, clip)
	})
}

func (b *Backend) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	return b.observe(KindStroke, func() error {
		return b.target.Stroke(op, source, path, style, ctm, ctmInverse, tolerance, clip)
	})
}

func (b *Backend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	return b.observe(KindFill, func() error {
		return b.target.Fill(op, source, path, rule, tolerance, clip)
	})
}

func (b *Backend) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	return b.observe(KindGlyphs, func() error {
		return b.target.ShowTextGlyphs(op, source, text, font, glyphs, clusters, flags, clip)
	})
}

func (b *Backend) Flush() error { return b.target.Flush() }

var (
	_ surface.Backend         = (*Backend)(nil)
	_ surface.Extenter        = (*Backend)(nil)
	_ surface.Painter         = (*Backend)(nil)
	_ surface.Masker          = (*Backend)(nil)
	_ surface.Stroker         = (*Backend)(nil)
	_ surface.Filler          = (*Backend)(nil)
	_ surface.TextGlyphShower = (*Backend)(nil)
	_ surface.Flusher         = (*Backend)(nil)
)
