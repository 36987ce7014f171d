package vg

import (
	"image"
	"math"
)

// Extend specifies how a pattern behaves outside its natural area.
type Extend uint8

const (
	// ExtendNone renders nothing outside the pattern.
	ExtendNone Extend = iota

	// ExtendRepeat tiles the pattern.
	ExtendRepeat

	// ExtendPad extends edge pixels.
	ExtendPad
)

// Pattern represents what to paint with: a solid color, a gradient, or
// the contents of another surface.
//
// Patterns are immutable once handed to a drawing operation. A pattern
// carries its own matrix mapping user space to pattern space; composite
// backends that redirect drawing under a transform derive new patterns
// with Transformed rather than mutating the original.
type Pattern interface {
	// Err returns the pattern's construction error, if any. Drawing with
	// an errored pattern propagates this error to the surface.
	Err() error

	// Matrix returns the user-space to pattern-space transformation.
	Matrix() Matrix

	// Transformed returns a copy of the pattern whose matrix has m
	// applied after the pattern's own matrix: the copy samples the
	// pattern as if user space had first been transformed by m.
	Transformed(m Matrix) Pattern

	// IsClear reports whether the pattern is known to contribute nothing
	// when drawn with a source-bounded operator.
	IsClear() bool

	// IsOpaque reports whether every sample of the pattern is opaque.
	IsOpaque() bool

	// Extents returns the device-space rectangle the pattern can affect.
	// ok is false when the pattern is unbounded (solid colors, gradients
	// and repeating surfaces).
	Extents() (r image.Rectangle, ok bool)
}

// ColorSampler is implemented by patterns that can be sampled per point.
// Pixel backends use it for the general compositing path.
type ColorSampler interface {
	// ColorAt returns the pattern color at the given pattern-space
	// coordinates.
	ColorAt(x, y float64) RGBA
}

// SolidPattern is a single-color pattern.
type SolidPattern struct {
	C RGBA
}

// NewSolidPattern creates a solid-color pattern.
func NewSolidPattern(c RGBA) *SolidPattern {
	return &SolidPattern{C: c}
}

func (p *SolidPattern) Err() error     { return nil }
func (p *SolidPattern) Matrix() Matrix { return Identity() }

// Transformed returns the pattern itself: solid colors are invariant
// under any transformation.
func (p *SolidPattern) Transformed(Matrix) Pattern { return p }

func (p *SolidPattern) IsClear() bool  { return p.C.IsTransparent() }
func (p *SolidPattern) IsOpaque() bool { return p.C.IsOpaque() }

func (p *SolidPattern) Extents() (image.Rectangle, bool) {
	return UnboundedRect, false
}

// ColorAt implements ColorSampler.
func (p *SolidPattern) ColorAt(_, _ float64) RGBA { return p.C }

// SurfacePattern paints with the contents of another surface.
type SurfacePattern struct {
	src    SurfaceSource
	matrix Matrix
	extend Extend
}

// NewSurfacePattern creates a pattern sourcing its pixels from src.
func NewSurfacePattern(src SurfaceSource) *SurfacePattern {
	return &SurfacePattern{src: src, matrix: Identity()}
}

// Source returns the pattern's source surface.
func (p *SurfacePattern) Source() SurfaceSource { return p.src }

// SetExtend sets the out-of-bounds behavior. Must be called before the
// pattern is first used in a drawing operation.
func (p *SurfacePattern) SetExtend(e Extend) { p.extend = e }

// GetExtend returns the out-of-bounds behavior.
func (p *SurfacePattern) GetExtend() Extend { return p.extend }

// SetMatrix sets the user-space to pattern-space transformation. Must be
// called before the pattern is first used in a drawing operation.
func (p *SurfacePattern) SetMatrix(m Matrix) { p.matrix = m }

func (p *SurfacePattern) Err() error {
	if p.src == nil {
		return ErrTypeMismatch
	}
	if err := p.src.Status(); err != nil {
		return err
	}
	if p.src.IsFinished() {
		return ErrSurfaceFinished
	}
	return nil
}

func (p *SurfacePattern) Matrix() Matrix { return p.matrix }

func (p *SurfacePattern) Transformed(m Matrix) Pattern {
	q := *p
	q.matrix = p.matrix.Multiply(m)
	return &q
}

func (p *SurfacePattern) IsClear() bool  { return false }
func (p *SurfacePattern) IsOpaque() bool { return false }

func (p *SurfacePattern) Extents() (image.Rectangle, bool) {
	if p.extend != ExtendNone || p.src == nil {
		return UnboundedRect, false
	}
	src, ok := p.src.Extents()
	if !ok {
		return UnboundedRect, false
	}
	// The pattern matrix maps user space to pattern space; the area the
	// pattern can affect in user space is the source extents pulled back
	// through the inverse.
	inv, err := p.matrix.Invert()
	if err != nil {
		return UnboundedRect, false
	}
	return inv.TransformRect(src), true
}

// GradientStop is one color stop of a gradient.
type GradientStop struct {
	// Offset is the position of the stop in [0, 1].
	Offset float64

	// Color is the stop color.
	Color RGBA
}

// gradient holds the pieces shared by linear and radial gradients.
type gradient struct {
	matrix Matrix
	stops  []GradientStop
}

func (g *gradient) Err() error     { return nil }
func (g *gradient) Matrix() Matrix { return g.matrix }

func (g *gradient) IsClear() bool {
	for _, s := range g.stops {
		if !s.Color.IsTransparent() {
			return false
		}
	}
	return true
}

func (g *gradient) IsOpaque() bool {
	if len(g.stops) == 0 {
		return false
	}
	for _, s := range g.stops {
		if !s.Color.IsOpaque() {
			return false
		}
	}
	return true
}

func (g *gradient) Extents() (image.Rectangle, bool) {
	return UnboundedRect, false
}

// AddStop appends a color stop. Stops must be added in offset order.
func (g *gradient) AddStop(offset float64, c RGBA) {
	g.stops = append(g.stops, GradientStop{Offset: clamp01(offset), Color: c})
}

// colorAtOffset interpolates the stop list at t.
func (g *gradient) colorAtOffset(t float64) RGBA {
	if len(g.stops) == 0 {
		return RGBA{}
	}
	t = clamp01(t)
	if t <= g.stops[0].Offset {
		return g.stops[0].Color
	}
	last := g.stops[len(g.stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(g.stops); i++ {
		if t > g.stops[i].Offset {
			continue
		}
		a, b := g.stops[i-1], g.stops[i]
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		f := (t - a.Offset) / span
		return RGBA{
			R: a.Color.R + (b.Color.R-a.Color.R)*f,
			G: a.Color.G + (b.Color.G-a.Color.G)*f,
			B: a.Color.B + (b.Color.B-a.Color.B)*f,
			A: a.Color.A + (b.Color.A-a.Color.A)*f,
		}
	}
	return last.Color
}

// LinearGradient is a gradient along the line from P0 to P1.
type LinearGradient struct {
	gradient
	P0, P1 Point
}

// NewLinearGradient creates a linear gradient between two points.
func NewLinearGradient(x0, y0, x1, y1 float64) *LinearGradient {
	return &LinearGradient{
		gradient: gradient{matrix: Identity()},
		P0:       Point{x0, y0},
		P1:       Point{x1, y1},
	}
}

func (p *LinearGradient) Transformed(m Matrix) Pattern {
	q := *p
	q.stops = append([]GradientStop(nil), p.stops...)
	q.matrix = p.matrix.Multiply(m)
	return &q
}

// ColorAt implements ColorSampler.
func (p *LinearGradient) ColorAt(x, y float64) RGBA {
	pt := p.matrix.TransformPoint(Point{x, y})
	dx, dy := p.P1.X-p.P0.X, p.P1.Y-p.P0.Y
	den := dx*dx + dy*dy
	if den == 0 {
		return p.colorAtOffset(0)
	}
	t := ((pt.X-p.P0.X)*dx + (pt.Y-p.P0.Y)*dy) / den
	return p.colorAtOffset(t)
}

// RadialGradient is a gradient between two circles.
type RadialGradient struct {
	gradient
	C0, C1 Point
	R0, R1 float64
}

// NewRadialGradient creates a radial gradient between two circles.
func NewRadialGradient(cx0, cy0, r0, cx1, cy1, r1 float64) *RadialGradient {
	return &RadialGradient{
		gradient: gradient{matrix: Identity()},
		C0:       Point{cx0, cy0},
		C1:       Point{cx1, cy1},
		R0:       r0,
		R1:       r1,
	}
}

func (p *RadialGradient) Transformed(m Matrix) Pattern {
	q := *p
	q.stops = append([]GradientStop(nil), p.stops...)
	q.matrix = p.matrix.Multiply(m)
	return &q
}

// ColorAt implements ColorSampler. This uses the simple concentric
// approximation: offset is the normalized distance between the two
// circle radii measured from C1.
func (p *RadialGradient) ColorAt(x, y float64) RGBA {
	pt := p.matrix.TransformPoint(Point{x, y})
	d := math.Hypot(pt.X-p.C1.X, pt.Y-p.C1.Y)
	if p.R1 == p.R0 {
		return p.colorAtOffset(0)
	}
	return p.colorAtOffset((d - p.R0) / (p.R1 - p.R0))
}

// foregroundPattern is the "use current foreground color" marker used for
// COLR glyph rendering. Surfaces with a foreground source installed
// substitute it before dispatch.
type foregroundPattern struct{}

// ForegroundMarker is the marker pattern standing for "the current
// foreground color". It cannot be drawn directly: surfaces without a
// foreground source substitute opaque black.
var ForegroundMarker Pattern = foregroundPattern{}

func (foregroundPattern) Err() error                  { return nil }
func (foregroundPattern) Matrix() Matrix              { return Identity() }
func (foregroundPattern) Transformed(Matrix) Pattern  { return ForegroundMarker }
func (foregroundPattern) IsClear() bool               { return false }
func (foregroundPattern) IsOpaque() bool              { return true }
func (foregroundPattern) Extents() (image.Rectangle, bool) {
	return UnboundedRect, false
}

// IsForegroundMarker reports whether p is the foreground marker pattern.
func IsForegroundMarker(p Pattern) bool {
	_, ok := p.(foregroundPattern)
	return ok
}
