package vg

import "math"

// LineCap specifies the shape of stroke endpoints.
type LineCap uint8

const (
	// LineCapButt specifies a flat line cap (no extension).
	LineCapButt LineCap = iota

	// LineCapRound specifies a semicircular line cap.
	LineCapRound

	// LineCapSquare specifies a square line cap (extends by half width).
	LineCapSquare
)

// LineJoin specifies the shape of stroke joins.
type LineJoin uint8

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota

	// LineJoinRound specifies a rounded join.
	LineJoinRound

	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// DefaultTolerance is the curve-flattening tolerance used when a caller
// passes zero.
const DefaultTolerance = 0.1

// StrokeStyle defines how to stroke a path.
type StrokeStyle struct {
	// Width is the line width in user-space units.
	Width float64

	// Cap is the line cap style.
	Cap LineCap

	// Join is the line join style.
	Join LineJoin

	// MiterLimit bounds the length of miter joins.
	MiterLimit float64

	// Dash is the on/off dash pattern; empty means solid.
	Dash []float64

	// DashOffset is the offset into the dash pattern.
	DashOffset float64

	// IsHairline forces a stroke exactly one device pixel wide
	// regardless of the current transformation.
	IsHairline bool
}

// DefaultStrokeStyle returns a StrokeStyle with default values.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		Width:      1.0,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 10.0,
	}
}

// Clone returns a deep copy of the style.
func (s *StrokeStyle) Clone() *StrokeStyle {
	c := *s
	c.Dash = append([]float64(nil), s.Dash...)
	return &c
}

// MaxDistanceFromPath returns the maximum user-space distance stroked
// ink can lie from the path under the given transform: half the width
// stretched by the miter limit for sharp joins, or by sqrt(2) for square
// caps on the diagonal.
func (s *StrokeStyle) MaxDistanceFromPath(ctm Matrix) float64 {
	styleExpansion := 0.5
	if s.Cap == LineCapSquare {
		styleExpansion = math.Sqrt2 / 2
	}
	if s.Join == LineJoinMiter && s.MiterLimit > styleExpansion*2 {
		styleExpansion = s.MiterLimit / 2
	}
	// Expansion in device space along the most stretched axis.
	maxScale := math.Max(
		math.Hypot(ctm.A, ctm.D),
		math.Hypot(ctm.B, ctm.E),
	)
	return styleExpansion * s.Width * maxScale
}

// PenVertexCount returns the number of vertices a circular pen of this
// style's radius needs so that a flattened approximation stays within
// tolerance. A count of one or zero means the stroke draws nothing
// (degenerate stroke).
func (s *StrokeStyle) PenVertexCount(tolerance float64) int {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	radius := s.Width / 2
	if radius <= 0 {
		return 0
	}
	if tolerance >= radius*4 {
		return 1
	}
	delta := math.Acos(1 - tolerance/radius)
	n := int(math.Ceil(math.Pi / delta))
	if n < 1 {
		return 1
	}
	return n
}
