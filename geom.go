package vg

import (
	"image"
	"math"
)

// Point is a location in user or device space.
type Point struct {
	X, Y float64
}

// Content describes the channels a surface carries.
type Content uint8

const (
	// ContentColorAlpha is a surface with both color and alpha channels.
	ContentColorAlpha Content = iota

	// ContentColor is a surface with color channels only (opaque).
	ContentColor

	// ContentAlpha is an alpha-only surface (masks).
	ContentAlpha
)

// HasColor reports whether the content carries color channels.
func (c Content) HasColor() bool { return c != ContentAlpha }

// HasAlpha reports whether the content carries an alpha channel.
func (c Content) HasAlpha() bool { return c != ContentColor }

// String returns the content name.
func (c Content) String() string {
	switch c {
	case ContentColorAlpha:
		return "color-alpha"
	case ContentColor:
		return "color"
	case ContentAlpha:
		return "alpha"
	}
	return "unknown"
}

// FillRule specifies how to determine which areas are inside a path.
type FillRule uint8

const (
	// FillRuleNonZero uses the non-zero winding rule.
	// A point is inside if the winding number is non-zero.
	FillRuleNonZero FillRule = iota

	// FillRuleEvenOdd uses the even-odd rule.
	// A point is inside if the winding number is odd.
	FillRuleEvenOdd
)

// unboundedCoord bounds "infinite" surfaces and clips. Device coordinates
// are kept well inside int32 so rectangle arithmetic cannot overflow.
const unboundedCoord = 1 << 23

// UnboundedRect is the device rectangle used for surfaces and clips with
// no extents of their own.
var UnboundedRect = image.Rect(-unboundedCoord, -unboundedCoord, unboundedCoord, unboundedCoord)

// RectFromExtents converts a floating-point extent box to the smallest
// device rectangle containing it (floor the minimum, ceil the maximum).
func RectFromExtents(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
}

// SurfaceSource is the view of a drawing target that patterns and extent
// computation need. *surface.Surface implements it; so does anything else
// that can stand in as the source of a surface pattern.
type SurfaceSource interface {
	// Status returns the sticky error state of the source.
	Status() error

	// IsFinished reports whether the source has been finished and can no
	// longer supply pixels.
	IsFinished() bool

	// Extents returns the device-space rectangle covered by the source.
	// ok is false when the source is unbounded.
	Extents() (r image.Rectangle, ok bool)
}
