package vg

import "image/color"

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1]. Components are not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Premultiplied returns the color as premultiplied 8-bit RGBA, the form
// pixel backends composite with.
func (c RGBA) Premultiplied() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp255(c.R * a * 255)),
		G: uint8(clamp255(c.G * a * 255)),
		B: uint8(clamp255(c.B * a * 255)),
		A: uint8(clamp255(a * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBA{}
	}
	// color.Color returns premultiplied components.
	return RGBA{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: float64(a) / 65535,
	}
}

// IsOpaque reports whether the color is fully opaque.
func (c RGBA) IsOpaque() bool { return c.A >= 1 }

// IsTransparent reports whether the color contributes nothing when drawn
// with a source-bounded operator.
func (c RGBA) IsTransparent() bool { return c.A <= 0 }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
