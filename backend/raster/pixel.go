package raster

import (
	"image/color"

	"github.com/gogpu/vg"
)

// mul255 multiplies an 8-bit channel by an 8-bit factor with rounding.
func mul255(c, f uint32) uint32 {
	t := c*f + 128
	return (t + t>>8) >> 8
}

// compose applies a Porter-Duff operator to one premultiplied pixel.
// The source is already premultiplied; image.RGBA stores premultiplied
// components, so destination pixels can be combined directly.
func compose(op vg.Op, src, dst color.RGBA) color.RGBA {
	sa := uint32(src.A)
	da := uint32(dst.A)

	// Per-operator source and destination factors, scaled to 0..255.
	var fa, fb uint32
	switch op {
	case vg.OpClear:
		fa, fb = 0, 0
	case vg.OpSource:
		fa, fb = 255, 0
	case vg.OpOver:
		fa, fb = 255, 255-sa
	case vg.OpIn:
		fa, fb = da, 0
	case vg.OpOut:
		fa, fb = 255-da, 0
	case vg.OpAtop:
		fa, fb = da, 255-sa
	case vg.OpDest:
		fa, fb = 0, 255
	case vg.OpDestOver:
		fa, fb = 255-da, 255
	case vg.OpDestIn:
		fa, fb = 0, sa
	case vg.OpDestOut:
		fa, fb = 0, 255-sa
	case vg.OpDestAtop:
		fa, fb = 255-da, sa
	case vg.OpXor:
		fa, fb = 255-da, 255-sa
	case vg.OpAdd:
		fa, fb = 255, 255
	case vg.OpSaturate:
		// Add as much of the source as the destination can hold.
		if sa > 0 {
			room := (255 - da) * 255 / sa
			if room > 255 {
				room = 255
			}
			fa = room
		}
		fb = 255
	default:
		fa, fb = 255, 255-sa
	}

	clamp := func(v uint32) uint8 {
		if v > 255 {
			return 255
		}
		return uint8(v)
	}

	return color.RGBA{
		R: clamp(mul255(uint32(src.R), fa) + mul255(uint32(dst.R), fb)),
		G: clamp(mul255(uint32(src.G), fa) + mul255(uint32(dst.G), fb)),
		B: clamp(mul255(uint32(src.B), fa) + mul255(uint32(dst.B), fb)),
		A: clamp(mul255(sa, fa) + mul255(da, fb)),
	}
}
