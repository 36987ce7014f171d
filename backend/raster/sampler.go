package raster

import (
	"image"
	"image/color"

	"github.com/gogpu/vg"
)

// sampler returns the premultiplied source color at a device-space
// point.
type sampler func(x, y float64) color.RGBA

var transparent = color.RGBA{}

// sourceImager is satisfied by surface sources whose pixels can be read
// directly, including *surface.Surface and this package's Backend.
type sourceImager interface {
	AcquireSourceImage() (*image.RGBA, func(), error)
}

// newSampler builds a per-point sampler for the pattern. The release
// func must be called when sampling is done; it returns any pixel view
// acquired from a surface pattern's source.
func newSampler(p vg.Pattern) (sampler, func(), error) {
	release := func() {}

	if sp, ok := p.(*vg.SurfacePattern); ok {
		src, ok := sp.Source().(sourceImager)
		if !ok {
			return nil, nil, vg.ErrUnsupported
		}
		img, rel, err := src.AcquireSourceImage()
		if err != nil {
			return nil, nil, err
		}
		m := sp.Matrix()
		extend := sp.GetExtend()
		s := func(x, y float64) color.RGBA {
			p := m.TransformPoint(vg.Point{X: x, Y: y})
			return sampleImage(img, p.X, p.Y, extend)
		}
		return s, rel, nil
	}

	if cs, ok := p.(vg.ColorSampler); ok {
		s := func(x, y float64) color.RGBA {
			return cs.ColorAt(x, y).Premultiplied()
		}
		return s, release, nil
	}

	return nil, nil, vg.ErrUnsupported
}

// sampleImage reads the pixel containing the pattern-space point,
// applying the extend mode outside the image bounds.
func sampleImage(img *image.RGBA, x, y float64, extend vg.Extend) color.RGBA {
	b := img.Bounds()
	if b.Empty() {
		return transparent
	}
	ix := floorInt(x)
	iy := floorInt(y)

	switch extend {
	case vg.ExtendRepeat:
		ix = b.Min.X + mod(ix-b.Min.X, b.Dx())
		iy = b.Min.Y + mod(iy-b.Min.Y, b.Dy())
	case vg.ExtendPad:
		ix = clampInt(ix, b.Min.X, b.Max.X-1)
		iy = clampInt(iy, b.Min.Y, b.Max.Y-1)
	default:
		if ix < b.Min.X || ix >= b.Max.X || iy < b.Min.Y || iy >= b.Max.Y {
			return transparent
		}
	}
	return img.RGBAAt(ix, iy)
}

func floorInt(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
