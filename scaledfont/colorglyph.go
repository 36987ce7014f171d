package scaledfont

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg" // decode embedded bitmap glyphs
	_ "image/png"

	"github.com/go-text/typesetting/font"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // sbix strikes may carry TIFF data

	"github.com/gogpu/vg"
)

// ColorGlyph resolves one glyph to a standalone color image. Glyphs
// backed by an outline (no color data) return vg.ErrUnsupported and
// pass through the ordinary rendering path, as do SVG glyphs, which
// this package does not rasterize.
func (sf *ScaledFont) ColorGlyph(index uint32) (*vg.ColorGlyph, error) {
	data := sf.face().GlyphData(font.GID(index))

	bitmap, ok := data.(font.GlyphBitmap)
	if !ok {
		return nil, vg.ErrUnsupported
	}

	switch bitmap.Format {
	case font.PNG, font.JPG, font.TIFF:
	default:
		// Monochrome strikes carry no color; let the outline path
		// (if any) render the glyph.
		return nil, vg.ErrUnsupported
	}

	src, _, err := image.Decode(bytes.NewReader(bitmap.Data))
	if err != nil {
		return nil, fmt.Errorf("scaledfont: decode glyph %d bitmap: %w", index, err)
	}

	return sf.scaleBitmap(src, index)
}

// scaleBitmap resamples a decoded strike to the scaled font's device
// size and computes the image origin relative to the glyph origin.
func (sf *ScaledFont) scaleBitmap(src image.Image, index uint32) (*vg.ColorGlyph, error) {
	sx, sy := sf.emSize()

	// Place the image using the glyph's ink box when the font reports
	// one; otherwise assume the strike covers the em square sitting on
	// the baseline.
	var ox, oy, w, h float64
	if ext, ok := sf.face().GlyphExtents(font.GID(index)); ok && ext.Width != 0 && ext.Height != 0 {
		origin := sf.fontPoint(float64(ext.XBearing), float64(ext.YBearing))
		ox = origin.X
		oy = origin.Y
		w = float64(ext.Width) / sf.src.upem * sx
		h = -float64(ext.Height) / sf.src.upem * sy
	} else {
		ox = 0
		oy = -sy
		w = sx
		h = sy
	}

	dw := int(math.Ceil(w))
	dh := int(math.Ceil(h))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return &vg.ColorGlyph{
		Image:   dst,
		OriginX: ox,
		OriginY: oy,
	}, nil
}
