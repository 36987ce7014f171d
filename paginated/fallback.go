package paginated

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/recording"
	"github.com/gogpu/vg/surface"
)

// rasterize replays the recording into a fresh image surface covering
// the device-space rectangle r, scaled by (sx, sy).
func (b *Backend) rasterize(r image.Rectangle, sx, sy float64) (*surface.Surface, error) {
	w := int(math.Ceil(float64(r.Dx()) * sx))
	h := int(math.Ceil(float64(r.Dy()) * sy))
	if w < 1 || h < 1 {
		return nil, vg.ErrNothingToDo
	}

	img := surface.New(surface.BackendImage, vg.ContentColorAlpha, w, h)
	if err := img.Status(); err != nil {
		return nil, fmt.Errorf("paginated: create fallback image: %w", err)
	}

	wrapper := surface.NewWrapper(img)
	transform := vg.Scale(sx, sy).Multiply(vg.Translate(float64(-r.Min.X), float64(-r.Min.Y)))
	if err := wrapper.SetTransform(transform); err != nil {
		return nil, err
	}

	if err := b.rec.Replay(wrapper); err != nil {
		return nil, err
	}
	if err := img.Flush(); err != nil {
		return nil, err
	}
	return img, nil
}

// paintImage paints a rasterized surface onto the target over the
// device rectangle r it was rendered from.
func (b *Backend) paintImage(img *surface.Surface, r image.Rectangle, sx, sy float64) error {
	pattern := vg.NewSurfacePattern(img)
	pattern.SetMatrix(vg.Scale(sx, sy).Multiply(vg.Translate(float64(-r.Min.X), float64(-r.Min.Y))))
	return b.target.Paint(vg.OpOver, pattern, vg.NewClip(r))
}

// fallbackScale returns the raster density relative to page-device
// units.
func (b *Backend) fallbackScale() (sx, sy float64) {
	return b.xResolution / unitsPerInch, b.yResolution / unitsPerInch
}

// renderPageFallback rasterizes the entire page at the fallback
// resolution and paints it as one image.
func (b *Backend) renderPageFallback() error {
	page := b.pageBox()
	if page.Empty() {
		return nil
	}

	sx, sy := b.fallbackScale()
	img, err := b.rasterize(page, sx, sy)
	if err != nil {
		if errors.Is(err, vg.ErrNothingToDo) {
			return nil
		}
		return err
	}
	return b.paintImage(img, page, sx, sy)
}

// renderWithRegionFallback replays natively supported commands
// directly and paints a rasterized sub-image over each unsupported
// rectangle. Native content is drawn first so the fallback images land
// on top, matching the recorded paint order inside their rectangles.
func (b *Backend) renderWithRegionFallback(native []bool, fallbackRects []image.Rectangle) error {
	for i, cmd := range b.rec.Commands() {
		if !native[i] {
			continue
		}
		if err := recording.ReplayCommand(cmd, b.target); err != nil {
			return err
		}
	}

	sx, sy := b.fallbackScale()
	for _, r := range fallbackRects {
		img, err := b.rasterize(r, sx, sy)
		if err != nil {
			if errors.Is(err, vg.ErrNothingToDo) {
				continue
			}
			return err
		}
		if err := b.paintImage(img, r, sx, sy); err != nil {
			return err
		}
	}
	return nil
}

// attachThumbnail renders a reduced copy of the page for targets that
// request one.
func (b *Backend) attachThumbnail() error {
	tn, ok := b.target.Backend().(Thumbnailer)
	if !ok {
		return nil
	}
	w, h, want := tn.ThumbnailSize()
	if !want || w < 1 || h < 1 {
		return nil
	}

	page := b.pageBox()
	if page.Empty() {
		return nil
	}

	img, err := b.rasterize(page, float64(w)/float64(page.Dx()), float64(h)/float64(page.Dy()))
	if err != nil {
		if errors.Is(err, vg.ErrNothingToDo) {
			return nil
		}
		return err
	}

	pixels, release, err := img.AcquireSourceImage()
	if err != nil {
		return err
	}
	defer release()

	// The rasterized page approximates the requested size; resample to
	// hit it exactly.
	thumb := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), pixels, pixels.Bounds(), draw.Src, nil)
	return tn.SetThumbnail(thumb)
}
