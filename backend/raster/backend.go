// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster is the CPU image surface backend. It stores
// premultiplied RGBA pixels in an image.RGBA, rasterizes paths with a
// scanline sweep sampled at pixel centers, and composites through a
// two-stage compositor chain: a fast path for solid sources delegating
// to a general per-pixel path that handles every operator and pattern.
//
// Importing the package registers it as the "image" surface type.
package raster

import (
	"image"
	"image/draw"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/compositor"
	"github.com/gogpu/vg/damage"
	"github.com/gogpu/vg/surface"
)

func init() {
	surface.Register(surface.BackendImage, func(content vg.Content, width, height int) (surface.Backend, error) {
		return New(content, width, height)
	})
}

// Backend rasterizes into an in-memory RGBA image.
type Backend struct {
	pixels   *image.RGBA
	content  vg.Content
	comp     *compositor.Compositor
	dmg      *damage.Damage
	finished bool
}

var (
	_ surface.Backend        = (*Backend)(nil)
	_ surface.Extenter       = (*Backend)(nil)
	_ surface.Painter        = (*Backend)(nil)
	_ surface.Masker         = (*Backend)(nil)
	_ surface.Stroker        = (*Backend)(nil)
	_ surface.Filler         = (*Backend)(nil)
	_ surface.GlyphShower    = (*Backend)(nil)
	_ surface.SourceImager   = (*Backend)(nil)
	_ surface.ImageMapper    = (*Backend)(nil)
	_ surface.SimilarCreator = (*Backend)(nil)
	_ surface.Snapshotter    = (*Backend)(nil)
	_ surface.DirtyMarker    = (*Backend)(nil)
	_ surface.Flusher        = (*Backend)(nil)
	_ vg.SurfaceSource       = (*Backend)(nil)
	_ compositor.Damager     = (*Backend)(nil)
)

// New creates a raster backend of the given size. Pixels start fully
// transparent.
func New(content vg.Content, width, height int) (*Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, vg.ErrInvalidSize
	}
	b := &Backend{
		pixels:  image.NewRGBA(image.Rect(0, 0, width, height)),
		content: content,
		dmg:     damage.New(),
	}
	b.comp = newCompositor(b)
	return b, nil
}

// NewForImage wraps an existing image. The backend draws into img
// directly; the caller keeps ownership.
func NewForImage(img *image.RGBA, content vg.Content) *Backend {
	b := &Backend{
		pixels:  img,
		content: content,
		dmg:     damage.New(),
	}
	b.comp = newCompositor(b)
	return b
}

func (b *Backend) Content() vg.Content { return b.content }

func (b *Backend) Finish() error {
	b.finished = true
	if b.dmg != nil {
		b.dmg.Destroy()
		b.dmg = nil
	}
	return nil
}

// Status implements vg.SurfaceSource. The backend has no failure modes
// of its own; errors stick at the surface layer.
func (b *Backend) Status() error { return nil }

func (b *Backend) IsFinished() bool { return b.finished }

func (b *Backend) Extents() (image.Rectangle, bool) {
	return b.pixels.Bounds(), true
}

// Damage returns the accumulator of areas modified since it was last
// replaced. Nil after Finish.
func (b *Backend) Damage() *damage.Damage { return b.dmg }

func (b *Backend) SetDamage(d *damage.Damage) { b.dmg = d }

// Image returns the backing store. The caller must not draw through the
// backend while holding onto writes made directly to the image.
func (b *Backend) Image() *image.RGBA { return b.pixels }

func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	return b.comp.Paint(b, op, source, clip)
}

func (b *Backend) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	return b.comp.Mask(b, op, source, mask, clip)
}

func (b *Backend) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	return b.comp.Stroke(b, op, source, path, style, ctm, ctmInverse, tolerance, clip)
}

func (b *Backend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	return b.comp.Fill(b, op, source, path, rule, tolerance, clip)
}

func (b *Backend) ShowGlyphs(op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) error {
	return b.comp.Glyphs(b, op, source, font, glyphs, clip)
}

func (b *Backend) AcquireSourceImage() (*image.RGBA, func(), error) {
	if b.finished {
		return nil, nil, vg.ErrSurfaceFinished
	}
	return b.pixels, func() {}, nil
}

// MapToImage exposes the pixels of r for direct modification. The
// returned image aliases the backing store; UnmapImage records the
// modified area as damage.
func (b *Backend) MapToImage(r image.Rectangle) (*image.RGBA, error) {
	if b.finished {
		return nil, vg.ErrSurfaceFinished
	}
	if r.Empty() {
		r = b.pixels.Bounds()
	}
	r = r.Intersect(b.pixels.Bounds())
	return b.pixels.SubImage(r).(*image.RGBA), nil
}

func (b *Backend) UnmapImage(img *image.RGBA) error {
	if img == nil {
		return nil
	}
	return b.MarkDirty(img.Bounds())
}

func (b *Backend) MarkDirty(r image.Rectangle) error {
	if b.dmg != nil && b.dmg.Err() == nil {
		b.dmg = b.dmg.AddRectangle(r.Intersect(b.pixels.Bounds()))
	}
	return nil
}

func (b *Backend) CreateSimilar(content vg.Content, width, height int) (surface.Backend, error) {
	return New(content, width, height)
}

// Snapshot returns an independent copy of the current pixels.
func (b *Backend) Snapshot() (surface.Backend, error) {
	bounds := b.pixels.Bounds()
	dup := image.NewRGBA(bounds)
	draw.Draw(dup, bounds, b.pixels, bounds.Min, draw.Src)
	snap := NewForImage(dup, b.content)
	return snap, nil
}

// Flush is a no-op: every drawing operation writes pixels directly.
func (b *Backend) Flush() error { return nil }
