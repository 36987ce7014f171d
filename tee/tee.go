// Package tee implements a surface that fans every drawing operation
// out to several targets: one master and any number of slaves, each
// reached through its own wrapper so targets may sit under different
// transforms.
//
// Mutations run on the slaves first in registration order, then the
// master, and abort on the first failure without touching the remaining
// targets. Read operations prefer whichever target has the most useful
// native form: an image-backed target for pixel access, a recording
// target for snapshots.
package tee

import (
	"image"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/recording"
	"github.com/gogpu/vg/surface"
)

type target struct {
	surf    *surface.Surface
	wrapper *surface.Wrapper
}

// Backend is the fan-out surface backend.
type Backend struct {
	master target
	slaves []target
}

// New creates a tee surface replicating to master.
func New(master *surface.Surface) *surface.Surface {
	return surface.NewFromBackend(NewBackend(master))
}

// NewBackend creates the fan-out backend for master.
func NewBackend(master *surface.Surface) *Backend {
	return &Backend{master: target{surf: master, wrapper: surface.NewWrapper(master)}}
}

// FromSurface returns the tee backend of s, or nil if s is not a tee
// surface.
func FromSurface(s *surface.Surface) *Backend {
	b, _ := s.Backend().(*Backend)
	return b
}

// Add registers an additional replication target.
func (b *Backend) Add(slave *surface.Surface) {
	b.slaves = append(b.slaves, target{surf: slave, wrapper: surface.NewWrapper(slave)})
}

// Remove unregisters a slave. Removing a surface that is not a slave is
// a no-op.
func (b *Backend) Remove(slave *surface.Surface) {
	for i, t := range b.slaves {
		if t.surf == slave {
			b.slaves = append(b.slaves[:i], b.slaves[i+1:]...)
			return
		}
	}
}

// Master returns the master target surface.
func (b *Backend) Master() *surface.Surface { return b.master.surf }

// Index returns the surface at index i: 0 is the master, 1..n are the
// slaves in registration order.
func (b *Backend) Index(i int) *surface.Surface {
	if i == 0 {
		return b.master.surf
	}
	return b.slaves[i-1].surf
}

func (b *Backend) Content() vg.Content { return b.master.surf.Content() }

func (b *Backend) Extents() (image.Rectangle, bool) { return b.master.surf.Extents() }

func (b *Backend) Finish() error {
	// Targets are owned by the caller and stay usable after the tee is
	// gone.
	return nil
}

// forEach runs fn on the slaves in order, then the master, stopping at
// the first failure.
func (b *Backend) forEach(fn func(t target) error) error {
	for _, t := range b.slaves {
		if err := fn(t); err != nil {
			return err
		}
	}
	return fn(b.master)
}

func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	return b.forEach(func(t target) error {
		return t.wrapper.Paint(op, source, clip)
	})
}

func (b *Backend) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	return b.forEach(func(t target) error {
		return t.wrapper.Mask(op, source, mask, clip)
	})
}

func (b *Backend) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	return b.forEach(func(t target) error {
		return t.wrapper.Stroke(op, source, path, style, ctm, ctmInverse, tolerance, clip)
	})
}

func (b *Backend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	return b.forEach(func(t target) error {
		return t.wrapper.Fill(op, source, path, rule, tolerance, clip)
	})
}

func (b *Backend) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	return b.forEach(func(t target) error {
		// A callee may rewrite the glyph array in place; every target
		// gets a pristine copy.
		return t.wrapper.ShowTextGlyphs(op, source, text, font,
			vg.CopyGlyphs(glyphs), clusters, flags, clip)
	})
}

// AcquireSourceImage prefers a target already backed by real pixels.
func (b *Backend) AcquireSourceImage() (*image.RGBA, func(), error) {
	if t := b.imageTarget(); t != nil {
		return t.AcquireSourceImage()
	}
	return b.master.surf.AcquireSourceImage()
}

// imageTarget returns the first target whose backend has direct pixel
// access, master first.
func (b *Backend) imageTarget() *surface.Surface {
	if _, ok := b.master.surf.Backend().(surface.ImageMapper); ok {
		return b.master.surf
	}
	for _, t := range b.slaves {
		if _, ok := t.surf.Backend().(surface.ImageMapper); ok {
			return t.surf
		}
	}
	return nil
}

// Snapshot prefers a recording target, whose snapshot replays commands
// instead of copying pixels.
func (b *Backend) Snapshot() (surface.Backend, error) {
	if rec := recording.FromSurface(b.master.surf); rec != nil {
		return rec.Snapshot()
	}
	for _, t := range b.slaves {
		if rec := recording.FromSurface(t.surf); rec != nil {
			return rec.Snapshot()
		}
	}
	if sn, ok := b.master.surf.Backend().(surface.Snapshotter); ok {
		return sn.Snapshot()
	}
	return nil, vg.ErrUnsupported
}

func (b *Backend) Flush() error {
	return b.forEach(func(t target) error {
		return t.surf.Flush()
	})
}

var (
	_ surface.Backend         = (*Backend)(nil)
	_ surface.Extenter        = (*Backend)(nil)
	_ surface.Painter         = (*Backend)(nil)
	_ surface.Masker          = (*Backend)(nil)
	_ surface.Stroker         = (*Backend)(nil)
	_ surface.Filler          = (*Backend)(nil)
	_ surface.TextGlyphShower = (*Backend)(nil)
	_ surface.SourceImager    = (*Backend)(nil)
	_ surface.Snapshotter     = (*Backend)(nil)
	_ surface.Flusher         = (*Backend)(nil)
)
