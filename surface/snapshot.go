package surface

import (
	"errors"
	"image"

	"github.com/gogpu/vg"
)

// snapshotBackend is the backend of a snapshot surface. While attached
// it reads through to the live source; detach materializes an
// independent copy so the snapshot keeps the pre-mutation content after
// the source changes.
type snapshotBackend struct {
	source *Surface // nil once detached
	own    Backend  // set by detach

	content vg.Content
	extents image.Rectangle
	bounded bool

	// pixels holds the materialized content when the source backend
	// offered no snapshot of its own.
	pixels *image.RGBA
}

func (b *snapshotBackend) Content() vg.Content { return b.content }

func (b *snapshotBackend) Extents() (image.Rectangle, bool) {
	return b.extents, b.bounded
}

func (b *snapshotBackend) Finish() error {
	if b.own != nil {
		return b.own.Finish()
	}
	b.pixels = nil
	return nil
}

func (b *snapshotBackend) AcquireSourceImage() (*image.RGBA, func(), error) {
	if b.source != nil {
		return b.source.acquireSourceImage()
	}
	if b.own != nil {
		if si, ok := b.own.(SourceImager); ok {
			return si.AcquireSourceImage()
		}
		return nil, nil, vg.ErrUnsupported
	}
	if b.pixels == nil {
		return nil, nil, vg.ErrUnsupported
	}
	return b.pixels, func() {}, nil
}

// detachFromSource copies the source's current content into the
// snapshot. Preferred path is the source backend's own snapshot
// support; otherwise the pixels are copied through a source image view.
func (b *snapshotBackend) detachFromSource() error {
	src := b.source
	if src == nil {
		return nil
	}
	b.source = nil

	if sn, ok := src.backend.(Snapshotter); ok {
		own, err := sn.Snapshot()
		if err == nil {
			b.own = own
			return nil
		}
		if !errors.Is(err, vg.ErrUnsupported) {
			return err
		}
	}

	img, release, err := src.acquireSourceImage()
	if err != nil {
		return err
	}
	defer release()
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	b.pixels = cp
	return nil
}

// Snapshot returns an immutable duplicate of the surface's current
// content. The duplicate shares storage with this surface until the
// next mutation detaches it. Snapshot surfaces reject drawing.
func (s *Surface) Snapshot() *Surface {
	if s.status != nil {
		return NewInError(s.status)
	}
	if s.finished {
		return NewInError(vg.ErrSurfaceFinished)
	}
	if err := s.Flush(); err != nil {
		return NewInError(err)
	}

	ext, bounded := s.Extents()
	snap := NewFromBackend(&snapshotBackend{
		source:  s,
		content: s.Content(),
		extents: ext,
		bounded: bounded,
	})
	snap.isClear = s.isClear
	snap.snapshotOf = s
	s.snapshots = append(s.snapshots, snap)
	return snap
}

// SnapshotOf returns the live surface this snapshot is still attached
// to, or nil once detached (or for non-snapshot surfaces).
func (s *Surface) SnapshotOf() *Surface { return s.snapshotOf }

// detach makes a snapshot self-contained. No-op for surfaces that are
// not attached snapshots.
func (s *Surface) detach() error {
	b, ok := s.backend.(*snapshotBackend)
	if !ok {
		return nil
	}
	return b.detachFromSource()
}

// dropSnapshot unregisters a finished snapshot from its source.
func (s *Surface) dropSnapshot(snap *Surface) {
	for i, cur := range s.snapshots {
		if cur == snap {
			s.snapshots = append(s.snapshots[:i], s.snapshots[i+1:]...)
			return
		}
	}
}

// HasSnapshots reports whether any attached snapshots are live.
func (s *Surface) HasSnapshots() bool { return len(s.snapshots) > 0 }
