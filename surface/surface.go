// Package surface implements the generic surface layer: sticky error
// handling, modification tracking, snapshot copy-on-write, and the
// adaptation of drawing operations onto whatever capabilities a
// concrete backend exposes.
package surface

import (
	"errors"
	"image"
	"sync/atomic"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/damage"
)

// nextID hands out process-unique surface ids.
var nextID atomic.Uint64

// Surface wraps a Backend with the bookkeeping every surface type
// shares. A Surface is not safe for concurrent use.
type Surface struct {
	backend Backend

	// refs counts the owners sharing this surface; Destroy finishes it
	// when the last owner lets go. The count is the one piece of
	// surface state touched from multiple goroutines.
	refs atomic.Int32

	id uint64

	// status is sticky: the first error recorded is the one reported
	// forever after.
	status   error
	finished bool

	// serial is bumped on every mutation; external caches keyed on
	// this surface use it as a generation counter.
	serial uint64

	// isClear is true while no drawing has touched the surface.
	isClear bool

	// deviceTransform maps surface user space to the backend's device
	// space. deviceInverse is kept as its exact inverse.
	deviceTransform vg.Matrix
	deviceInverse   vg.Matrix

	dmg *damage.Damage

	// snapshots are live copy-on-write duplicates that must be
	// detached before this surface mutates.
	snapshots  []*Surface
	snapshotOf *Surface

	// foreground, when set, substitutes for the marker pattern that
	// means "use the current foreground color".
	foreground     vg.Pattern
	foregroundUsed bool

	colorGlyphs colorGlyphCache

	mime map[string][]byte
	user map[any]any
}

// NewFromBackend wraps a backend in a Surface. The caller holds the
// first reference.
func NewFromBackend(b Backend) *Surface {
	s := &Surface{
		backend:         b,
		id:              nextID.Add(1),
		isClear:         true,
		deviceTransform: vg.Identity(),
		deviceInverse:   vg.Identity(),
	}
	s.refs.Store(1)
	return s
}

// NewInError returns a surface whose only behavior is reporting err.
// Constructors return these instead of nil so callers always get a
// checkable, destroyable object.
func NewInError(err error) *Surface {
	vg.Logger().Debug("surface construction failed", "err", err)
	s := &Surface{
		status:          err,
		id:              nextID.Add(1),
		finished:        true,
		deviceTransform: vg.Identity(),
		deviceInverse:   vg.Identity(),
	}
	s.refs.Store(1)
	return s
}

// ID returns the surface's process-unique identifier.
func (s *Surface) ID() uint64 { return s.id }

// Reference registers another owner of the surface and returns it.
func (s *Surface) Reference() *Surface {
	if s == nil {
		return nil
	}
	s.refs.Add(1)
	return s
}

// ReferenceCount returns the current number of owners.
func (s *Surface) ReferenceCount() int { return int(s.refs.Load()) }

// Destroy releases one reference. The last release finishes the
// surface and drops its side tables. Destroying nil is a no-op.
func (s *Surface) Destroy() {
	if s == nil {
		return
	}
	if s.refs.Add(-1) != 0 {
		return
	}
	_ = s.Finish()
	s.mime = nil
	s.user = nil
}

// Backend returns the wrapped backend, or nil for an error surface.
func (s *Surface) Backend() Backend { return s.backend }

// Status returns the first error ever recorded on the surface, or nil.
func (s *Surface) Status() error { return s.status }

// IsFinished reports whether Finish has been called.
func (s *Surface) IsFinished() bool { return s.finished }

// Serial returns the surface's modification counter.
func (s *Surface) Serial() uint64 { return s.serial }

// IsClear reports whether nothing has drawn to the surface yet.
func (s *Surface) IsClear() bool { return s.isClear }

// Content reports the channels the surface stores.
func (s *Surface) Content() vg.Content {
	if s.backend == nil {
		return vg.ContentColorAlpha
	}
	return s.backend.Content()
}

// Extents returns the surface's device extents. ok is false for
// unbounded surfaces.
func (s *Surface) Extents() (image.Rectangle, bool) {
	if e, ok := s.backend.(Extenter); ok {
		return e.Extents()
	}
	return vg.UnboundedRect, false
}

// setError records err as the surface's sticky status. The first error
// wins; later errors of a different kind never replace it. The
// unsupported and nothing-to-do signals are control flow, not surface
// state, and are returned without being recorded.
func (s *Surface) setError(err error) error {
	if err == nil || errors.Is(err, vg.ErrUnsupported) || errors.Is(err, vg.ErrNothingToDo) {
		return err
	}
	if s.status == nil {
		s.status = err
		vg.Logger().Debug("surface entered error state", "err", err)
	}
	return err
}

// SetError exposes the sticky setter for collaborating layers that must
// push a failure onto the surface (paginated replay, tee fan-out).
func (s *Surface) SetError(err error) error { return s.setError(err) }

// SetDeviceTransform installs the transform from surface user space to
// the backend's device space. Fails with vg.ErrInvalidMatrix for
// singular matrices; the stored transform and inverse change together
// or not at all.
func (s *Surface) SetDeviceTransform(m vg.Matrix) error {
	inv, err := m.Invert()
	if err != nil {
		return err
	}
	s.deviceTransform = m
	s.deviceInverse = inv
	return nil
}

// DeviceTransform returns the surface's user-to-device transform.
func (s *Surface) DeviceTransform() vg.Matrix { return s.deviceTransform }

// DeviceTransformInverse returns the exact inverse of the device
// transform.
func (s *Surface) DeviceTransformInverse() vg.Matrix { return s.deviceInverse }

// Damage returns the surface's damage accumulator, or nil if none is
// attached.
func (s *Surface) Damage() *damage.Damage { return s.dmg }

// SetDamage attaches (or replaces) the surface's damage accumulator.
func (s *Surface) SetDamage(d *damage.Damage) { s.dmg = d }

// SetForeground installs the pattern substituted for the foreground
// marker pattern.
func (s *Surface) SetForeground(p vg.Pattern) { s.foreground = p }

// ForegroundUsed reports whether any operation since creation resolved
// the foreground marker against this surface's override.
func (s *Surface) ForegroundUsed() bool { return s.foregroundUsed }

// SetMimeData attaches opaque data under a MIME type key. Mutating the
// surface discards all attached data.
func (s *Surface) SetMimeData(mimeType string, data []byte) error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	if s.mime == nil {
		s.mime = make(map[string][]byte)
	}
	s.mime[mimeType] = data
	return nil
}

// MimeData returns data previously attached under the MIME type key.
func (s *Surface) MimeData(mimeType string) ([]byte, bool) {
	d, ok := s.mime[mimeType]
	return d, ok
}

// SetUserData attaches a value under an arbitrary comparable key.
// Unlike mime data, user data survives mutation and lives until the
// last reference is destroyed.
func (s *Surface) SetUserData(key, value any) {
	if s.user == nil {
		s.user = make(map[any]any)
	}
	s.user[key] = value
}

// UserData returns the value previously attached under key.
func (s *Surface) UserData(key any) (any, bool) {
	v, ok := s.user[key]
	return v, ok
}

// prepare is the common preamble of every drawing entry point: sticky
// status short-circuit, finished check, and validation of each pattern
// (a pattern error or a dead pattern source propagates as this
// surface's status).
func (s *Surface) prepare(patterns ...vg.Pattern) error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	for _, p := range patterns {
		if p == nil {
			continue
		}
		if err := p.Err(); err != nil {
			return s.setError(err)
		}
	}
	return nil
}

// nothingToDo reports whether (op, source) cannot change the surface.
// The returned op may be rewritten: SOURCE with a clear source
// degenerates to CLEAR.
func (s *Surface) nothingToDo(op vg.Op, source vg.Pattern) (vg.Op, bool) {
	if source != nil && source.IsClear() {
		switch op {
		case vg.OpOver, vg.OpAdd:
			return op, true
		case vg.OpSource:
			op = vg.OpClear
		}
	}
	if op == vg.OpClear && s.isClear {
		return op, true
	}
	if op == vg.OpAtop && !s.Content().HasColor() {
		return op, true
	}
	return op, false
}

// beginModification detaches every live snapshot and drops attached
// mime data before the surface mutates. Snapshots must capture the
// pre-mutation content, so each becomes self-contained here.
func (s *Surface) beginModification() {
	for _, snap := range s.snapshots {
		if err := snap.detach(); err != nil {
			snap.setError(err)
		}
		snap.snapshotOf = nil
	}
	s.snapshots = s.snapshots[:0]
	s.mime = nil
}

// resolveSource substitutes the installed foreground pattern for the
// foreground marker.
func (s *Surface) resolveSource(source vg.Pattern) vg.Pattern {
	if vg.IsForegroundMarker(source) && s.foreground != nil {
		s.foregroundUsed = true
		return s.foreground
	}
	return source
}

// finishOp is the common postamble: unless the backend reported exactly
// nothing-to-do, the surface is no longer clear and its serial bumps.
// Nothing-to-do is success to the caller.
func (s *Surface) finishOp(err error) error {
	if !errors.Is(err, vg.ErrNothingToDo) {
		s.isClear = false
		s.serial++
	}
	if errors.Is(err, vg.ErrNothingToDo) {
		return nil
	}
	return s.setError(err)
}

// Paint composites the source pattern over the whole surface.
func (s *Surface) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	if err := s.prepare(source); err != nil {
		return err
	}
	if clip.IsEmpty() {
		return nil
	}
	op, noop := s.nothingToDo(op, source)
	if noop {
		return nil
	}
	s.beginModification()
	source = s.resolveSource(source)

	err := vg.ErrUnsupported
	if p, ok := s.backend.(Painter); ok {
		err = p.Paint(op, source, clip)
	}
	return s.finishOp(err)
}

// Mask composites the source pattern through the alpha of the mask
// pattern.
func (s *Surface) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	if err := s.prepare(source, mask); err != nil {
		return err
	}
	if mask == nil {
		return s.setError(vg.ErrNilPattern)
	}
	if clip.IsEmpty() {
		return nil
	}
	if mask.IsClear() {
		return nil
	}
	op, noop := s.nothingToDo(op, source)
	if noop {
		return nil
	}
	s.beginModification()
	source = s.resolveSource(source)

	err := vg.ErrUnsupported
	if m, ok := s.backend.(Masker); ok {
		err = m.Mask(op, source, mask, clip)
	}
	return s.finishOp(err)
}

// Stroke draws the outline of path under the given style and transform.
func (s *Surface) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	if err := s.prepare(source); err != nil {
		return err
	}
	if clip.IsEmpty() {
		return nil
	}
	op, noop := s.nothingToDo(op, source)
	if noop {
		return nil
	}
	s.beginModification()
	source = s.resolveSource(source)

	err := vg.ErrUnsupported
	if st, ok := s.backend.(Stroker); ok {
		err = st.Stroke(op, source, path, style, ctm, ctmInverse, tolerance, clip)
	}
	return s.finishOp(err)
}

// Fill fills the interior of path under the given fill rule.
func (s *Surface) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	if err := s.prepare(source); err != nil {
		return err
	}
	if clip.IsEmpty() {
		return nil
	}
	op, noop := s.nothingToDo(op, source)
	if noop {
		return nil
	}
	s.beginModification()
	source = s.resolveSource(source)

	err := vg.ErrUnsupported
	if f, ok := s.backend.(Filler); ok {
		err = f.Fill(op, source, path, rule, tolerance, clip)
	}
	return s.finishOp(err)
}

// FillStroke fills and strokes one path. Backends with a fused
// primitive get a single pass with no double coverage at the fill and
// stroke boundary; the two-call fallback can double-antialias there,
// which is an accepted limitation of the non-fused path.
func (s *Surface) FillStroke(op vg.Op,
	fillSource vg.Pattern, rule vg.FillRule,
	strokeSource vg.Pattern, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix,
	path *vg.Path, tolerance float64, clip *vg.Clip) error {
	if err := s.prepare(fillSource, strokeSource); err != nil {
		return err
	}
	if clip.IsEmpty() {
		return nil
	}

	if fs, ok := s.backend.(FillStroker); ok {
		s.beginModification()
		err := fs.FillStroke(op,
			s.resolveSource(fillSource), rule,
			s.resolveSource(strokeSource), style, ctm, ctmInverse,
			path, tolerance, clip)
		if !errors.Is(err, vg.ErrUnsupported) {
			return s.finishOp(err)
		}
	}

	if err := s.Fill(op, fillSource, path, rule, tolerance, clip); err != nil {
		return err
	}
	return s.Stroke(op, strokeSource, path, style, ctm, ctmInverse, tolerance, clip)
}

// ShowGlyphs renders positioned glyphs. Backends that only implement
// the text-aware entry point get the glyphs with empty text.
func (s *Surface) ShowGlyphs(op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) error {
	return s.ShowTextGlyphs(op, source, "", font, glyphs, nil, 0, clip)
}

// Tag marks the beginning (begin true) or end of a logical structure
// range on backends that carry document structure.
func (s *Surface) Tag(begin bool, name, attributes string) error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	t, ok := s.backend.(Tagger)
	if !ok {
		return nil
	}
	return s.setError(t.Tag(begin, name, attributes))
}

// Flush pushes pending drawing to the backend's device.
func (s *Surface) Flush() error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return nil
	}
	if f, ok := s.backend.(Flusher); ok {
		return s.setError(f.Flush())
	}
	return nil
}

// MarkDirtyRectangle tells the surface its pixels were modified outside
// the drawing API.
func (s *Surface) MarkDirtyRectangle(r image.Rectangle) error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	s.beginModification()
	s.isClear = false
	s.serial++
	if s.dmg != nil && s.dmg.Err() == nil {
		s.dmg = s.dmg.AddBox(r)
	}
	if m, ok := s.backend.(DirtyMarker); ok {
		return s.setError(m.MarkDirty(r))
	}
	return nil
}

// MarkDirty marks the whole surface modified.
func (s *Surface) MarkDirty() error {
	r, ok := s.Extents()
	if !ok {
		r = vg.UnboundedRect
	}
	return s.MarkDirtyRectangle(r)
}

// CreateSimilar creates a new surface with the given content and size,
// preferring the backend's own similar-surface support and falling back
// to the best registered backend.
func (s *Surface) CreateSimilar(content vg.Content, width, height int) *Surface {
	if s.status != nil {
		return NewInError(s.status)
	}
	if width < 0 || height < 0 {
		return NewInError(vg.ErrInvalidSize)
	}
	if sc, ok := s.backend.(SimilarCreator); ok {
		b, err := sc.CreateSimilar(content, width, height)
		if err == nil {
			return NewFromBackend(b)
		}
		if !errors.Is(err, vg.ErrUnsupported) {
			return NewInError(err)
		}
	}
	f := defaultFactory()
	if f == nil {
		return NewInError(vg.ErrUnsupported)
	}
	b, err := f(content, width, height)
	if err != nil {
		return NewInError(err)
	}
	return NewFromBackend(b)
}

// MapToImage gives direct access to the surface's pixels inside r.
// Without backend support the returned image is a read-only copy.
func (s *Surface) MapToImage(r image.Rectangle) (*image.RGBA, error) {
	if s.status != nil {
		return nil, s.status
	}
	if s.finished {
		return nil, s.setError(vg.ErrSurfaceFinished)
	}
	if m, ok := s.backend.(ImageMapper); ok {
		img, err := m.MapToImage(r)
		if err != nil {
			return nil, s.setError(err)
		}
		return img, nil
	}
	src, release, err := s.acquireSourceImage()
	if err != nil {
		return nil, s.setError(err)
	}
	defer release()
	out := image.NewRGBA(r.Sub(r.Min))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetRGBA(x-r.Min.X, y-r.Min.Y, src.RGBAAt(x, y))
		}
	}
	return out, nil
}

// UnmapImage releases an image returned by MapToImage, applying any
// writes on backends that support direct mapping.
func (s *Surface) UnmapImage(img *image.RGBA) error {
	if s.status != nil {
		return s.status
	}
	if m, ok := s.backend.(ImageMapper); ok {
		s.beginModification()
		s.isClear = false
		s.serial++
		return s.setError(m.UnmapImage(img))
	}
	return nil
}

// AcquireSourceImage returns a read-only image view of the surface's
// pixels and a release func the caller must invoke when done.
func (s *Surface) AcquireSourceImage() (*image.RGBA, func(), error) {
	if s.status != nil {
		return nil, nil, s.status
	}
	img, release, err := s.acquireSourceImage()
	if err != nil {
		return nil, nil, s.setError(err)
	}
	return img, release, nil
}

func (s *Surface) acquireSourceImage() (*image.RGBA, func(), error) {
	if si, ok := s.backend.(SourceImager); ok {
		return si.AcquireSourceImage()
	}
	return nil, nil, vg.ErrUnsupported
}

// ShowPage emits the current page on multi-page backends.
func (s *Surface) ShowPage() error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	if p, ok := s.backend.(Pager); ok {
		return s.setError(p.ShowPage())
	}
	return nil
}

// CopyPage emits the current page without clearing it on multi-page
// backends.
func (s *Surface) CopyPage() error {
	if s.status != nil {
		return s.status
	}
	if s.finished {
		return s.setError(vg.ErrSurfaceFinished)
	}
	if p, ok := s.backend.(Pager); ok {
		return s.setError(p.CopyPage())
	}
	return nil
}

// Finish flushes the surface, detaches its snapshots, and releases
// backend resources. Drawing after Finish fails with
// vg.ErrSurfaceFinished. Finish is idempotent.
func (s *Surface) Finish() error {
	if s.finished {
		return s.status
	}
	_ = s.Flush()
	s.beginModification()
	if s.snapshotOf != nil {
		s.snapshotOf.dropSnapshot(s)
		s.snapshotOf = nil
	}
	s.finished = true
	if s.backend != nil {
		if err := s.backend.Finish(); err != nil {
			vg.Logger().Debug("backend finish failed", "err", err)
			return s.setError(err)
		}
	}
	return s.status
}
