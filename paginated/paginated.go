// Package paginated implements the buffer-then-replay backend for
// page-oriented targets. Drawing accumulates into a recording surface;
// emitting a page analyzes which recorded operations the real target
// can execute natively and replays them directly, rasterizing the rest
// at the fallback resolution and painting the result as images.
package paginated

import (
	"image"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/recording"
	"github.com/gogpu/vg/surface"
)

// Mode tells a page-aware target backend what kind of pass is driving
// it. During analysis the backend reports support without producing
// output; during render and fallback it draws for real.
type Mode int

const (
	// ModeAnalyze is the capability-probing replay before a page is
	// emitted.
	ModeAnalyze Mode = iota

	// ModeRender is the native replay of supported operations.
	ModeRender

	// ModeFallback is the pass that paints rasterized substitutes for
	// unsupported operations.
	ModeFallback
)

// ModeSetter is implemented by target backends that distinguish
// analysis from rendering. Backends without it are probed by
// capability interface alone.
type ModeSetter interface {
	SetPaginatedMode(Mode)
}

// FineGrainedFallbacker is implemented by target backends that can
// interleave native drawing with per-region fallback images. Without
// it, any unsupported operation forces rasterizing the whole page.
type FineGrainedFallbacker interface {
	SupportsFineGrainedFallbacks() bool
}

// Thumbnailer is implemented by target backends that want a reduced
// image of each emitted page.
type Thumbnailer interface {
	// ThumbnailSize returns the requested thumbnail dimensions, or
	// ok=false when no thumbnail is wanted for the current page.
	ThumbnailSize() (w, h int, ok bool)

	// SetThumbnail attaches the rendered thumbnail to the current page.
	SetThumbnail(img *image.RGBA) error
}

const (
	// defaultFallbackResolution is the raster density for fallback
	// images, in pixels per inch.
	defaultFallbackResolution = 300.0

	// unitsPerInch is the nominal density of page-device units.
	unitsPerInch = 72.0
)

// Backend buffers drawing for one page at a time and replays it onto
// the target when the page is emitted. The target surface is owned by
// the caller and is not finished with the paginated surface.
type Backend struct {
	target  *surface.Surface
	rec     *recording.Backend
	content vg.Content
	extents image.Rectangle
	bounded bool

	xResolution float64
	yResolution float64

	pageNum   int
	finishing bool
}

var (
	_ surface.Backend         = (*Backend)(nil)
	_ surface.Extenter        = (*Backend)(nil)
	_ surface.Painter         = (*Backend)(nil)
	_ surface.Masker          = (*Backend)(nil)
	_ surface.Stroker         = (*Backend)(nil)
	_ surface.Filler          = (*Backend)(nil)
	_ surface.TextGlyphShower = (*Backend)(nil)
	_ surface.Tagger          = (*Backend)(nil)
	_ surface.Pager           = (*Backend)(nil)
	_ surface.Flusher         = (*Backend)(nil)
)

// NewBackend creates a paginated backend buffering for target.
func NewBackend(target *surface.Surface) *Backend {
	extents, bounded := target.Extents()
	b := &Backend{
		target:      target,
		content:     target.Content(),
		extents:     extents,
		bounded:     bounded,
		xResolution: defaultFallbackResolution,
		yResolution: defaultFallbackResolution,
	}
	b.rec = b.freshRecording()
	return b
}

// New creates a paginated surface buffering for target.
func New(target *surface.Surface) *surface.Surface {
	if err := target.Status(); err != nil {
		return surface.NewInError(err)
	}
	return surface.NewFromBackend(NewBackend(target))
}

// FromSurface returns the paginated backend behind a surface, or nil.
func FromSurface(s *surface.Surface) *Backend {
	b, _ := s.Backend().(*Backend)
	return b
}

func (b *Backend) freshRecording() *recording.Backend {
	if b.bounded {
		return recording.NewBackend(b.content, b.extents, true)
	}
	return recording.NewBackend(b.content, image.Rectangle{}, false)
}

// Target returns the real surface pages are emitted onto.
func (b *Backend) Target() *surface.Surface { return b.target }

// PageNumber returns the number of pages emitted so far.
func (b *Backend) PageNumber() int { return b.pageNum }

// SetFallbackResolution sets the raster density, in pixels per inch,
// used when page content must be rasterized. The default is 300.
func (b *Backend) SetFallbackResolution(x, y float64) {
	if x > 0 {
		b.xResolution = x
	}
	if y > 0 {
		b.yResolution = y
	}
}

// Content implements surface.Backend.
func (b *Backend) Content() vg.Content { return b.content }

// Extents implements surface.Extenter, reporting the target's extents.
func (b *Backend) Extents() (image.Rectangle, bool) {
	return b.extents, b.bounded
}

// Finish emits any pending page content before shutting down. The
// target stays open; the caller finishes it separately.
func (b *Backend) Finish() error {
	b.finishing = true
	if b.rec.Len() == 0 {
		return nil
	}
	return b.ShowPage()
}

// Flush implements surface.Flusher by forwarding to the target, so
// observers stacked below the paginated surface see a flush boundary.
func (b *Backend) Flush() error {
	return b.target.Flush()
}

func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	return b.rec.Paint(op, source, clip)
}

func (b *Backend) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	return b.rec.Mask(op, source, mask, clip)
}

func (b *Backend) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle,
	ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	return b.rec.Stroke(op, source, path, style, ctm, ctmInverse, tolerance, clip)
}

func (b *Backend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule,
	tolerance float64, clip *vg.Clip) error {
	return b.rec.Fill(op, source, path, rule, tolerance, clip)
}

func (b *Backend) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	return b.rec.ShowTextGlyphs(op, source, text, font, glyphs, clusters, flags, clip)
}

func (b *Backend) Tag(begin bool, name, attributes string) error {
	return b.rec.Tag(begin, name, attributes)
}

// ShowPage emits the buffered page onto the target and starts a fresh
// recording for the next page.
func (b *Backend) ShowPage() error {
	if err := b.emitPage(); err != nil {
		return err
	}
	if !b.finishing {
		b.rec = b.freshRecording()
	}
	b.pageNum++
	return nil
}

// CopyPage emits the buffered page but keeps the recording, so the
// next page starts with identical content.
func (b *Backend) CopyPage() error {
	if err := b.emitPage(); err != nil {
		return err
	}
	b.pageNum++
	return nil
}

// emitPage analyzes the recording against the target and replays it
// with the appropriate strategy. Failures are set on the target's own
// sticky status in addition to being returned: page-oriented backends
// track their health across the wrapper boundary.
func (b *Backend) emitPage() error {
	if err := b.target.Status(); err != nil {
		return err
	}

	native, fallbackRects, err := b.analyze()
	if err != nil {
		b.target.SetError(err)
		return err
	}

	if ms, ok := b.target.Backend().(ModeSetter); ok {
		ms.SetPaginatedMode(ModeRender)
	}

	switch {
	case len(fallbackRects) == 0:
		err = b.rec.Replay(b.target)
	case b.fineGrained():
		err = b.renderWithRegionFallback(native, fallbackRects)
	default:
		err = b.renderPageFallback()
	}
	if err != nil {
		b.target.SetError(err)
		return err
	}

	if err := b.attachThumbnail(); err != nil {
		b.target.SetError(err)
		return err
	}
	return b.target.ShowPage()
}

func (b *Backend) fineGrained() bool {
	f, ok := b.target.Backend().(FineGrainedFallbacker)
	return ok && f.SupportsFineGrainedFallbacks()
}
