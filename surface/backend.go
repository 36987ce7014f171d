package surface

import (
	"image"

	"github.com/gogpu/vg"
)

// Backend is the contract a concrete surface type implements to plug
// into the generic surface layer. Backend itself carries only the
// members every surface must have; everything else is an optional
// capability probed by type assertion, and the generic layer adapts
// when a capability is missing.
type Backend interface {
	// Content reports the channels this surface stores.
	Content() vg.Content

	// Finish releases backend resources. Called at most once.
	Finish() error
}

// Extenter is implemented by backends with bounded device extents.
// Backends without it are treated as unbounded.
type Extenter interface {
	Extents() (image.Rectangle, bool)
}

// Painter composites a source pattern over the whole surface.
type Painter interface {
	Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error
}

// Masker composites a source pattern through a mask pattern.
type Masker interface {
	Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error
}

// Stroker draws a path outline.
type Stroker interface {
	Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error
}

// Filler fills a path interior.
type Filler interface {
	Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error
}

// FillStroker fills and strokes one path in a single pass, avoiding
// double coverage where the fill and stroke overlap.
type FillStroker interface {
	FillStroke(op vg.Op,
		fillSource vg.Pattern, rule vg.FillRule,
		strokeSource vg.Pattern, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix,
		path *vg.Path, tolerance float64, clip *vg.Clip) error
}

// GlyphShower renders positioned glyphs.
type GlyphShower interface {
	ShowGlyphs(op vg.Op, source vg.Pattern, font vg.Font, glyphs []vg.Glyph, clip *vg.Clip) error
}

// TextGlyphShower renders glyphs together with the text and cluster
// mapping they were shaped from, for backends that keep text selectable.
type TextGlyphShower interface {
	ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
		glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error
}

// Tagger marks a logical structure range (link, heading) on backends
// that carry document structure.
type Tagger interface {
	Tag(begin bool, name, attributes string) error
}

// SimilarCreator creates a new surface sharing this backend's device.
// Backends without it get the registry's generic image fallback.
type SimilarCreator interface {
	CreateSimilar(content vg.Content, width, height int) (Backend, error)
}

// ImageMapper exposes a surface's pixels for direct access. Every
// MapToImage must be paired with UnmapImage.
type ImageMapper interface {
	MapToImage(r image.Rectangle) (*image.RGBA, error)
	UnmapImage(img *image.RGBA) error
}

// SourceImager supplies a read-only image view of this surface's pixels
// for use as a composite source. The release func must be called when
// the view is no longer needed.
type SourceImager interface {
	AcquireSourceImage() (*image.RGBA, func(), error)
}

// Snapshotter creates an immutable duplicate of the surface's current
// content. The returned backend owns its pixels independently.
type Snapshotter interface {
	Snapshot() (Backend, error)
}

// Flusher pushes pending drawing to the backend's device.
type Flusher interface {
	Flush() error
}

// Pager is implemented by multi-page backends.
type Pager interface {
	ShowPage() error
	CopyPage() error
}

// DirtyMarker is notified when the surface's pixels were modified
// outside the drawing API.
type DirtyMarker interface {
	MarkDirty(r image.Rectangle) error
}
