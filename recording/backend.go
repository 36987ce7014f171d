package recording

import (
	"image"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/surface"
)

// Backend is a surface backend that appends every drawing operation to
// a command list.
type Backend struct {
	content vg.Content
	extents image.Rectangle
	bounded bool

	commands []Command
}

// NewBackend creates a recording backend. A zero extents rectangle with
// bounded false records an unbounded surface.
func NewBackend(content vg.Content, extents image.Rectangle, bounded bool) *Backend {
	return &Backend{content: content, extents: extents, bounded: bounded}
}

// New creates a bounded recording surface.
func New(content vg.Content, extents image.Rectangle) *surface.Surface {
	return surface.NewFromBackend(NewBackend(content, extents, true))
}

// NewUnbounded creates a recording surface without extents.
func NewUnbounded(content vg.Content) *surface.Surface {
	return surface.NewFromBackend(NewBackend(content, image.Rectangle{}, false))
}

// FromSurface returns the recording backend of s, or nil if s is not a
// recording surface.
func FromSurface(s *surface.Surface) *Backend {
	b, _ := s.Backend().(*Backend)
	return b
}

func (b *Backend) Content() vg.Content { return b.content }

func (b *Backend) Finish() error {
	b.commands = nil
	return nil
}

func (b *Backend) Extents() (image.Rectangle, bool) {
	if !b.bounded {
		return vg.UnboundedRect, false
	}
	return b.extents, true
}

// Commands returns the recorded command list. The caller must not
// modify it.
func (b *Backend) Commands() []Command { return b.commands }

// Len returns the number of recorded commands.
func (b *Backend) Len() int { return len(b.commands) }

// Reset drops all recorded commands.
func (b *Backend) Reset() { b.commands = nil }

func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	b.commands = append(b.commands, &PaintCmd{
		Operator: op,
		Source:   source,
		Clip:     clip.Copy(),
	})
	return nil
}

func (b *Backend) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	b.commands = append(b.commands, &MaskCmd{
		Operator: op,
		Source:   source,
		Mask:     mask,
		Clip:     clip.Copy(),
	})
	return nil
}

func (b *Backend) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	b.commands = append(b.commands, &StrokeCmd{
		Operator:   op,
		Source:     source,
		Path:       path.Clone(),
		Style:      style.Clone(),
		CTM:        ctm,
		CTMInverse: ctmInverse,
		Tolerance:  tolerance,
		Clip:       clip.Copy(),
	})
	return nil
}

func (b *Backend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	b.commands = append(b.commands, &FillCmd{
		Operator:  op,
		Source:    source,
		Path:      path.Clone(),
		Rule:      rule,
		Tolerance: tolerance,
		Clip:      clip.Copy(),
	})
	return nil
}

func (b *Backend) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	cl := make([]vg.TextCluster, len(clusters))
	copy(cl, clusters)
	b.commands = append(b.commands, &ShowTextGlyphsCmd{
		Operator: op,
		Source:   source,
		Text:     text,
		Font:     font,
		Glyphs:   vg.CopyGlyphs(glyphs),
		Clusters: cl,
		Flags:    flags,
		Clip:     clip.Copy(),
	})
	return nil
}

func (b *Backend) Tag(begin bool, name, attributes string) error {
	b.commands = append(b.commands, &TagCmd{
		Begin:      begin,
		Name:       name,
		Attributes: attributes,
	})
	return nil
}

// Snapshot returns an independent copy of the recording, so a snapshot
// of a recording surface replays the commands recorded so far.
func (b *Backend) Snapshot() (surface.Backend, error) {
	cp := &Backend{content: b.content, extents: b.extents, bounded: b.bounded}
	cp.commands = make([]Command, len(b.commands))
	copy(cp.commands, b.commands)
	return cp, nil
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
	_ surface.Snapshotter     = (*Backend)(nil)
)
