package recording

import (
	"github.com/gogpu/vg"
)

// Target is the set of drawing operations a replay drives. Both
// *surface.Surface and *surface.Wrapper satisfy it.
type Target interface {
	Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error
	Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error
	Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error
	Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error
	ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
		glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error
}

// tagTarget is probed for replaying tag commands; targets without it
// skip them.
type tagTarget interface {
	Tag(begin bool, name, attributes string) error
}

// ReplayCommand applies one recorded command to a target. Glyph slices
// are re-copied per call because a target may rewrite them in place.
func ReplayCommand(cmd Command, target Target) error {
	switch c := cmd.(type) {
	case *PaintCmd:
		return target.Paint(c.Operator, c.Source, c.Clip)
	case *MaskCmd:
		return target.Mask(c.Operator, c.Source, c.Mask, c.Clip)
	case *StrokeCmd:
		return target.Stroke(c.Operator, c.Source, c.Path.Clone(), c.Style, c.CTM, c.CTMInverse, c.Tolerance, c.Clip)
	case *FillCmd:
		return target.Fill(c.Operator, c.Source, c.Path.Clone(), c.Rule, c.Tolerance, c.Clip)
	case *ShowTextGlyphsCmd:
		return target.ShowTextGlyphs(c.Operator, c.Source, c.Text, c.Font,
			vg.CopyGlyphs(c.Glyphs), c.Clusters, c.Flags, c.Clip)
	case *TagCmd:
		if tt, ok := target.(tagTarget); ok {
			return tt.Tag(c.Begin, c.Name, c.Attributes)
		}
		return nil
	default:
		return vg.ErrUnsupported
	}
}

// Replay applies every recorded command to the target in order,
// stopping at the first failure.
func (b *Backend) Replay(target Target) error {
	for _, cmd := range b.commands {
		if err := ReplayCommand(cmd, target); err != nil {
			return err
		}
	}
	return nil
}
