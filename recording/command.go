// Package recording implements a surface backend that captures drawing
// operations as typed command structures instead of rasterizing them.
//
// A recorded page can be replayed any number of times onto any target
// implementing the drawing operations, which is what the paginated
// surface relies on: one recording replayed first for analysis, then
// for rendering or fallback rasterization.
//
// Commands are typed structs rather than a serialized byte stream so
// they stay inspectable; every recorded input is deep-copied at record
// time, so later caller-side mutation of paths or glyph slices cannot
// corrupt a recording.
package recording

import (
	"github.com/gogpu/vg"
)

// CommandType identifies the type of a recorded command.
type CommandType uint8

const (
	CmdPaint CommandType = iota
	CmdMask
	CmdStroke
	CmdFill
	CmdShowTextGlyphs
	CmdTag
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdPaint:          "Paint",
	CmdMask:           "Mask",
	CmdStroke:         "Stroke",
	CmdFill:           "Fill",
	CmdShowTextGlyphs: "ShowTextGlyphs",
	CmdTag:            "Tag",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all recorded command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	// Op returns the compositing operator of the command. Tag commands
	// report OpOver.
	Op() vg.Op
}

// PaintCmd records a paint operation.
type PaintCmd struct {
	Operator vg.Op
	Source   vg.Pattern
	Clip     *vg.Clip
}

func (c *PaintCmd) Type() CommandType { return CmdPaint }
func (c *PaintCmd) Op() vg.Op         { return c.Operator }

// MaskCmd records a mask operation.
type MaskCmd struct {
	Operator vg.Op
	Source   vg.Pattern
	Mask     vg.Pattern
	Clip     *vg.Clip
}

func (c *MaskCmd) Type() CommandType { return CmdMask }
func (c *MaskCmd) Op() vg.Op         { return c.Operator }

// StrokeCmd records a stroke operation.
type StrokeCmd struct {
	Operator   vg.Op
	Source     vg.Pattern
	Path       *vg.Path
	Style      *vg.StrokeStyle
	CTM        vg.Matrix
	CTMInverse vg.Matrix
	Tolerance  float64
	Clip       *vg.Clip
}

func (c *StrokeCmd) Type() CommandType { return CmdStroke }
func (c *StrokeCmd) Op() vg.Op         { return c.Operator }

// FillCmd records a fill operation.
type FillCmd struct {
	Operator  vg.Op
	Source    vg.Pattern
	Path      *vg.Path
	Rule      vg.FillRule
	Tolerance float64
	Clip      *vg.Clip
}

func (c *FillCmd) Type() CommandType { return CmdFill }
func (c *FillCmd) Op() vg.Op         { return c.Operator }

// ShowTextGlyphsCmd records a glyph-rendering operation together with
// the text and cluster mapping it was shaped from.
type ShowTextGlyphsCmd struct {
	Operator vg.Op
	Source   vg.Pattern
	Text     string
	Font     vg.Font
	Glyphs   []vg.Glyph
	Clusters []vg.TextCluster
	Flags    vg.ClusterFlags
	Clip     *vg.Clip
}

func (c *ShowTextGlyphsCmd) Type() CommandType { return CmdShowTextGlyphs }
func (c *ShowTextGlyphsCmd) Op() vg.Op         { return c.Operator }

// TagCmd records a document-structure tag.
type TagCmd struct {
	Begin      bool
	Name       string
	Attributes string
}

func (c *TagCmd) Type() CommandType { return CmdTag }
func (c *TagCmd) Op() vg.Op         { return vg.OpOver }
