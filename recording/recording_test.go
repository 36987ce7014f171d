package recording

import (
	"image"
	"testing"

	"github.com/gogpu/vg"
)

func solid() vg.Pattern { return vg.NewSolidPattern(vg.RGBA{A: 1}) }

func TestRecordAndInspect(t *testing.T) {
	s := New(vg.ContentColorAlpha, image.Rect(0, 0, 100, 100))
	if err := s.Paint(vg.OpOver, solid(), nil); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	path := &vg.Path{}
	path.Rectangle(10, 10, 20, 20)
	if err := s.Fill(vg.OpOver, solid(), path, vg.FillRuleEvenOdd, vg.DefaultTolerance, nil); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	b := FromSurface(s)
	if b == nil {
		t.Fatal("FromSurface returned nil for a recording surface")
	}
	cmds := b.Commands()
	if len(cmds) != 2 {
		t.Fatalf("recorded %d commands, want 2", len(cmds))
	}
	if cmds[0].Type() != CmdPaint || cmds[1].Type() != CmdFill {
		t.Fatalf("command types = %v, %v", cmds[0].Type(), cmds[1].Type())
	}
	fill := cmds[1].(*FillCmd)
	if fill.Rule != vg.FillRuleEvenOdd {
		t.Fatalf("fill rule = %v, want even-odd", fill.Rule)
	}
}

func TestRecordDeepCopiesInputs(t *testing.T) {
	s := New(vg.ContentColorAlpha, image.Rect(0, 0, 100, 100))

	path := &vg.Path{}
	path.Rectangle(10, 10, 20, 20)
	style := vg.DefaultStrokeStyle()
	style.Dash = []float64{4, 2}
	if err := s.Stroke(vg.OpOver, solid(), path, &style, vg.Identity(), vg.Identity(), vg.DefaultTolerance, nil); err != nil {
		t.Fatalf("Stroke: %v", err)
	}

	glyphs := []vg.Glyph{{Index: 1, X: 5, Y: 5}}
	if err := s.ShowGlyphs(vg.OpOver, solid(), stubFont{}, glyphs, nil); err != nil {
		t.Fatalf("ShowGlyphs: %v", err)
	}

	// Mutate all caller-owned inputs after recording.
	path.LineTo(500, 500)
	style.Dash[0] = 99
	style.Width = 42
	glyphs[0].X = 999

	b := FromSurface(s)
	stroke := b.Commands()[0].(*StrokeCmd)
	if got := stroke.Path.DeviceBounds(); got != image.Rect(10, 10, 30, 30) {
		t.Fatalf("recorded path bounds = %v, caller mutation leaked", got)
	}
	if stroke.Style.Dash[0] != 4 || stroke.Style.Width == 42 {
		t.Fatal("recorded stroke style shares storage with the caller")
	}
	sg := b.Commands()[1].(*ShowTextGlyphsCmd)
	if sg.Glyphs[0].X != 5 {
		t.Fatal("recorded glyphs share storage with the caller")
	}
}

func TestReplayOrderAndCopies(t *testing.T) {
	rec := New(vg.ContentColorAlpha, image.Rect(0, 0, 50, 50))
	_ = rec.Paint(vg.OpOver, solid(), nil)
	path := &vg.Path{}
	path.Rectangle(0, 0, 5, 5)
	_ = rec.Fill(vg.OpAdd, solid(), path, vg.FillRuleNonZero, vg.DefaultTolerance, nil)
	_ = rec.ShowGlyphs(vg.OpOver, solid(), stubFont{}, []vg.Glyph{{Index: 2, X: 1, Y: 1}}, nil)

	tgt := &replayRecorder{}
	if err := FromSurface(rec).Replay(tgt); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := []CommandType{CmdPaint, CmdFill, CmdShowTextGlyphs}
	if len(tgt.seen) != len(want) {
		t.Fatalf("replayed %d ops, want %d", len(tgt.seen), len(want))
	}
	for i, ct := range want {
		if tgt.seen[i] != ct {
			t.Fatalf("replay[%d] = %v, want %v", i, tgt.seen[i], ct)
		}
	}

	// The glyphs handed to the target were a fresh copy: mutating them
	// must not corrupt the recording for a second replay.
	tgt.mutatedGlyphs[0].Index = 77
	sg := FromSurface(rec).Commands()[2].(*ShowTextGlyphsCmd)
	if sg.Glyphs[0].Index != 2 {
		t.Fatal("replay handed out the recording's own glyph slice")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	rec := New(vg.ContentColorAlpha, image.Rect(0, 0, 50, 50))
	_ = rec.Paint(vg.OpOver, solid(), nil)

	snapBackend, err := FromSurface(rec).Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	sb, ok := snapBackend.(*Backend)
	if !ok {
		t.Fatal("snapshot of a recording is not a recording")
	}

	// Draw more on the live recording; the snapshot keeps the
	// single-command state.
	_ = rec.Paint(vg.OpAdd, solid(), nil)
	if sb.Len() != 1 {
		t.Fatalf("snapshot has %d commands, want 1", sb.Len())
	}
	if FromSurface(rec).Len() != 2 {
		t.Fatalf("live recording has %d commands, want 2", FromSurface(rec).Len())
	}
}

func TestUnboundedExtents(t *testing.T) {
	s := NewUnbounded(vg.ContentColorAlpha)
	if _, bounded := s.Extents(); bounded {
		t.Fatal("unbounded recording reports bounded extents")
	}
}

// replayRecorder records the order of replayed operations.
type replayRecorder struct {
	seen          []CommandType
	mutatedGlyphs []vg.Glyph
}

func (r *replayRecorder) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	r.seen = append(r.seen, CmdPaint)
	return nil
}

func (r *replayRecorder) Mask(op vg.Op, source, mask vg.Pattern, clip *vg.Clip) error {
	r.seen = append(r.seen, CmdMask)
	return nil
}

func (r *replayRecorder) Stroke(op vg.Op, source vg.Pattern, path *vg.Path, style *vg.StrokeStyle, ctm, ctmInverse vg.Matrix, tolerance float64, clip *vg.Clip) error {
	r.seen = append(r.seen, CmdStroke)
	return nil
}

func (r *replayRecorder) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	r.seen = append(r.seen, CmdFill)
	return nil
}

func (r *replayRecorder) ShowTextGlyphs(op vg.Op, source vg.Pattern, text string, font vg.Font,
	glyphs []vg.Glyph, clusters []vg.TextCluster, flags vg.ClusterFlags, clip *vg.Clip) error {
	r.seen = append(r.seen, CmdShowTextGlyphs)
	r.mutatedGlyphs = glyphs
	return nil
}

// stubFont satisfies vg.Font for recording tests.
type stubFont struct{}

func (stubFont) GlyphExtents([]vg.Glyph) (image.Rectangle, error) {
	return image.Rect(0, 0, 10, 10), nil
}
func (stubFont) CTM() vg.Matrix                       { return vg.Identity() }
func (stubFont) WithCTM(vg.Matrix) (vg.Font, error)   { return stubFont{}, nil }
func (stubFont) HasColorGlyphs() bool                 { return false }
func (stubFont) ColorGlyph(uint32) (*vg.ColorGlyph, error) {
	return nil, vg.ErrUnsupported
}
