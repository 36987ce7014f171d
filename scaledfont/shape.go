package scaledfont

import (
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/vg"
)

// shaperPool recycles HarfBuzz shapers. A HarfbuzzShaper is not safe
// for concurrent use, so each shaping call takes its own instance.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// runSpan is one directionally uniform slice of a paragraph, in rune
// indices.
type runSpan struct {
	start, end int
	rtl        bool
}

// bidiRuns splits text into directional runs using the Unicode bidi
// algorithm. Failures degrade to a single left-to-right run.
func bidiRuns(text string, runeCount int) []runSpan {
	var p bidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		return []runSpan{{start: 0, end: runeCount}}
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return []runSpan{{start: 0, end: runeCount}}
	}

	runs := make([]runSpan, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		// Pos returns inclusive rune indices.
		start, end := run.Pos()
		runs = append(runs, runSpan{
			start: start,
			end:   end + 1,
			rtl:   run.Direction() == bidi.RightToLeft,
		})
	}
	return runs
}

// runScript returns the script of the first non-space rune in the run,
// defaulting to Latin.
func runScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// userSize returns the font size in user space: the length of the em
// square's vertical axis under the font matrix.
func (sf *ScaledFont) userSize() float64 {
	v := sf.fontMatrix.TransformVector(vg.Point{X: 0, Y: 1})
	return math.Hypot(v.X, v.Y)
}

// ShapeText shapes a UTF-8 string into positioned glyphs starting at
// the device-space origin (x, y). It returns the glyphs together with
// a cluster mapping, one cluster per directional run. The mapping is
// coarse but complete: cluster byte counts sum to len(text) and glyph
// counts sum to the glyph total.
func (sf *ScaledFont) ShapeText(text string, x, y float64) ([]vg.Glyph, []vg.TextCluster, vg.ClusterFlags, error) {
	if text == "" {
		return nil, nil, 0, nil
	}

	runes := []rune(text)
	size := fixed.Int26_6(sf.userSize() * 64)
	face := sf.face()

	var (
		glyphs   []vg.Glyph
		clusters []vg.TextCluster
		flags    vg.ClusterFlags
		penX     float64
		penY     float64
	)

	runs := bidiRuns(text, len(runes))
	if len(runs) == 1 && runs[0].rtl {
		flags = vg.ClusterFlagBackward
	}

	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer shaperPool.Put(shaper)

	for _, run := range runs {
		dir := di.DirectionLTR
		if run.rtl {
			dir = di.DirectionRTL
		}

		output := shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: dir,
			Face:      face,
			Size:      size,
			Script:    runScript(runes[run.start:run.end]),
			Language:  language.NewLanguage("en"),
		})

		for _, g := range output.Glyphs {
			// Offsets adjust the pen position for this glyph only.
			// User space Y grows downward, font offsets upward.
			gx := penX + fixedToFloat(g.XOffset)
			gy := penY - fixedToFloat(g.YOffset)

			p := sf.ctm.TransformPoint(vg.Point{X: gx, Y: gy})
			glyphs = append(glyphs, vg.Glyph{
				Index: uint32(g.GlyphID),
				X:     p.X,
				Y:     p.Y,
			})

			penX += fixedToFloat(g.XAdvance)
			penY -= fixedToFloat(g.YAdvance)
		}

		clusters = append(clusters, vg.TextCluster{
			NumBytes:  len(string(runes[run.start:run.end])),
			NumGlyphs: len(output.Glyphs),
		})
	}

	// Anchor the whole string at the requested origin.
	for i := range glyphs {
		glyphs[i].X += x
		glyphs[i].Y += y
	}

	return glyphs, clusters, flags, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
