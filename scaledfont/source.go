package scaledfont

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/cache"
)

// ErrEmptyFontData is returned when a Source is created from no data.
var ErrEmptyFontData = errors.New("scaledfont: empty font data")

// colorProbeLimit caps the number of glyphs inspected when deciding
// whether a font carries color glyphs. Color fonts place bitmap or SVG
// glyphs well within this range.
const colorProbeLimit = 256

// Source is a parsed font file. One Source backs every ScaledFont
// derived from the same data; it is heavyweight and shared.
//
// Source is safe for concurrent use: the underlying parsed font is
// read-only, and faces are created per call.
type Source struct {
	key      uint64
	font     *font.Font
	upem     float64
	hasColor bool
}

// sources interns parsed fonts by data identity. The shard lock is
// held only to find or publish an entry; parsing happens outside it,
// so a racing caller may parse the same data twice and the first
// publish wins. Both results are identical, only the work is wasted.
var sources = cache.NewSharded[uint64, *Source](cache.MaxOpenFaces, cache.Uint64Hasher)

// NewSource parses font data (TTF or OTF) and returns the shared
// Source for it. The data slice is not retained.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	h := fnv.New64a()
	h.Write(data)
	key := h.Sum64()

	return sources.FindOrCreate(key, func() (*Source, error) {
		face, err := font.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("scaledfont: parse font: %w", err)
		}
		s := &Source{
			key:  key,
			font: face.Font,
			upem: float64(face.Upem()),
		}
		s.hasColor = probeColor(face)
		return s, nil
	})
}

// NewSourceFromFile loads and parses a font file.
func NewSourceFromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scaledfont: read font file: %w", err)
	}
	return NewSource(data)
}

// Font returns the parsed font tables. The returned value is read-only
// and safe for concurrent use; wrap it in font.NewFace for per-call
// glyph access.
func (s *Source) Font() *font.Font { return s.font }

// UnitsPerEm returns the design grid size of the font.
func (s *Source) UnitsPerEm() float64 { return s.upem }

// HasColorGlyphs reports whether any glyph in the font may resolve to
// a standalone color image.
func (s *Source) HasColorGlyphs() bool { return s.hasColor }

// Scaled returns the interned ScaledFont binding this source to the
// given font matrix and CTM.
func (s *Source) Scaled(fontMatrix, ctm vg.Matrix) (*ScaledFont, error) {
	return New(s, fontMatrix, ctm)
}

// probeColor inspects the first glyphs of a face for bitmap or SVG
// glyph data. Outline-only fonts return plain outlines for every
// glyph, so finding none within the probe window means no color.
func probeColor(face *font.Face) bool {
	for gid := 0; gid < colorProbeLimit; gid++ {
		switch face.GlyphData(font.GID(gid)).(type) {
		case font.GlyphBitmap, font.GlyphSVG:
			return true
		}
	}
	return false
}
