// Package scaledfont binds font faces to a font matrix and CTM and
// exposes glyph metrics, glyph paths, text shaping, and color glyph
// resolution on top of go-text/typesetting.
//
// A Source is the heavyweight object: parsed font tables shared by
// every scaled font derived from the same data. Sources live in a
// process-wide sharded LRU map bounded by cache.MaxOpenFaces, so
// loading the same font file twice parses it once. ScaledFont values
// are cheap and interned per (source, font matrix, CTM) triple.
package scaledfont
