// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vg

import "testing"

func TestCopyGlyphsIndependent(t *testing.T) {
	src := []Glyph{
		{Index: 1, X: 10, Y: 20},
		{Index: 2, X: 30, Y: 20},
	}
	cp := CopyGlyphs(src)
	if len(cp) != len(src) {
		t.Fatalf("len = %d, want %d", len(cp), len(src))
	}
	cp[0].X = 99
	if src[0].X != 10 {
		t.Fatalf("mutation of copy leaked into source: X = %v", src[0].X)
	}
	src[1].Index = 77
	if cp[1].Index != 2 {
		t.Fatalf("mutation of source leaked into copy: Index = %d", cp[1].Index)
	}
}

func TestCopyGlyphsEmpty(t *testing.T) {
	if got := CopyGlyphs(nil); got != nil {
		t.Fatalf("CopyGlyphs(nil) = %v, want nil", got)
	}
	if got := CopyGlyphs([]Glyph{}); got != nil {
		t.Fatalf("CopyGlyphs(empty) = %v, want nil", got)
	}
}

func TestContentChannels(t *testing.T) {
	cases := []struct {
		content Content
		color   bool
		alpha   bool
		name    string
	}{
		{ContentColorAlpha, true, true, "color-alpha"},
		{ContentColor, true, false, "color"},
		{ContentAlpha, false, true, "alpha"},
	}
	for _, c := range cases {
		if c.content.HasColor() != c.color {
			t.Errorf("%v.HasColor() = %v, want %v", c.content, c.content.HasColor(), c.color)
		}
		if c.content.HasAlpha() != c.alpha {
			t.Errorf("%v.HasAlpha() = %v, want %v", c.content, c.content.HasAlpha(), c.alpha)
		}
		if c.content.String() != c.name {
			t.Errorf("%v.String() = %q, want %q", c.content, c.content.String(), c.name)
		}
	}
	if Content(42).String() != "unknown" {
		t.Errorf("out-of-range Content.String() = %q", Content(42).String())
	}
}
