package vg

// Op is a Porter-Duff compositing operator. It selects how source pixels
// are combined with the destination during a drawing operation.
type Op uint8

const (
	// OpClear clears the destination (within the mask/clip).
	OpClear Op = iota

	// OpSource replaces the destination with the source.
	OpSource

	// OpOver draws the source over the destination (the default).
	OpOver

	// OpIn keeps the source where the destination was opaque.
	OpIn

	// OpOut keeps the source where the destination was transparent.
	OpOut

	// OpAtop draws the source atop the destination's alpha.
	OpAtop

	// OpDest leaves the destination untouched.
	OpDest

	// OpDestOver draws the destination over the source.
	OpDestOver

	// OpDestIn keeps the destination where the source is opaque.
	OpDestIn

	// OpDestOut keeps the destination where the source is transparent.
	OpDestOut

	// OpDestAtop draws the destination atop the source's alpha.
	OpDestAtop

	// OpXor keeps source and destination where they do not overlap.
	OpXor

	// OpAdd adds source and destination, saturating per channel.
	OpAdd

	// OpSaturate is like OpAdd but bounded by the destination alpha.
	OpSaturate
)

var opNames = [...]string{
	OpClear:    "clear",
	OpSource:   "source",
	OpOver:     "over",
	OpIn:       "in",
	OpOut:      "out",
	OpAtop:     "atop",
	OpDest:     "dest",
	OpDestOver: "dest-over",
	OpDestIn:   "dest-in",
	OpDestOut:  "dest-out",
	OpDestAtop: "dest-atop",
	OpXor:      "xor",
	OpAdd:      "add",
	OpSaturate: "saturate",
}

// String returns the operator name.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// BoundedBySource reports whether the operator's effect is confined to the
// extents of the source: outside the source the destination is unchanged.
// Operators for which this is false (clear, source, in, out, dest-in,
// dest-atop) affect the whole clip even where no source pixels exist.
func (op Op) BoundedBySource() bool {
	switch op {
	case OpOver, OpAtop, OpDest, OpDestOver, OpDestOut, OpXor, OpAdd, OpSaturate:
		return true
	}
	return false
}

// BoundedByMask reports whether the operator's effect is confined to the
// extents of the mask (and, for the shape operations, to the extents of
// the path or glyphs being drawn). Clear and source are unbounded: they
// also reset the destination outside the mask, within the clip.
func (op Op) BoundedByMask() bool {
	switch op {
	case OpOver, OpAtop, OpDest, OpDestOver, OpDestOut, OpXor, OpAdd, OpSaturate:
		return true
	}
	return false
}
