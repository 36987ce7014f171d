package vg

import "errors"

// Errors returned by surfaces, compositors and backends.
//
// Two of these are control-flow signals rather than true failures:
// ErrUnsupported tells the compositor chain (or the generic surface layer)
// to try the next candidate, and ErrNothingToDo reports a successful no-op
// (empty clip, degenerate stroke). The surface layer converts
// ErrNothingToDo to nil before it reaches the application.
var (
	// ErrUnsupported signals that a backend or compositor cannot perform
	// this exact operation and a more general fallback should be tried.
	ErrUnsupported = errors.New("vg: operation not supported")

	// ErrNothingToDo reports that an operation had no effect and was
	// skipped (empty clip, fully transparent source, degenerate stroke).
	ErrNothingToDo = errors.New("vg: nothing to do")

	// ErrSurfaceFinished is returned by every drawing operation on a
	// surface after Finish has been called.
	ErrSurfaceFinished = errors.New("vg: surface is finished")

	// ErrInvalidMatrix is returned when a transformation matrix cannot
	// be inverted.
	ErrInvalidMatrix = errors.New("vg: matrix is not invertible")

	// ErrInvalidSize is returned when a surface is created with
	// non-positive dimensions.
	ErrInvalidSize = errors.New("vg: invalid surface size")

	// ErrTypeMismatch is returned when a surface of one backend type is
	// passed where another backend type is required.
	ErrTypeMismatch = errors.New("vg: surface type mismatch")

	// ErrInvalidClusters is returned when text cluster mapping does not
	// cover the glyphs or bytes it claims to.
	ErrInvalidClusters = errors.New("vg: invalid text cluster mapping")

	// ErrNilPattern is returned when an operation that requires a
	// pattern receives none.
	ErrNilPattern = errors.New("vg: nil pattern")
)
