// Package vg is the core of a cross-platform 2D vector-graphics library.
//
// It accepts device-independent drawing commands (paths, fills, strokes,
// glyphs, images, gradients) and rasterizes them onto a variety of backend
// targets: in-memory bitmaps, GPU targets, tee fan-out surfaces, paginated
// output and observer wrappers.
//
// This root package holds the shared vocabulary: operators, the affine
// Matrix, Path, Pattern, StrokeStyle, Clip, glyphs and the error taxonomy.
// The machinery lives in the subpackages:
//
//   - surface: the drawing-target abstraction, the backend contract every
//     concrete target implements, and the Wrapper redirection adapter.
//   - compositor: the delegation chain that executes paint/mask/stroke/
//     fill/glyph operations against a surface.
//   - damage: dirty-region accumulation across composite operations.
//   - region: pixel regions (the reduction target for damage).
//   - recording, paginated, tee, observer: composite surface backends.
//   - backend/raster: the in-memory bitmap leaf backend.
//   - backend/gpu: a wgpu-based accelerated leaf backend.
//   - scaledfont: scaled-glyph lookup and caching over go-text/typesetting.
//
// Quick start:
//
//	s := surface.New(surface.BackendImage, vg.ContentColorAlpha, 800, 600)
//	defer s.Finish()
//
//	err := s.Paint(vg.OpOver, &vg.SolidPattern{C: vg.RGBA{R: 1, A: 1}}, nil)
package vg
