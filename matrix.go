package vg

import (
	"image"
	"math"
)

// Matrix represents a 2D affine transformation.
// It uses a 2x3 matrix in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// representing the transformation:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply multiplies two matrices (m * other), applying other first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y,
		Y: m.D*p.X + m.E*p.Y,
	}
}

// Determinant returns the determinant of the linear part of the matrix.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse matrix.
// Returns ErrInvalidMatrix if the matrix is singular.
func (m Matrix) Invert() (Matrix, error) {
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return Identity(), ErrInvalidMatrix
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, nil
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsTranslation returns true if the matrix is only a translation.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// IsIntegerTranslation returns true if the matrix translates by a whole
// number of pixels (and does nothing else). Such transforms preserve
// pixel-exact rendering and allow fast-path blits.
func (m Matrix) IsIntegerTranslation() bool {
	return m.IsTranslation() &&
		m.C == math.Trunc(m.C) && m.F == math.Trunc(m.F)
}

// TransformRect returns the device-space bounding box of the rectangle r
// under the transformation. The result is rounded outward so that every
// pixel touched by the transformed rectangle is covered.
func (m Matrix) TransformRect(r image.Rectangle) image.Rectangle {
	if m.IsIdentity() {
		return r
	}
	corners := [4]Point{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
	}
	p := m.TransformPoint(corners[0])
	x0, y0, x1, y1 := p.X, p.Y, p.X, p.Y
	for _, c := range corners[1:] {
		p = m.TransformPoint(c)
		x0 = math.Min(x0, p.X)
		y0 = math.Min(y0, p.Y)
		x1 = math.Max(x1, p.X)
		y1 = math.Max(y1, p.Y)
	}
	return RectFromExtents(x0, y0, x1, y1)
}
