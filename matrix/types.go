// SPDX-License-Identifier: MIT

// Package matrix - Mat4 storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide an immutable value type with the explicit index formula r*4 + c.
//   - Keep conversions from untrusted slices behind the validators in validators.go.
//
// Complexity quicksheet:
//   - Identity/FromSlice/Slice: O(16); Row/Col: O(1).

package matrix

import "fmt"

// Shape constants (single source of truth).
const (
	// Dim is the number of rows (and columns) of a Mat4.
	Dim = 4

	// Size is the number of stored elements, Dim*Dim.
	Size = Dim * Dim
)

// ---------- error context tags ----------

const ctxFromSlice = "FromSlice" // ctor tag for FromSlice

// Mat4 is a 4×4 matrix of float64 values in row-major order.
//   - m[r*4+c] is the element at row r, column c.
//   - Points are row vectors: Apply computes p·M, so translation is stored in
//     elements 12, 13, 14 and the first matrix of a product acts first.
//
// Mat4 is a value: assignment copies all 16 elements, and no function in this
// package mutates its arguments.
type Mat4 [Size]float64

// Vec3 is a 3D point or direction used with Mat4.Apply.
type Vec3 [3]float64

// Compile-time assertion for fmt.Stringer conformance.
var _ fmt.Stringer = Mat4{}

// Identity returns the 4×4 identity matrix.
// Complexity: O(1).
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromSlice converts a raw element slice into a Mat4.
//
// Implementation:
//   - Stage 1: ValidateElements(s) (length == 16, all values finite).
//   - Stage 2: copy into a fresh Mat4 in the given (row-major) order.
//
// Inputs:
//   - s: 16 values in storage order; s is not retained.
//
// Returns:
//   - Mat4: the converted value.
//
// Errors:
//   - ErrBadLength (len(s) != 16), ErrNaNInf (any non-finite value).
//
// Complexity:
//   - Time O(16), Space O(1).
func FromSlice(s []float64) (Mat4, error) {
	if err := ValidateElements(s); err != nil {
		return Mat4{}, fmt.Errorf("%s: %w", ctxFromSlice, err)
	}
	var m Mat4
	copy(m[:], s)

	return m, nil
}

// Slice returns the 16 elements in storage order as a fresh slice.
// Complexity: O(16).
func (m Mat4) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, m[:])

	return out
}

// Row returns row r (0..3). Panics on an invalid index (programmer error).
func (m Mat4) Row(r int) [Dim]float64 {
	return [Dim]float64{m[r*Dim], m[r*Dim+1], m[r*Dim+2], m[r*Dim+3]}
}

// Col returns column c (0..3). Panics on an invalid index (programmer error).
func (m Mat4) Col(c int) [Dim]float64 {
	return [Dim]float64{m[c], m[Dim+c], m[2*Dim+c], m[3*Dim+c]}
}
