// Package matrix provides the fixed-size 4×4 matrix value used by the
// transform composition engine.
//
// The matrix package provides:
//
//   - Mat4, a [16]float64 value type in row-major storage (offset = r*4 + c).
//   - Identity, Mul, Transpose, Lerp and Determinant kernels.
//   - Row-vector point application (Apply): a point p maps to p·M, so the
//     translation part of an affine matrix lives in row 3 (elements 12..14).
//   - Validators for raw element slices (length, finiteness) used when
//     user-supplied data is converted into a Mat4.
//
// Every operation returns a new Mat4; no kernel mutates its operands. All
// kernels are total and deterministic: fixed loop orders, no allocation beyond
// the returned value.
//
// Numeric policy: plain float64 arithmetic. Determinant is exact for
// integer-valued matrices whose intermediate products stay below 2^53; very
// large scale or shear values lose precision by ordinary floating-point rules.
//
// See the examples in this package and transform for usage patterns.
package matrix
