// SPDX-License-Identifier: MIT
// Package: transform
//
// builder.go - per-kind matrix construction.
//
// Build validates its inputs and dispatches through the variant table. The
// exported primitives (ScaleMatrix, RotationMatrix, ...) take already
// effective values and never fail; they exist so callers and tests can build
// the same matrices without a descriptor.

package transform

import (
	"fmt"
	"math"

	"github.com/katalvlaran/transformlab/matrix"
)

// Build constructs the 4×4 matrix of one descriptor.
//
// Implementation:
//   - Stage 1: Resolve the variant for kind (ErrUnknownKind).
//   - Stage 2: Validate factor ∈ [0,1] (ErrOutOfRange), len(params) == arity
//     (ErrInvalidArity) and that every parameter is finite (ErrNonFinite).
//   - Stage 3: Templated kinds map every parameter to v·factor + offset and
//     build the primitive; custom builds from storage order then Interpolate.
//
// Behavior highlights:
//   - factor == 0 yields the identity for every kind.
//   - factor == 1 yields the unscaled matrix of the given parameters.
//   - params is never retained or modified.
//
// Inputs:
//   - kind: member of the enumeration.
//   - params: exactly kind.Arity() finite values.
//   - factor: influence in [0,1].
//
// Returns:
//   - matrix.Mat4: the descriptor's matrix.
//   - error: wrapped sentinel on invalid input.
//
// Complexity:
//   - Time O(1), Space O(1).
func Build(kind Kind, params []float64, factor float64) (matrix.Mat4, error) {
	method := fmt.Sprintf("Build(%s)", kind)
	v, err := lookup(kind)
	if err != nil {
		return matrix.Mat4{}, transformErrorf(method, err)
	}
	if err = ValidateFactor(factor); err != nil {
		return matrix.Mat4{}, transformErrorf(method, err)
	}
	if err = validateParams(v.spec, params); err != nil {
		return matrix.Mat4{}, transformErrorf(method, err)
	}

	m, err := v.build(params, factor)
	if err != nil {
		return matrix.Mat4{}, transformErrorf(method, err)
	}

	return m, nil
}

// validateParams checks arity then finiteness. The matrix validator's error
// stays in the chain next to the transform sentinel.
func validateParams(s Spec, params []float64) error {
	if err := matrix.ValidateLen(params, s.Arity); err != nil {
		return fmt.Errorf("got %d parameters, want %d: %w (%w)", len(params), s.Arity, ErrInvalidArity, err)
	}
	if err := matrix.ValidateFinite(params); err != nil {
		i := matrix.FirstNonFinite(params)
		return fmt.Errorf("parameter %d (%s) = %v: %w (%w)", i, s.Labels[i], params[i], ErrNonFinite, err)
	}

	return nil
}

// effective maps v to v·factor + offset.
func effective(v, factor, offset float64) float64 {
	return v*factor + offset
}

func buildScale(p []float64, f float64) (matrix.Mat4, error) {
	return ScaleMatrix(effective(p[0], f, 1), effective(p[1], f, 1), effective(p[2], f, 1)), nil
}

func buildRotate(p []float64, f float64) (matrix.Mat4, error) {
	return RotationMatrix(p[0]*f, p[1]*f, p[2]*f), nil
}

func buildTranslate(p []float64, f float64) (matrix.Mat4, error) {
	return TranslationMatrix(p[0]*f, p[1]*f, p[2]*f), nil
}

func buildShear(p []float64, f float64) (matrix.Mat4, error) {
	return ShearMatrix(p[0]*f, p[1]*f, p[2]*f, p[3]*f, p[4]*f, p[5]*f), nil
}

func buildCustom(p []float64, f float64) (matrix.Mat4, error) {
	m, err := matrix.FromSlice(p)
	if err != nil {
		return matrix.Mat4{}, err
	}

	return Interpolate(m, f), nil
}

// ScaleMatrix returns diag(sx, sy, sz, 1).
func ScaleMatrix(sx, sy, sz float64) matrix.Mat4 {
	return matrix.Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	}
}

// TranslationMatrix returns the identity with (tx, ty, tz) in the last row.
func TranslationMatrix(tx, ty, tz float64) matrix.Mat4 {
	return matrix.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		tx, ty, tz, 1,
	}
}

// ShearMatrix places each coefficient so that "ab" displaces axis a by ab·b:
// x' = x + xy·y + xz·z, y' = y + yx·x + yz·z, z' = z + zx·x + zy·y.
func ShearMatrix(xy, xz, yx, yz, zx, zy float64) matrix.Mat4 {
	return matrix.Mat4{
		1, yx, zx, 0,
		xy, 1, zy, 0,
		xz, yz, 1, 0,
		0, 0, 0, 1,
	}
}

// RotationMatrix returns Rx·Ry·Rz for angles in degrees: X is applied first.
func RotationMatrix(ax, ay, az float64) matrix.Mat4 {
	return matrix.MulChain(RotationX(ax), RotationY(ay), RotationZ(az))
}

// sincosDeg returns exact values at multiples of a right angle, so a quarter
// turn does not leave 6e-17 residue in the matrix.
func sincosDeg(deg float64) (s, c float64) {
	if math.Mod(deg, 90) == 0 {
		switch (int64(math.Mod(deg/90, 4)) + 4) % 4 {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		default:
			return -1, 0
		}
	}

	return math.Sincos(deg * math.Pi / 180)
}

// RotationX rotates counterclockwise about +X by deg degrees.
func RotationX(deg float64) matrix.Mat4 {
	s, c := sincosDeg(deg)

	return matrix.Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY rotates counterclockwise about +Y by deg degrees.
func RotationY(deg float64) matrix.Mat4 {
	s, c := sincosDeg(deg)

	return matrix.Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotationZ rotates counterclockwise about +Z by deg degrees.
func RotationZ(deg float64) matrix.Mat4 {
	s, c := sincosDeg(deg)

	return matrix.Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
