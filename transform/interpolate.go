package transform

import (
	"fmt"
	"math"

	"github.com/katalvlaran/transformlab/matrix"
)

// Interpolate blends m toward the identity: I·(1−factor) + m·factor.
// factor 1 returns m unchanged and factor 0 returns the identity exactly.
// The factor is not validated here; callers pass values in [0,1].
func Interpolate(m matrix.Mat4, factor float64) matrix.Mat4 {
	switch factor {
	case 1:
		return m
	case 0:
		return matrix.Identity()
	}

	return matrix.Lerp(matrix.Identity(), m, factor)
}

// ValidateFactor reports ErrOutOfRange unless 0 ≤ f ≤ 1. NaN is out of range.
func ValidateFactor(f float64) error {
	if !(f >= 0 && f <= 1) {
		return fmt.Errorf("factor %v: %w", f, ErrOutOfRange)
	}

	return nil
}

// ClampFactor clamps f into [0,1]. NaN cannot be clamped and is rejected
// with ErrOutOfRange.
func ClampFactor(f float64) (float64, error) {
	if math.IsNaN(f) {
		return 0, transformErrorf("ClampFactor", fmt.Errorf("factor NaN: %w", ErrOutOfRange))
	}

	return math.Min(1, math.Max(0, f)), nil
}
