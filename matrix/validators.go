// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for ingestion checks.
//  - Return sentinel errors wrapped with the validator tag so call sites can
//    match with errors.Is and still see where the check failed.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing on success.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateLen ensures the slice holds exactly n values.
//
// Returns ErrBadLength on mismatch (nil slices count as length 0).
// Complexity: O(1).
func ValidateLen(s []float64, n int) error {
	if len(s) != n {
		return validatorErrorf(fmt.Sprintf("ValidateLen(%d!=%d)", len(s), n), ErrBadLength)
	}

	return nil
}

// FirstNonFinite returns the index of the first NaN or ±Inf value, or -1.
// Complexity: O(len(s)).
func FirstNonFinite(s []float64) int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}

	return -1
}

// ValidateFinite ensures every value is finite (no NaN, no ±Inf).
//
// Returns ErrNaNInf tagged with the first offending index.
// Complexity: O(len(s)).
func ValidateFinite(s []float64) error {
	if i := FirstNonFinite(s); i >= 0 {
		return validatorErrorf(fmt.Sprintf("ValidateFinite[%d]", i), ErrNaNInf)
	}

	return nil
}

// ValidateElements – Composite: Len(16) → Finite.
//
// Errors: ErrBadLength, ErrNaNInf (in that priority).
// Complexity: O(16).
func ValidateElements(s []float64) error {
	if err := ValidateLen(s, Size); err != nil {
		return validatorErrorf("ValidateElements", err)
	}
	if err := ValidateFinite(s); err != nil {
		return validatorErrorf("ValidateElements", err)
	}

	return nil
}
