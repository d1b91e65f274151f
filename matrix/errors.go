// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. Constructors and validators MUST return these sentinels (optionally
// wrapped with %w) and tests MUST check them via errors.Is. Kernels on Mat4
// are total and never return errors.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Context is attached at the call site with
// fmt.Errorf("ctx: %w", ErrX); callers still match with errors.Is.
//
// ERROR PRIORITY (documented, enforced in tests):
// length -> NaN/Inf.

var (
	// ErrBadLength is returned when a raw element slice does not hold the
	// expected number of values (Size for FromSlice).
	ErrBadLength = errors.New("matrix: wrong element count")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy (ingestion from user data).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)
