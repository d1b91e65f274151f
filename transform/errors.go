// SPDX-License-Identifier: MIT
// Package: transform
//
// errors.go - sentinel errors for the transform package.
//
// Error policy:
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach context with transformErrorf (uses %w).
//   • Validation never panics; Compose panics only when handed data that
//     already violates these invariants (programmer error upstream).

package transform

import (
	"errors"
	"fmt"
)

// ErrInvalidArity indicates that the parameter count does not match the
// kind's fixed arity (scale/rotate/translate=3, shear=6, custom=16).
var ErrInvalidArity = errors.New("transform: parameter count does not match kind")

// ErrOutOfRange indicates a factor outside the closed interval [0,1]
// (NaN included).
var ErrOutOfRange = errors.New("transform: factor out of range [0,1]")

// ErrNonFinite indicates a NaN or ±Inf parameter value.
var ErrNonFinite = errors.New("transform: parameter is NaN or Inf")

// ErrUnknownKind indicates a kind outside the closed enumeration.
var ErrUnknownKind = errors.New("transform: unknown kind")

// ErrEmptyID indicates a descriptor without an identifier.
var ErrEmptyID = errors.New("transform: empty descriptor id")

// ErrDuplicateID indicates two descriptors sharing one id in a collection.
var ErrDuplicateID = errors.New("transform: duplicate descriptor id")

// transformErrorf wraps err with a method context of the form "<method>: <err>".
func transformErrorf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}
