// SPDX-License-Identifier: MIT
// Package: transform
//
// compose.go - ordered composition of a collection.

package transform

import (
	"fmt"

	"github.com/katalvlaran/transformlab/matrix"
)

// Collection is an ordered list of descriptors plus the global factor.
// Order matters: Transforms[0] is applied to points first.
type Collection struct {
	Transforms   []Descriptor `json:"transforms"`
	GlobalFactor float64      `json:"globalFactor"`
}

// Result is the derived view of a Collection.
type Result struct {
	Combined    matrix.Mat4 `json:"combined"`
	Determinant float64     `json:"determinant"`
}

// Validate checks every descriptor, id uniqueness and the global factor.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c.Transforms))
	for i, d := range c.Transforms {
		if err := d.Validate(); err != nil {
			return transformErrorf(fmt.Sprintf("Collection.Validate[%d]", i), err)
		}
		if _, dup := seen[d.ID]; dup {
			return transformErrorf("Collection.Validate", fmt.Errorf("id %q: %w", d.ID, ErrDuplicateID))
		}
		seen[d.ID] = struct{}{}
	}
	if err := ValidateFactor(c.GlobalFactor); err != nil {
		return transformErrorf("Collection.Validate(globalFactor)", err)
	}

	return nil
}

// Clone returns a deep copy of c.
func (c Collection) Clone() Collection {
	out := Collection{GlobalFactor: c.GlobalFactor}
	if c.Transforms != nil {
		out.Transforms = make([]Descriptor, len(c.Transforms))
		for i, d := range c.Transforms {
			out.Transforms[i] = d.Clone()
		}
	}

	return out
}

// ComposeChecked folds the collection into one matrix and its determinant.
//
// Implementation:
//   - Stage 1: Validate the collection (descriptors, unique ids, global factor).
//   - Stage 2: acc := I; for each descriptor in order, acc = acc × Build(d).
//   - Stage 3: combined := Interpolate(acc, GlobalFactor).
//   - Stage 4: determinant := matrix.Determinant(combined).
//
// Behavior highlights:
//   - An empty collection yields the identity and determinant 1.
//   - GlobalFactor 0 yields the identity regardless of descriptors.
//   - Pure: the same collection always yields bit-identical output.
//
// Complexity:
//   - Time O(n) 4×4 products for n descriptors, Space O(1) beyond validation.
func ComposeChecked(c Collection) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, transformErrorf("Compose", err)
	}

	acc := matrix.Identity()
	for _, d := range c.Transforms {
		m, err := variants[d.Kind].build(d.Parameters, d.Factor)
		if err != nil {
			return Result{}, transformErrorf(fmt.Sprintf("Compose(%s)", d.ID), err)
		}
		acc = matrix.Mul(acc, m)
	}
	combined := Interpolate(acc, c.GlobalFactor)

	return Result{Combined: combined, Determinant: matrix.Determinant(combined)}, nil
}

// Compose is ComposeChecked for collections already known to be valid, such
// as store snapshots. It panics on invalid input.
func Compose(c Collection) Result {
	res, err := ComposeChecked(c)
	if err != nil {
		panic(err)
	}

	return res
}
