// SPDX-License-Identifier: MIT
// Package: transform
//
// descriptor.go - the Descriptor value type.

package transform

import (
	"fmt"

	"github.com/katalvlaran/transformlab/matrix"
)

// Descriptor is one entry of a composition: an identified, parameterized
// transform with its own influence factor.
//
// Parameters holds exactly Kind.Arity() finite values; Factor lies in [0,1].
// Name is a free-form display label and does not affect the matrix.
type Descriptor struct {
	// ID is unique within its collection and never empty.
	ID string `json:"id"`

	// Name is the display label.
	Name string `json:"name"`

	// Kind selects the matrix constructor.
	Kind Kind `json:"kind"`

	// Parameters are the kind-specific values (see Spec.Labels).
	Parameters []float64 `json:"parameters"`

	// Factor is the influence of this descriptor, 0 = none, 1 = full.
	Factor float64 `json:"factor"`
}

// NewDescriptor returns a descriptor of kind with its default parameters,
// factor 1 and the kind's display name.
func NewDescriptor(id string, kind Kind) (Descriptor, error) {
	v, err := lookup(kind)
	if err != nil {
		return Descriptor{}, transformErrorf("NewDescriptor", err)
	}
	if id == "" {
		return Descriptor{}, transformErrorf("NewDescriptor", ErrEmptyID)
	}

	return Descriptor{
		ID:         id,
		Name:       v.spec.Name,
		Kind:       kind,
		Parameters: append([]float64(nil), v.spec.Defaults...),
		Factor:     1,
	}, nil
}

// Validate checks the descriptor invariants: non-empty id, known kind,
// matching arity, finite parameters and factor in [0,1].
func (d Descriptor) Validate() error {
	method := fmt.Sprintf("Descriptor(%q).Validate", d.ID)
	if d.ID == "" {
		return transformErrorf(method, ErrEmptyID)
	}
	v, err := lookup(d.Kind)
	if err != nil {
		return transformErrorf(method, err)
	}
	if err = validateParams(v.spec, d.Parameters); err != nil {
		return transformErrorf(method, err)
	}
	if err = ValidateFactor(d.Factor); err != nil {
		return transformErrorf(method, err)
	}

	return nil
}

// Clone returns a deep copy; the Parameters slice is not shared.
func (d Descriptor) Clone() Descriptor {
	d.Parameters = append([]float64(nil), d.Parameters...)

	return d
}

// Matrix builds the descriptor's own matrix with its factor applied.
func (d Descriptor) Matrix() (matrix.Mat4, error) {
	return Build(d.Kind, d.Parameters, d.Factor)
}
