// SPDX-License-Identifier: MIT
// Package: transform
//
// catalog.go - per-kind metadata and the dispatch table.
//
// Each Kind owns exactly one variant: its public Spec (arity, offset,
// defaults, labels, slider range) and its matrix constructor. The table is
// indexed by Kind, so dispatch is a bounds check plus one array load.

package transform

import (
	"fmt"

	"github.com/katalvlaran/transformlab/matrix"
)

// Range is the suggested editing range of a kind's parameters.
type Range struct {
	Min  float64 `json:"min" toml:"min"`
	Max  float64 `json:"max" toml:"max"`
	Step float64 `json:"step" toml:"step"`
}

// Spec describes one transform kind.
type Spec struct {
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Arity       int       `json:"arity"`
	Offset      float64   `json:"offset"`
	Labels      []string  `json:"labels"`
	Defaults    []float64 `json:"defaults"`
	Range       Range     `json:"range"`
}

// clone returns a Spec whose slices are not shared with the table.
func (s Spec) clone() Spec {
	s.Labels = append([]string(nil), s.Labels...)
	s.Defaults = append([]float64(nil), s.Defaults...)

	return s
}

// variant binds a Spec to its constructor. build receives validated
// parameters and a validated factor.
type variant struct {
	spec  Spec
	build func(p []float64, factor float64) (matrix.Mat4, error)
}

var variants = [...]variant{
	Scale: {
		spec: Spec{
			Kind:        Scale,
			Name:        "Scale",
			Description: "Scales along X, Y and Z; 0 keeps the original size.",
			Arity:       3,
			Offset:      1,
			Labels:      []string{"Scale X", "Scale Y", "Scale Z"},
			Defaults:    []float64{0, 0, 0},
			Range:       Range{Min: -4, Max: 4, Step: 0.1},
		},
		build: buildScale,
	},
	Rotate: {
		spec: Spec{
			Kind:        Rotate,
			Name:        "Rotate",
			Description: "Rotates about the world X, then Y, then Z axis (degrees).",
			Arity:       3,
			Labels:      []string{"Rotate X", "Rotate Y", "Rotate Z"},
			Defaults:    []float64{0, 0, 0},
			Range:       Range{Min: -180, Max: 180, Step: 1},
		},
		build: buildRotate,
	},
	Translate: {
		spec: Spec{
			Kind:        Translate,
			Name:        "Translate",
			Description: "Moves along X, Y and Z.",
			Arity:       3,
			Labels:      []string{"X", "Y", "Z"},
			Defaults:    []float64{0, 0, 0},
			Range:       Range{Min: -5, Max: 5, Step: 0.1},
		},
		build: buildTranslate,
	},
	Shear: {
		spec: Spec{
			Kind:        Shear,
			Name:        "Shear",
			Description: "Deforms the object by angling its faces.",
			Arity:       6,
			Labels:      []string{"XY", "XZ", "YX", "YZ", "ZX", "ZY"},
			Defaults:    []float64{0, 0, 0, 0, 0, 0},
			Range:       Range{Min: -5, Max: 5, Step: 0.1},
		},
		build: buildShear,
	},
	Custom: {
		spec: Spec{
			Kind:        Custom,
			Name:        "Custom",
			Description: "Arbitrary 4x4 matrix in row-major storage order.",
			Arity:       matrix.Size,
			Labels:      customLabels(),
			Defaults:    matrix.Identity().Slice(),
			Range:       Range{Min: -5, Max: 5, Step: 0.1},
		},
		build: buildCustom,
	},
}

// The table must cover every kind exactly; either conversion overflows uint
// at compile time when the lengths disagree.
const (
	_ = uint(len(variants) - int(kindCount))
	_ = uint(int(kindCount) - len(variants))
)

func customLabels() []string {
	labels := make([]string, 0, matrix.Size)
	for r := 0; r < matrix.Dim; r++ {
		for c := 0; c < matrix.Dim; c++ {
			labels = append(labels, fmt.Sprintf("m%d%d", r, c))
		}
	}

	return labels
}

// lookup returns the variant for k or ErrUnknownKind.
func lookup(k Kind) (*variant, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("kind %s: %w", k, ErrUnknownKind)
	}

	return &variants[k], nil
}

// Lookup returns a copy of the Spec for k.
func Lookup(k Kind) (Spec, error) {
	v, err := lookup(k)
	if err != nil {
		return Spec{}, transformErrorf("Lookup", err)
	}

	return v.spec.clone(), nil
}

// Catalog returns the Specs of all kinds in declaration order.
func Catalog() []Spec {
	out := make([]Spec, 0, kindCount-1)
	for _, k := range Kinds() {
		out = append(out, variants[k].spec.clone())
	}

	return out
}

// Arity returns the fixed parameter count of k, or 0 for an invalid kind.
func (k Kind) Arity() int {
	if !k.Valid() {
		return 0
	}

	return variants[k].spec.Arity
}

// Offset returns the additive offset of k's templated parameters.
func (k Kind) Offset() float64 {
	if !k.Valid() {
		return 0
	}

	return variants[k].spec.Offset
}

// Defaults returns a fresh copy of k's default parameters.
func (k Kind) Defaults() []float64 {
	if !k.Valid() {
		return nil
	}

	return append([]float64(nil), variants[k].spec.Defaults...)
}
