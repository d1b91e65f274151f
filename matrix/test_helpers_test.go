// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures for kernel tests.
//   • Keep all data finite and integer-valued so exact comparisons hold.

package matrix_test

import "github.com/katalvlaran/transformlab/matrix"

// seq returns the matrix with elements 1..16 in storage order (singular).
func seq() matrix.Mat4 {
	var m matrix.Mat4
	for i := range m {
		m[i] = float64(i + 1)
	}

	return m
}

// diag returns diag(x, y, z, 1).
func diag(x, y, z float64) matrix.Mat4 {
	m := matrix.Identity()
	m[0], m[5], m[10] = x, y, z

	return m
}
