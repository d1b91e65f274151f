// SPDX-License-Identifier: MIT
// Package matrix: comparison and formatting helpers on Mat4.

package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultEpsilon is the absolute tolerance used by IsIdentity and by callers
// comparing results of trigonometric construction.
const DefaultEpsilon = 1e-9

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// AllClose reports whether |a[i]-b[i]| <= eps for all i.
//
// Behavior highlights:
//   - eps is taken as |eps|; NaN eps or NaN elements make the result false.
//
// Complexity:
//   - Time O(16), Space O(1).
func AllClose(a, b Mat4, eps float64) bool {
	eps = math.Abs(eps)
	for i := 0; i < Size; i++ {
		if !(math.Abs(a[i]-b[i]) <= eps) {
			return false
		}
	}

	return true
}

// IsIdentity reports whether m is the identity within DefaultEpsilon.
func (m Mat4) IsIdentity() bool {
	return AllClose(m, Identity(), DefaultEpsilon)
}

// String implements fmt.Stringer: one bracketed row per line.
func (m Mat4) String() string {
	var sb strings.Builder
	for r := 0; r < Dim; r++ {
		sb.WriteString(_fmtRowOpen)
		for c := 0; c < Dim; c++ {
			sb.WriteString(fmt.Sprintf("%g", m[r*Dim+c]))
			if c < Dim-1 {
				sb.WriteString(_fmtSep)
			}
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}

// FormatRows renders every element with a fixed number of decimals, one
// string slice per row. Negative zero is printed as zero so that tables stay
// aligned and readable.
func (m Mat4) FormatRows(prec int) [Dim][Dim]string {
	var out [Dim][Dim]string
	for r := 0; r < Dim; r++ {
		for c, v := range m.Row(r) {
			if v == 0 {
				v = 0 // drops the sign of -0
			}
			out[r][c] = strconv.FormatFloat(v, 'f', prec, 64)
		}
	}

	return out
}
