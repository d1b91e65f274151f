// SPDX-License-Identifier: MIT
// Package matrix provides the linear-algebra kernels on Mat4: multiplication,
// transpose, linear interpolation, determinant and point application.
//
// Purpose:
//   - Declare the canonical kernels used by the transform composition engine.
//   - Keep every kernel total: Mat4 has a fixed shape, so no shape errors exist.
//
// Notes:
//   - Loop orders are fixed (r → c → k) so results are bit-for-bit reproducible.
//   - No kernel mutates its operands; arguments are passed by value.

package matrix

// ZeroSum is the initial accumulator value for dot products.
const ZeroSum = 0.0

// Mul performs standard matrix multiplication C = A × B.
//
// Implementation:
//   - Stage 1: for each (r, c), accumulate Σ_k A[r,k]·B[k,c] in fixed k order.
//   - Stage 2: store into a fresh Mat4.
//
// Behavior highlights:
//   - Non-commutative: Mul(a, b) != Mul(b, a) in general.
//   - Under the row-vector convention, p·(A×B) = (p·A)·B, so A acts first.
//
// Inputs:
//   - a, b: operands (copied by value).
//
// Returns:
//   - Mat4: the product.
//
// Determinism:
//   - Fixed loop order r=0..3, c=0..3, k=0..3.
//
// Complexity:
//   - Time O(64) multiply-adds, Space O(1).
func Mul(a, b Mat4) Mat4 {
	var (
		out     Mat4
		r, c, k int
		sum     float64
	)
	for r = 0; r < Dim; r++ {
		for c = 0; c < Dim; c++ {
			sum = ZeroSum
			for k = 0; k < Dim; k++ {
				sum += a[r*Dim+k] * b[k*Dim+c]
			}
			out[r*Dim+c] = sum
		}
	}

	return out
}

// MulChain multiplies the given matrices left to right: ms[0] × ms[1] × ...
// An empty chain yields the identity.
// Complexity: O(64·len(ms)).
func MulChain(ms ...Mat4) Mat4 {
	acc := Identity()
	for _, m := range ms {
		acc = Mul(acc, m)
	}

	return acc
}

// Transpose returns mᵀ (rows and columns swapped).
// Complexity: O(16).
func Transpose(m Mat4) Mat4 {
	var out Mat4
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			out[c*Dim+r] = m[r*Dim+c]
		}
	}

	return out
}

// Lerp blends a toward b element-wise: out[i] = a[i]*(1-t) + b[i]*t.
//
// Behavior highlights:
//   - t is not range-checked; callers that need t ∈ [0,1] validate upstream.
//   - Lerp(a, b, 0) == a and Lerp(a, b, 1) == b exactly (0·x and 1·x are exact).
//
// Complexity:
//   - Time O(16), Space O(1).
func Lerp(a, b Mat4, t float64) Mat4 {
	var out Mat4
	s := 1 - t
	for i := 0; i < Size; i++ {
		out[i] = a[i]*s + b[i]*t
	}

	return out
}

// Determinant computes det(m) by cofactor expansion along the first row.
//
// Implementation:
//   - Stage 1: compute the six 2×2 minors of rows 2..3 (c01..c23).
//   - Stage 2: build the four 3×3 minors of rows 1..3 by expanding along row 1
//     with those 2×2 minors.
//   - Stage 3: det = a00·M00 − a01·M01 + a02·M02 − a03·M03.
//
// Behavior highlights:
//   - Closed form: exactly the 24-term Leibniz sum regrouped, no pivoting, no
//     division. Exact for integer-valued inputs within float64's integer range.
//
// Complexity:
//   - Time O(1) (40 multiplications), Space O(1).
//
// Notes:
//   - Large magnitudes lose precision per ordinary float64 rules; this is
//     expected and not corrected.
func Determinant(m Mat4) float64 {
	// Stage 1: 2×2 minors of rows 2 and 3, named by column pair.
	c01 := m[8]*m[13] - m[9]*m[12]
	c02 := m[8]*m[14] - m[10]*m[12]
	c03 := m[8]*m[15] - m[11]*m[12]
	c12 := m[9]*m[14] - m[10]*m[13]
	c13 := m[9]*m[15] - m[11]*m[13]
	c23 := m[10]*m[15] - m[11]*m[14]

	// Stage 2: 3×3 minors of rows 1..3, removing column j of row 0.
	m00 := m[5]*c23 - m[6]*c13 + m[7]*c12
	m01 := m[4]*c23 - m[6]*c03 + m[7]*c02
	m02 := m[4]*c13 - m[5]*c03 + m[7]*c01
	m03 := m[4]*c12 - m[5]*c02 + m[6]*c01

	// Stage 3: first-row cofactor expansion.
	return m[0]*m00 - m[1]*m01 + m[2]*m02 - m[3]*m03
}

// Apply maps the point p (row vector, w=1) through m: p' = p·M.
// A homogeneous divide is performed when the resulting w is neither 0 nor 1.
// Complexity: O(16).
func (m Mat4) Apply(p Vec3) Vec3 {
	var out [Dim]float64
	for c := 0; c < Dim; c++ {
		col := m.Col(c)
		out[c] = p[0]*col[0] + p[1]*col[1] + p[2]*col[2] + col[3]
	}
	if w := out[3]; w != 0 && w != 1 {
		return Vec3{out[0] / w, out[1] / w, out[2] / w}
	}

	return Vec3{out[0], out[1], out[2]}
}

// ApplyAll maps every point through m.
// Complexity: O(16·len(ps)).
func (m Mat4) ApplyAll(ps []Vec3) []Vec3 {
	out := make([]Vec3, len(ps))
	for i, p := range ps {
		out[i] = m.Apply(p)
	}

	return out
}
