package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/transformlab/matrix"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	id := matrix.Identity()
	for r := 0; r < matrix.Dim; r++ {
		for c := 0; c < matrix.Dim; c++ {
			v := id.Row(r)[c]
			if r == c {
				require.Equal(t, 1.0, v)
			} else {
				require.Equal(t, 0.0, v)
			}
		}
	}
	require.True(t, id.IsIdentity())
}

func TestMul_Identity(t *testing.T) {
	m := seq()
	require.Equal(t, m, matrix.Mul(matrix.Identity(), m))
	require.Equal(t, m, matrix.Mul(m, matrix.Identity()))
}

func TestMul_Known(t *testing.T) {
	// seq × seqᵀ, hand-checked first row: [1,2,3,4]·rows of seq
	a := seq()
	b := matrix.Transpose(a)
	p := matrix.Mul(a, b)
	require.Equal(t, 30.0, p[0])  // 1+4+9+16
	require.Equal(t, 70.0, p[1])  // 5+12+21+32
	require.Equal(t, 110.0, p[2]) // 9+20+33+48
	require.Equal(t, 150.0, p[3]) // 13+28+45+64
	// A×Aᵀ is symmetric
	require.Equal(t, p, matrix.Transpose(p))
}

func TestMul_NonCommutative(t *testing.T) {
	s := diag(2, 2, 2)
	tr := matrix.Identity()
	tr[12] = 1
	require.NotEqual(t, matrix.Mul(s, tr), matrix.Mul(tr, s))
}

func TestMulChain(t *testing.T) {
	require.Equal(t, matrix.Identity(), matrix.MulChain())
	a, b, c := diag(2, 1, 1), diag(1, 3, 1), diag(1, 1, 4)
	require.Equal(t, matrix.Mul(matrix.Mul(a, b), c), matrix.MulChain(a, b, c))
}

func TestTranspose_Involution(t *testing.T) {
	m := seq()
	mt := matrix.Transpose(m)
	require.Equal(t, 2.0, mt[4])
	require.Equal(t, 5.0, mt[1])
	require.Equal(t, m, matrix.Transpose(mt))
}

func TestLerp_Endpoints(t *testing.T) {
	a, b := matrix.Identity(), seq()
	require.Equal(t, a, matrix.Lerp(a, b, 0))
	require.Equal(t, b, matrix.Lerp(a, b, 1))
	half := matrix.Lerp(a, b, 0.5)
	require.Equal(t, 1.0, half[0]) // (1+1)/2
	require.Equal(t, 1.0, half[1]) // (0+2)/2
}

func TestDeterminant_Table(t *testing.T) {
	tests := []struct {
		name string
		m    matrix.Mat4
		want float64
	}{
		{"identity", matrix.Identity(), 1},
		{"scale 2,3,4", diag(2, 3, 4), 24},
		{"zero", matrix.Mat4{}, 0},
		{"singular seq", seq(), 0},
		{"row swap", matrix.Mat4{
			0, 1, 0, 0,
			1, 0, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}, -1},
		{"upper triangular", matrix.Mat4{
			2, 7, 1, 8,
			0, 3, 5, 9,
			0, 0, 4, 6,
			0, 0, 0, 5,
		}, 120},
		{"dense integer", matrix.Mat4{
			3, 2, 0, 1,
			4, 0, 1, 2,
			3, 0, 2, 1,
			9, 2, 3, 1,
		}, 24},
		{"translation", matrix.Mat4{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			7, -3, 2, 1,
		}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, matrix.Determinant(tc.m))
		})
	}
}

func TestDeterminant_Multiplicative(t *testing.T) {
	a := matrix.Mat4{
		3, 2, 0, 1,
		4, 0, 1, 2,
		3, 0, 2, 1,
		9, 2, 3, 1,
	}
	b := diag(2, 3, 4)
	require.Equal(t, matrix.Determinant(a)*matrix.Determinant(b), matrix.Determinant(matrix.Mul(a, b)))
	require.Equal(t, matrix.Determinant(a), matrix.Determinant(matrix.Transpose(a)))
}

func TestApply_RowVectorConvention(t *testing.T) {
	tr := matrix.Identity()
	tr[12], tr[13], tr[14] = 1, 2, 3
	require.Equal(t, matrix.Vec3{1, 2, 3}, tr.Apply(matrix.Vec3{}))

	// scale first, then translate: p·S·T
	st := matrix.Mul(diag(2, 2, 2), tr)
	require.Equal(t, matrix.Vec3{3, 4, 5}, st.Apply(matrix.Vec3{1, 1, 1}))
	// translate first, then scale: p·T·S
	ts := matrix.Mul(tr, diag(2, 2, 2))
	require.Equal(t, matrix.Vec3{4, 6, 8}, ts.Apply(matrix.Vec3{1, 1, 1}))
}

func TestApply_HomogeneousDivide(t *testing.T) {
	m := matrix.Identity()
	m[15] = 2
	require.Equal(t, matrix.Vec3{0.5, 1, 1.5}, m.Apply(matrix.Vec3{1, 2, 3}))
}

func TestDeterminant_LargeValuesFinite(t *testing.T) {
	d := matrix.Determinant(diag(1e80, 1e80, 1e80))
	require.False(t, math.IsNaN(d))
	require.InEpsilon(t, 1e240, d, 1e-12)
}

func TestApplyAll(t *testing.T) {
	tr := matrix.Identity()
	tr[12] = 1
	ps := []matrix.Vec3{{0, 0, 0}, {1, 1, 1}}
	got := tr.ApplyAll(ps)
	require.Equal(t, []matrix.Vec3{{1, 0, 0}, {2, 1, 1}}, got)
	require.Equal(t, matrix.Vec3{0, 0, 0}, ps[0], "input not modified")
	require.Empty(t, tr.ApplyAll(nil))
}

func TestTranspose_ColumnVectorForm(t *testing.T) {
	// p·M as a row vector equals Mᵀ·p as a column vector.
	m := matrix.Mul(diag(2, 3, 4), matrix.Identity())
	m[12], m[13], m[14] = 1, 2, 3
	mt := matrix.Transpose(m)
	p := [4]float64{1, 1, 1, 1}
	var col [4]float64
	for r := 0; r < matrix.Dim; r++ {
		row := mt.Row(r)
		col[r] = row[0]*p[0] + row[1]*p[1] + row[2]*p[2] + row[3]*p[3]
	}
	require.Equal(t, matrix.Vec3{col[0], col[1], col[2]}, m.Apply(matrix.Vec3{1, 1, 1}))
}
