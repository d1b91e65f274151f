package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/transformlab/matrix"
	"github.com/stretchr/testify/require"
)

func TestAllClose(t *testing.T) {
	a := matrix.Identity()
	b := a
	b[5] += 1e-12
	require.NotEqual(t, a, b)
	require.True(t, matrix.AllClose(a, b, 1e-9))
	require.True(t, matrix.AllClose(a, b, -1e-9)) // |eps|
	require.False(t, matrix.AllClose(a, b, 0))

	b[0] = math.NaN()
	require.False(t, matrix.AllClose(a, b, 1))
}

func TestRowCol(t *testing.T) {
	m := seq()
	require.Equal(t, [4]float64{5, 6, 7, 8}, m.Row(1))
	require.Equal(t, [4]float64{2, 6, 10, 14}, m.Col(1))
}

func TestString(t *testing.T) {
	require.Equal(t, "[1, 0, 0, 0]\n[0, 1, 0, 0]\n[0, 0, 1, 0]\n[0, 0, 0, 1]\n", matrix.Identity().String())
}

func TestFormatRows(t *testing.T) {
	m := matrix.Identity()
	m[1] = math.Copysign(0, -1)
	m[12] = -1.255
	rows := m.FormatRows(2)
	require.Equal(t, "1.00", rows[0][0])
	require.Equal(t, "0.00", rows[0][1])
	require.Equal(t, "-1.25", rows[3][0])
}
