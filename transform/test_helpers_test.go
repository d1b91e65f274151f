package transform_test

import (
	"testing"

	"github.com/katalvlaran/transformlab/matrix"
	"github.com/katalvlaran/transformlab/transform"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

// desc is a terse Descriptor constructor for tables.
func desc(id string, k transform.Kind, factor float64, params ...float64) transform.Descriptor {
	return transform.Descriptor{ID: id, Name: k.String(), Kind: k, Parameters: params, Factor: factor}
}

func requireMatNear(t *testing.T, want, got matrix.Mat4) {
	t.Helper()
	require.Truef(t, matrix.AllClose(want, got, tol), "want\n%vgot\n%v", want, got)
}

func requireVecNear(t *testing.T, want, got matrix.Vec3) {
	t.Helper()
	for i := range want {
		require.InDeltaf(t, want[i], got[i], tol, "component %d: want %v got %v", i, want, got)
	}
}
