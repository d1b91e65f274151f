package transform_test

import (
	"encoding/json"
	"testing"

	"github.com/katalvlaran/transformlab/transform"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range transform.Kinds() {
		got, err := transform.ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	got, err := transform.ParseKind("  ROTATE ")
	require.NoError(t, err)
	require.Equal(t, transform.Rotate, got)

	_, err = transform.ParseKind("skew")
	require.ErrorIs(t, err, transform.ErrUnknownKind)
}

func TestKindValidAndString(t *testing.T) {
	require.Len(t, transform.Kinds(), 5)
	require.False(t, transform.Kind(0).Valid())
	require.False(t, transform.Kind(200).Valid())
	require.Equal(t, "kind(200)", transform.Kind(200).String())
	require.Equal(t, "shear", transform.Shear.String())
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		K transform.Kind `json:"k"`
	}{transform.Translate})
	require.NoError(t, err)
	require.JSONEq(t, `{"k":"translate"}`, string(b))

	var v struct {
		K transform.Kind `json:"k"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"k":"custom"}`), &v))
	require.Equal(t, transform.Custom, v.K)

	require.Error(t, json.Unmarshal([]byte(`{"k":"warp"}`), &v))

	_, err = json.Marshal(struct{ K transform.Kind }{})
	require.Error(t, err)
}
