package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/persist/file"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/transform"
)

func sample() snapshot.Record {
	return snapshot.Record{
		Format:       snapshot.FormatVersion,
		GlobalFactor: 0.3,
		Transforms: []snapshot.Entry{
			{ID: "s", Name: "Shear", Kind: transform.Shear, Parameters: []float64{0.1, 0, 0, 0, 0, 2.5}, Factor: 1},
		},
	}
}

func TestFileBackend(t *testing.T) {
	for _, name := range []string{"state.json", "state.toml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "a", name)
			b, err := file.New(path)
			require.NoError(t, err)
			require.Equal(t, path, b.Path())

			_, err = b.Load(ctx)
			require.ErrorIs(t, err, snapshot.ErrNoSnapshot)

			require.NoError(t, b.Save(ctx, sample()))
			got, err := b.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, sample(), got)

			// no temp files left behind
			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			require.Len(t, entries, 1)
			require.NoError(t, b.Close())
		})
	}
}

func TestFileBackendRejects(t *testing.T) {
	_, err := file.New("")
	require.Error(t, err)
	_, err = file.New(filepath.Join(t.TempDir(), "state.yaml"))
	require.ErrorIs(t, err, snapshot.ErrCodec)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format":1,"bogus":true}`), 0o600))
	b, err := file.New(path)
	require.NoError(t, err)
	_, err = b.Load(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, b.Save(ctx, sample()), context.Canceled)
}
