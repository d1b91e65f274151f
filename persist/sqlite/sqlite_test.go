package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/persist/sqlite"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/transform"
)

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	b, err := sqlite.New(ctx, path, "")
	require.NoError(t, err)
	require.Equal(t, path, b.Path())

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, snapshot.ErrNoSnapshot)

	rec := snapshot.Record{
		Format:       snapshot.FormatVersion,
		GlobalFactor: 1,
		Transforms: []snapshot.Entry{
			{ID: "a", Name: "Scale", Kind: transform.Scale, Parameters: []float64{1, 2, 3}, Factor: 0.125},
		},
	}
	require.NoError(t, b.Save(ctx, rec))
	rec.Transforms[0].Factor = 0.5
	require.NoError(t, b.Save(ctx, rec))
	require.NoError(t, b.Close())

	// reopen: the upserted row survives
	b, err = sqlite.New(ctx, path, "")
	require.NoError(t, err)
	defer b.Close()
	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	other, err := sqlite.New(ctx, path, "other")
	require.NoError(t, err)
	defer other.Close()
	_, err = other.Load(ctx)
	require.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}
