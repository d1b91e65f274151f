package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/persist/postgres"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/transform"
)

// TestPostgresBackend needs a database in TRANSFORMLAB_TEST_POSTGRES_DSN.
func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("TRANSFORMLAB_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRANSFORMLAB_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	b, err := postgres.New(ctx, dsn, uuid.NewString())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, snapshot.ErrNoSnapshot)

	rec := snapshot.Record{
		Format:       snapshot.FormatVersion,
		GlobalFactor: 0.75,
		Transforms: []snapshot.Entry{
			{ID: "r", Name: "Rotate", Kind: transform.Rotate, Parameters: []float64{90, 0, 0}, Factor: 1},
		},
	}
	require.NoError(t, b.Save(ctx, rec))
	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}
