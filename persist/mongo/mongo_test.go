package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/persist/mongo"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/transform"
)

// TestMongoBackend needs a reachable server in TRANSFORMLAB_TEST_MONGO_URI.
func TestMongoBackend(t *testing.T) {
	uri := os.Getenv("TRANSFORMLAB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TRANSFORMLAB_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	b, err := mongo.New(ctx, mongo.Config{URI: uri, Collection: "test_snapshots", Key: uuid.NewString()})
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, snapshot.ErrNoSnapshot)

	rec := snapshot.Record{
		Format:       snapshot.FormatVersion,
		GlobalFactor: 1,
		Transforms: []snapshot.Entry{
			{ID: "s", Name: "Scale", Kind: transform.Scale, Parameters: []float64{0.1, 0.2, 0.3}, Factor: 1},
		},
	}
	require.NoError(t, b.Save(ctx, rec))
	rec.GlobalFactor = 0.5
	require.NoError(t, b.Save(ctx, rec))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}
