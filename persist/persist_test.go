package persist_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/persist"
	"github.com/katalvlaran/transformlab/persist/memory"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

func TestParseDriver(t *testing.T) {
	d, err := persist.ParseDriver("")
	require.NoError(t, err)
	require.Equal(t, persist.Memory, d)

	d, err = persist.ParseDriver(" SQLite ")
	require.NoError(t, err)
	require.Equal(t, persist.SQLite, d)

	_, err = persist.ParseDriver("etcd")
	require.ErrorIs(t, err, persist.ErrUnknownDriver)
	require.Len(t, persist.Drivers(), 7)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, persist.Config{}.Validate())
	require.Error(t, persist.Config{Driver: persist.File}.Validate())
	require.ErrorIs(t, persist.Config{Driver: persist.File, File: persist.FileConfig{Path: "x.yaml"}}.Validate(), snapshot.ErrCodec)
	require.Error(t, persist.Config{Driver: persist.S3}.Validate())
	require.ErrorIs(t, persist.Config{Driver: "zip"}.Validate(), persist.ErrUnknownDriver)
}

// TestOpenLocalDrivers round-trips a store through every driver that needs
// no server.
func TestOpenLocalDrivers(t *testing.T) {
	dir := t.TempDir()
	cfgs := map[string]persist.Config{
		"memory": {},
		"json":   {Driver: persist.File, File: persist.FileConfig{Path: filepath.Join(dir, "state.json")}},
		"toml":   {Driver: persist.File, File: persist.FileConfig{Path: filepath.Join(dir, "nested", "state.toml")}},
		"sqlite": {Driver: persist.SQLite, SQLite: persist.SQLiteConfig{Path: filepath.Join(dir, "state.db")}},
	}
	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b, err := persist.Open(ctx, cfg)
			require.NoError(t, err)
			defer b.Close()

			dst := store.New()
			ok, err := persist.Load(ctx, b, dst)
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, uint64(0), dst.Version())

			src := store.New()
			require.NoError(t, src.Add(transform.Descriptor{ID: "r", Kind: transform.Rotate, Parameters: []float64{33.3, 0, -12.1}, Factor: 0.9}))
			require.NoError(t, src.Add(transform.Descriptor{ID: "t", Kind: transform.Translate, Parameters: []float64{0.1, 0.2, 0.3}, Factor: 1}))
			require.NoError(t, src.SetGlobalFactor(0.7))
			require.NoError(t, b.Save(ctx, snapshot.FromState(src.Snapshot())))

			ok, err = persist.Load(ctx, b, dst)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, src.Snapshot().Collection(), dst.Snapshot().Collection())
		})
	}
}

func TestAutosaveCoalescesToLatest(t *testing.T) {
	b := memory.New()
	e := engine.New(engine.WithIDScheme(engine.SequentialIDFn("t")))
	defer e.Close()

	a := persist.Autosave(b, log.New(&bytes.Buffer{}))
	unsub := e.Subscribe(a.Listen)
	defer unsub()

	for i := 0; i < 20; i++ {
		_, err := e.AddTransform(transform.Translate, engine.WithParameters(float64(i), 0, 0))
		require.NoError(t, err)
	}
	a.Flush()
	require.Equal(t, uint64(20), a.Saved())
	require.LessOrEqual(t, b.Saves(), 20)

	rec, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.Transforms, 20)
	require.Equal(t, "t20", rec.Transforms[19].ID)

	require.NoError(t, e.SetGlobalFactor(0.5))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	rec, err = b.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.5, rec.GlobalFactor)

	// commits after Close are ignored
	require.NoError(t, e.SetGlobalFactor(0.25))
	require.Equal(t, uint64(21), a.Saved())
}

// failingBackend rejects every Save.
type failingBackend struct {
	mu    sync.Mutex
	calls int
}

func (f *failingBackend) Load(context.Context) (snapshot.Record, error) {
	return snapshot.Record{}, snapshot.ErrNoSnapshot
}

func (f *failingBackend) Save(context.Context, snapshot.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("disk full")
}

func (f *failingBackend) Close() error { return nil }

func TestAutosaveLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	fb := &failingBackend{}
	a := persist.Autosave(fb, log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	s := store.New(store.WithListener(a.Listen))
	require.NoError(t, s.SetGlobalFactor(0.5))
	a.Flush()

	require.ErrorContains(t, a.Err(), "disk full")
	require.Equal(t, uint64(0), a.Saved())
	require.Contains(t, buf.String(), "autosave failed")
	require.ErrorContains(t, a.Close(), "disk full")
}

// gatedBackend holds every Save until release is closed.
type gatedBackend struct {
	*memory.Backend
	started chan struct{}
	release chan struct{}
}

func (g *gatedBackend) Save(ctx context.Context, r snapshot.Record) error {
	g.started <- struct{}{}
	<-g.release

	return g.Backend.Save(ctx, r)
}

func TestAutosaveFlushWaitsForFinalWrite(t *testing.T) {
	gb := &gatedBackend{
		Backend: memory.New(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	a := persist.Autosave(gb, log.New(&bytes.Buffer{}))
	s := store.New(store.WithListener(a.Listen))
	require.NoError(t, s.SetGlobalFactor(0.5))
	<-gb.started

	closed := make(chan error, 1)
	go func() { closed <- a.Close() }()
	flushed := make(chan struct{})
	go func() {
		a.Flush()
		close(flushed)
	}()

	select {
	case <-flushed:
		t.Fatal("Flush returned while a write was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(gb.release)
	<-flushed
	require.NoError(t, <-closed)
	require.Equal(t, uint64(1), a.Saved())
	require.Equal(t, 1, gb.Saves())
	a.Flush()
}
