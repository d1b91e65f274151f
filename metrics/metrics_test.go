package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/derived"
	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/metrics"
	"github.com/katalvlaran/transformlab/transform"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestEngineMetrics(t *testing.T) {
	m := metrics.New()
	e := engine.New(engine.WithObserver(m), engine.WithIDScheme(engine.SequentialIDFn("t")))
	defer e.Close()

	_, err := e.AddTransform(transform.Scale, engine.WithParameters(1, 1, 1))
	require.NoError(t, err)
	require.Error(t, e.RemoveTransform("nope"))
	_, err = e.AddTransform(transform.Shear, engine.WithParameters(1))
	require.Error(t, err)
	require.Error(t, e.SetGlobalFactor(2))

	out := scrape(t, m.Handler())
	require.Contains(t, out, `transformlab_commits_total{op="add"} 1`)
	require.Contains(t, out, `transformlab_rejections_total{op="remove",reason="not_found"} 1`)
	require.Contains(t, out, `transformlab_rejections_total{op="add",reason="invalid_arity"} 1`)
	require.Contains(t, out, `transformlab_rejections_total{op="set_global_factor",reason="out_of_range"} 1`)
	require.Contains(t, out, "transformlab_transforms 1")
	require.Contains(t, out, "transformlab_version 1")
	require.Contains(t, out, "transformlab_determinant 8")
	require.Contains(t, out, "transformlab_recompute_seconds_count 2")
	require.NotContains(t, out, "go_goroutines")
}

func TestRuntimeCollectors(t *testing.T) {
	m := metrics.New(metrics.WithRuntimeCollectors())
	require.Contains(t, scrape(t, m.Handler()), "go_goroutines")
}

func TestDeterminantIgnoresOlderRecompute(t *testing.T) {
	m := metrics.New()
	m.OnRecompute(derived.State{Version: 3, Determinant: 27}, time.Millisecond)
	m.OnRecompute(derived.State{Version: 2, Determinant: 8}, time.Millisecond)

	out := scrape(t, m.Handler())
	require.Contains(t, out, "transformlab_determinant 27")
	require.Contains(t, out, "transformlab_recompute_seconds_count 2")

	m.OnRecompute(derived.State{Version: 4, Determinant: -1}, time.Millisecond)
	require.Contains(t, scrape(t, m.Handler()), "transformlab_determinant -1")
}
