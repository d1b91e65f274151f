// Package metrics exports engine activity as Prometheus collectors. A
// Metrics value is an engine.Observer: pass it with engine.WithObserver and
// serve Handler on /metrics.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/transformlab/derived"
	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/store"
)

const namespace = "transformlab"

// Metrics owns a private registry with the engine collectors.
type Metrics struct {
	registry    *prometheus.Registry
	commits     *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	transforms  prometheus.Gauge
	version     prometheus.Gauge
	globalFac   prometheus.Gauge
	determinant prometheus.Gauge
	recompute   prometheus.Histogram

	mu      sync.Mutex
	derived uint64 // version behind the determinant gauge
}

// Option customizes New.
type Option func(*config)

type config struct {
	runtime bool
}

// WithRuntimeCollectors also registers the Go runtime and process
// collectors.
func WithRuntimeCollectors() Option {
	return func(c *config) { c.runtime = true }
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Committed mutations by operation.",
		}, []string{"op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected mutations by operation and reason.",
		}, []string{"op", "reason"}),
		transforms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transforms",
			Help:      "Descriptors in the committed collection.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "version",
			Help:      "Version of the committed collection.",
		}),
		globalFac: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_factor",
			Help:      "Global factor of the committed collection.",
		}),
		determinant: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "determinant",
			Help:      "Determinant of the combined matrix.",
		}),
		recompute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_seconds",
			Help:      "Time spent recomputing the derived state.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}
	m.registry.MustRegister(m.commits, m.rejections, m.transforms, m.version, m.globalFac, m.determinant, m.recompute)
	if cfg.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnCommit counts the commit and updates the collection gauges.
func (m *Metrics) OnCommit(c store.Change) {
	m.commits.WithLabelValues(c.Op.String()).Inc()
	m.transforms.Set(float64(len(c.State.Transforms)))
	m.version.Set(float64(c.State.Version))
	m.globalFac.Set(c.State.GlobalFactor)
}

// OnReject counts the rejection under its reason code.
func (m *Metrics) OnReject(op store.Op, err error) {
	m.rejections.WithLabelValues(op.String(), engine.Reason(err)).Inc()
}

// OnRecompute records the recompute latency and the determinant. The gauge
// never moves back to an older version than it already shows.
func (m *Metrics) OnRecompute(st derived.State, took time.Duration) {
	m.recompute.Observe(took.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if st.Version < m.derived {
		return
	}
	m.derived = st.Version
	m.determinant.Set(st.Determinant)
}

var _ engine.Observer = (*Metrics)(nil)
