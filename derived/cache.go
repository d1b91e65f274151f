// Package derived keeps the composed matrix and determinant of a store in
// step with its commits.
//
// The cache is pure composition plus memoization keyed by the store's
// commit counter: every Change recomputes the pipeline from the committed
// state and swaps the result in atomically. A swap never replaces a newer
// version with an older one, and Current recomputes when the memoized
// version is behind the source (cache created late, or closed).
package derived

import (
	"sync/atomic"
	"time"

	"github.com/katalvlaran/transformlab/matrix"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// Source is the subset of *store.Store the cache depends on.
type Source interface {
	Snapshot() store.State
	Version() uint64
	Subscribe(l store.Listener) (unsubscribe func())
}

// State is the derived view of one committed version.
type State struct {
	// Version is the commit this view was computed from.
	Version uint64 `json:"version"`

	// Combined is the composed matrix, global factor applied.
	Combined matrix.Mat4 `json:"combined"`

	// Determinant is det(Combined).
	Determinant float64 `json:"determinant"`

	// IDs and Matrices hold each descriptor's own matrix (its factor
	// applied), in collection order.
	IDs      []string      `json:"ids"`
	Matrices []matrix.Mat4 `json:"matrices"`
}

func (s State) clone() State {
	s.IDs = append([]string(nil), s.IDs...)
	s.Matrices = append([]matrix.Mat4(nil), s.Matrices...)

	return s
}

// Option configures a Cache.
type Option func(c *Cache)

// WithOnRecompute registers a hook called with each recomputed state that is
// published and the time it took. A recompute that lost the race to a newer
// version is not reported.
func WithOnRecompute(fn func(State, time.Duration)) Option {
	return func(c *Cache) { c.onRecompute = fn }
}

// Cache memoizes the derived State of a Source.
type Cache struct {
	src         Source
	cur         atomic.Pointer[State]
	unsubscribe func()
	onRecompute func(State, time.Duration)
	closed      atomic.Bool
}

// New computes the initial state from src and subscribes to its commits.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{src: src}
	for _, opt := range opts {
		opt(c)
	}
	c.publish(c.recompute(src.Snapshot()))
	c.unsubscribe = src.Subscribe(func(ch store.Change) {
		c.publish(c.recompute(ch.State))
	})

	return c
}

// Current returns the derived state of the latest commit.
func (c *Cache) Current() State {
	s := c.cur.Load()
	if s.Version != c.src.Version() {
		c.publish(c.recompute(c.src.Snapshot()))
		s = c.cur.Load()
	}

	return s.clone()
}

// Close stops listening to the source. Current keeps working by recomputing
// on demand.
func (c *Cache) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.unsubscribe()
	}
}

// Compute derives the State of st without any caching.
func Compute(st store.State) State {
	res := transform.Compose(st.Collection())
	out := State{
		Version:     st.Version,
		Combined:    res.Combined,
		Determinant: res.Determinant,
		IDs:         make([]string, len(st.Transforms)),
		Matrices:    make([]matrix.Mat4, len(st.Transforms)),
	}
	for i, d := range st.Transforms {
		out.IDs[i] = d.ID
		// committed descriptors are valid, so Matrix cannot fail here.
		out.Matrices[i], _ = d.Matrix()
	}

	return out
}

func (c *Cache) recompute(st store.State) (*State, time.Duration) {
	start := time.Now()
	next := Compute(st)

	return &next, time.Since(start)
}

// publish swaps next in unless the cached state is already as new, and
// reports a successful swap to the recompute hook.
func (c *Cache) publish(next *State, took time.Duration) {
	for {
		old := c.cur.Load()
		if old != nil && old.Version >= next.Version {
			return
		}
		if c.cur.CompareAndSwap(old, next) {
			if c.onRecompute != nil {
				c.onRecompute(next.clone(), took)
			}
			return
		}
	}
}
