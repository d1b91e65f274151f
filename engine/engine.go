// Package engine is the facade over the transform store and its derived
// cache: the API a UI, an HTTP server or a CLI drives.
//
// An Engine owns one store.Store and one derived.Cache. Mutations go to the
// store (validated, versioned, notified); reads of the combined matrix and
// determinant come from the cache, memoized per commit.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/transformlab/derived"
	"github.com/katalvlaran/transformlab/matrix"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// ErrUnknownIDScheme indicates an unrecognized id scheme name.
var ErrUnknownIDScheme = errors.New("engine: unknown id scheme")

// minIDAttempts is the least number of ids tried when a generated id already
// exists. AddTransform tries at least len(collection)+1 ids, so an injective
// IDFn always finds a free one.
const minIDAttempts = 64

// Engine composes a store, a derived cache, logging and observers.
type Engine struct {
	store     *store.Store
	cache     *derived.Cache
	logger    *log.Logger
	idFn      IDFn
	seq       atomic.Int64
	observers []Observer
	unsub     func()
}

// New creates an Engine over an empty collection.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		store:     store.New(o.storeOptions()...),
		logger:    o.logger,
		idFn:      o.idFn,
		observers: o.observers,
	}
	e.unsub = e.store.Subscribe(e.onCommit)
	e.cache = derived.New(e.store, derived.WithOnRecompute(e.onRecompute))

	return e
}

// Close detaches the engine's internal listeners. The engine stays usable;
// derived values are then recomputed on demand.
func (e *Engine) Close() {
	e.cache.Close()
	e.unsub()
}

// Store exposes the underlying store (for persistence listeners).
func (e *Engine) Store() *store.Store { return e.store }

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger { return e.logger }

// AddTransform appends a descriptor of kind with default parameters, factor 1
// and the kind's display name, customized by opts. It returns the new id.
func (e *Engine) AddTransform(kind transform.Kind, opts ...AddOption) (string, error) {
	spec, err := transform.Lookup(kind)
	if err != nil {
		return "", e.reject(store.OpAdd, err)
	}
	a := addConfig{d: transform.Descriptor{Name: spec.Name, Kind: kind, Parameters: spec.Defaults, Factor: 1}}
	for _, opt := range opts {
		opt(&a)
	}
	if a.explicitID {
		if err = e.store.Add(a.d); err != nil {
			return "", e.reject(store.OpAdd, err)
		}
		return a.d.ID, nil
	}

	limit := max(minIDAttempts, len(e.store.Snapshot().Transforms)+1)
	for attempt := 1; ; attempt++ {
		a.d.ID = e.idFn(int(e.seq.Add(1)))
		err = e.store.Add(a.d)
		if err == nil {
			return a.d.ID, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) || attempt >= limit {
			return "", e.reject(store.OpAdd, err)
		}
	}
}

// advanceSeq moves the id sequence to at least n.
func (e *Engine) advanceSeq(n int64) {
	for {
		cur := e.seq.Load()
		if cur >= n || e.seq.CompareAndSwap(cur, n) {
			return
		}
	}
}

// RemoveTransform deletes id; store.ErrNotFound if absent.
func (e *Engine) RemoveTransform(id string) error {
	return e.reject(store.OpRemove, e.store.Remove(id))
}

// UpdateTransform replaces parameters (nil keeps them) and factor of id.
func (e *Engine) UpdateTransform(id string, params []float64, factor float64) error {
	return e.reject(store.OpUpdate, e.store.Update(id, params, factor))
}

// EditTransform replaces only the fields set in p.
func (e *Engine) EditTransform(id string, p store.Patch) error {
	return e.reject(store.OpUpdate, e.store.Edit(id, p))
}

// ReorderTransforms applies a full permutation of the current ids.
func (e *Engine) ReorderTransforms(ids []string) error {
	return e.reject(store.OpReorder, e.store.Reorder(ids))
}

// MoveTransform moves id to index.
func (e *Engine) MoveTransform(id string, index int) error {
	return e.reject(store.OpMove, e.store.Move(id, index))
}

// RenameTransform sets the display name of id.
func (e *Engine) RenameTransform(id, name string) error {
	return e.reject(store.OpRename, e.store.Rename(id, name))
}

// SetGlobalFactor sets the blend of the whole composition.
func (e *Engine) SetGlobalFactor(v float64) error {
	return e.reject(store.OpSetGlobalFactor, e.store.SetGlobalFactor(v))
}

// ResetAll clears every descriptor and sets the global factor back to 1.
func (e *Engine) ResetAll() {
	e.store.Reset()
}

// CombinedMatrix returns the composed matrix of the latest commit.
func (e *Engine) CombinedMatrix() matrix.Mat4 {
	return e.cache.Current().Combined
}

// Determinant returns det(CombinedMatrix()).
func (e *Engine) Determinant() float64 {
	return e.cache.Current().Determinant
}

// Derived returns the full derived state (combined, determinant, previews).
func (e *Engine) Derived() derived.State {
	return e.cache.Current()
}

// Snapshot returns a copy of the committed state.
func (e *Engine) Snapshot() store.State {
	return e.store.Snapshot()
}

// Subscribe registers a commit listener; see store.Store.Subscribe.
func (e *Engine) Subscribe(l store.Listener) (unsubscribe func()) {
	return e.store.Subscribe(l)
}

// Export returns the persisted shape of the current state.
func (e *Engine) Export() snapshot.Record {
	return snapshot.FromState(e.store.Snapshot())
}

// Import replaces the whole collection with r as a single commit.
func (e *Engine) Import(r snapshot.Record) error {
	return e.reject(store.OpRestore, snapshot.Restore(e.store, r))
}

// onCommit logs and forwards each commit. It runs under the store's writer
// lock. A restore moves the id sequence past the restored collection so
// sequential ids continue where the saved ones stopped.
func (e *Engine) onCommit(c store.Change) {
	if c.Op == store.OpRestore {
		e.advanceSeq(int64(len(c.State.Transforms)))
	}
	e.logger.Debug("commit",
		"op", c.Op,
		"id", c.ID,
		"version", c.State.Version,
		"transforms", len(c.State.Transforms),
		"global", c.State.GlobalFactor,
	)
	for _, obs := range e.observers {
		obs.OnCommit(c)
	}
}

func (e *Engine) onRecompute(st derived.State, took time.Duration) {
	for _, obs := range e.observers {
		obs.OnRecompute(st, took)
	}
}

// reject logs and forwards a failed mutation; it returns err unchanged
// (nil stays nil).
func (e *Engine) reject(op store.Op, err error) error {
	if err == nil {
		return nil
	}
	e.logger.Warn("rejected", "op", op, "err", err)
	for _, obs := range e.observers {
		obs.OnReject(op, err)
	}

	return err
}

// String summarizes the engine state for debugging.
func (e *Engine) String() string {
	st := e.cache.Current()
	return fmt.Sprintf("engine{v%d, %d transforms, det=%g}", st.Version, len(st.IDs), st.Determinant)
}
