// Package store: construction, reads, subscription and the commit path.

package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/transformlab/transform"
)

// Store is the transform collection with versioned commits.
//
// mu serializes writers across commit and notification; lmu guards the
// listener list so Subscribe never waits on a running notification.
type Store struct {
	mu  sync.Mutex   // guards commits
	lmu sync.RWMutex // guards listeners and nextListener

	clamp bool // clamp factors instead of rejecting

	state        atomic.Pointer[State]
	listeners    []subscription
	nextListener uint64
}

type subscription struct {
	id uint64
	fn Listener
}

// New creates an empty Store (no descriptors, global factor 1, version 0).
// Complexity: O(1).
func New(opts ...Option) *Store {
	s := &Store{}
	s.state.Store(&State{GlobalFactor: 1})
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns a deep copy of the current state. Never blocks on writers.
func (s *Store) Snapshot() State {
	return s.state.Load().clone()
}

// Version returns the number of commits so far.
func (s *Store) Version() uint64 {
	return s.state.Load().Version
}

// Len returns the number of descriptors.
func (s *Store) Len() int {
	return len(s.state.Load().Transforms)
}

// Subscribe registers l and returns a func that unsubscribes it. Listeners run
// in subscription order. Unsubscribing twice is a no-op.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.subscribeLocked(l)
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// subscribeLocked appends l; the caller holds lmu (or owns s exclusively).
func (s *Store) subscribeLocked(l Listener) uint64 {
	s.nextListener++
	s.listeners = append(s.listeners, subscription{id: s.nextListener, fn: l})

	return s.nextListener
}

// commit runs mutate on the current state under the writer lock. On success
// it publishes the returned state with Version+1 and notifies listeners
// before releasing the lock; on error nothing changes.
func (s *Store) commit(op Op, id string, mutate func(cur *State) (*State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	next, err := mutate(cur)
	if err != nil {
		return err
	}
	next.Version = cur.Version + 1
	s.state.Store(next)

	// Copy the listener list so a listener may Subscribe/unsubscribe.
	s.lmu.RLock()
	subs := append([]subscription(nil), s.listeners...)
	s.lmu.RUnlock()

	change := Change{Op: op, ID: id, State: next.clone()}
	for _, sub := range subs {
		sub.fn(change)
	}

	return nil
}

// factor applies the Store's factor policy.
func (s *Store) factor(f float64) (float64, error) {
	if s.clamp {
		return transform.ClampFactor(f)
	}
	if err := transform.ValidateFactor(f); err != nil {
		return 0, err
	}

	return f, nil
}

// storeErrorf wraps err with "store.<method>: ".
func storeErrorf(method string, err error) error {
	return fmt.Errorf("store.%s: %w", method, err)
}

// withTransforms returns the successor of cur holding ts. Descriptors may be
// shared between versions because committed states are never edited.
func withTransforms(cur *State, ts []transform.Descriptor) *State {
	return &State{Transforms: ts, GlobalFactor: cur.GlobalFactor}
}
