// Package memory is an in-process snapshot.Backend. It keeps the latest
// Record in memory and is the default driver for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/katalvlaran/transformlab/snapshot"
)

// Backend holds one Record guarded by a mutex.
type Backend struct {
	mu    sync.Mutex
	rec   *snapshot.Record
	saves int
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{}
}

// Load returns a copy of the saved Record or snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rec == nil {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}

	return clone(*b.rec), nil
}

// Save replaces the saved Record with a copy of r.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := clone(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rec = &c
	b.saves++

	return nil
}

// Saves returns how many times Save succeeded.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.saves
}

// Close does nothing for the memory backend.
func (b *Backend) Close() error { return nil }

func clone(r snapshot.Record) snapshot.Record {
	out := r
	out.Transforms = make([]snapshot.Entry, len(r.Transforms))
	for i, e := range r.Transforms {
		e.Parameters = append([]float64(nil), e.Parameters...)
		out.Transforms[i] = e
	}

	return out
}

var _ snapshot.Backend = (*Backend)(nil)
