package engine

import (
	"time"

	"github.com/katalvlaran/transformlab/derived"
	"github.com/katalvlaran/transformlab/store"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use and must not call back into mutating Engine methods.
type Observer interface {
	// OnCommit is called after every successful mutation, in commit order.
	OnCommit(c store.Change)

	// OnReject is called when a mutation fails validation.
	OnReject(op store.Op, err error)

	// OnRecompute is called after the derived state was recomputed.
	OnRecompute(st derived.State, took time.Duration)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnCommit(store.Change)                    {}
func (NopObserver) OnReject(store.Op, error)                 {}
func (NopObserver) OnRecompute(derived.State, time.Duration) {}

var _ Observer = NopObserver{}
