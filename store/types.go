// Package store holds the authoritative transform collection and its commit
// log: an explicit, constructible state object with a narrow mutation API and
// synchronous change notification.
//
// Every successful mutation is one atomic commit: the version counter is
// incremented, the new immutable State is published, and every listener is
// invoked in subscription order before the mutating call returns. A failed
// mutation leaves state and version untouched and notifies nobody.
//
// Mutations are serialized by a writer mutex held across commit and
// notification, so listeners observe commits in version order. Readers never
// block: Snapshot and Version load an atomic pointer to the current State.
// Listeners MUST NOT call mutating Store methods (they would deadlock).
//
// Errors:
//
//	ErrDuplicateID        - Add with an id already in the collection.
//	ErrNotFound           - Remove/Update/Move/Rename of an absent id.
//	ErrInvalidPermutation - Reorder list omits, repeats or invents an id.
//	ErrIndexOutOfRange    - Move target index outside [0, len).
//
// Validation errors from package transform (ErrInvalidArity, ErrOutOfRange,
// ErrNonFinite, ErrUnknownKind, ErrEmptyID) pass through wrapped.
package store

import (
	"errors"

	"github.com/katalvlaran/transformlab/transform"
)

// Sentinel errors for store operations.
var (
	// ErrDuplicateID indicates an Add whose id already exists. It is the same
	// sentinel as transform.ErrDuplicateID.
	ErrDuplicateID = transform.ErrDuplicateID

	// ErrNotFound indicates an operation referenced an absent descriptor id.
	ErrNotFound = errors.New("store: descriptor not found")

	// ErrInvalidPermutation indicates a Reorder list that is not a
	// permutation of the current ids.
	ErrInvalidPermutation = errors.New("store: reorder list is not a permutation of current ids")

	// ErrIndexOutOfRange indicates a Move target outside the collection.
	ErrIndexOutOfRange = errors.New("store: index out of range")
)

// Op names the mutation that produced a commit.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpRemove
	OpUpdate
	OpReorder
	OpMove
	OpRename
	OpSetGlobalFactor
	OpReset
	OpRestore
)

var opNames = map[Op]string{
	OpAdd:             "add",
	OpRemove:          "remove",
	OpUpdate:          "update",
	OpReorder:         "reorder",
	OpMove:            "move",
	OpRename:          "rename",
	OpSetGlobalFactor: "set_global_factor",
	OpReset:           "reset",
	OpRestore:         "restore",
}

// String returns the snake_case op name.
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}

	return "unknown"
}

// State is one committed version of the collection. Values handed out by the
// Store are deep copies; mutating them never affects the Store.
type State struct {
	// Transforms is the ordered descriptor list; index 0 is applied first.
	Transforms []transform.Descriptor `json:"transforms"`

	// GlobalFactor blends the whole composition toward identity.
	GlobalFactor float64 `json:"globalFactor"`

	// Version counts successful commits since construction.
	Version uint64 `json:"version"`
}

// Collection returns the composable part of s (deep copy).
func (s State) Collection() transform.Collection {
	return transform.Collection{Transforms: s.Transforms, GlobalFactor: s.GlobalFactor}.Clone()
}

// Index returns the position of id, or -1.
func (s State) Index(id string) int {
	for i := range s.Transforms {
		if s.Transforms[i].ID == id {
			return i
		}
	}

	return -1
}

// Get returns a copy of the descriptor with id.
func (s State) Get(id string) (transform.Descriptor, bool) {
	if i := s.Index(id); i >= 0 {
		return s.Transforms[i].Clone(), true
	}

	return transform.Descriptor{}, false
}

// IDs returns the ids in order.
func (s State) IDs() []string {
	ids := make([]string, len(s.Transforms))
	for i := range s.Transforms {
		ids[i] = s.Transforms[i].ID
	}

	return ids
}

// clone deep-copies s.
func (s State) clone() State {
	c := s.Collection()
	return State{Transforms: c.Transforms, GlobalFactor: c.GlobalFactor, Version: s.Version}
}

// Change is delivered to listeners after each commit.
type Change struct {
	// Op is the mutation kind.
	Op Op

	// ID is the affected descriptor id; empty for collection-wide ops.
	ID string

	// State is the committed state. It is shared by all listeners of this
	// commit and must be treated as read-only.
	State State
}

// Listener observes commits. It runs on the mutating goroutine while the
// writer lock is held.
type Listener func(Change)

// Patch selects which descriptor fields Edit replaces; nil fields are kept.
type Patch struct {
	Parameters []float64
	Factor     *float64
}

// Option configures a Store before creation.
type Option func(s *Store)

// WithClampFactors clamps out-of-range factors into [0,1] instead of
// rejecting them with transform.ErrOutOfRange. NaN is rejected either way.
func WithClampFactors() Option {
	return func(s *Store) { s.clamp = true }
}

// WithListener subscribes l at construction time.
func WithListener(l Listener) Option {
	return func(s *Store) { s.subscribeLocked(l) }
}
