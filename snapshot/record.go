// Package snapshot defines the persisted shape of a transform collection and
// its JSON and TOML codecs, plus the Backend contract every persistence
// driver implements.
//
// A Record round-trips bit-identically through both codecs: floats are
// written in their shortest exact decimal form, so a decoded collection
// composes to the very same matrix and determinant.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// FormatVersion is written into every Record.
const FormatVersion = 1

var (
	// ErrNoSnapshot is returned by Backend.Load when nothing was saved yet.
	ErrNoSnapshot = errors.New("snapshot: no snapshot stored")

	// ErrFormat indicates a Record with an unsupported format version.
	ErrFormat = errors.New("snapshot: unsupported format version")

	// ErrCodec indicates an unknown codec name or file extension.
	ErrCodec = errors.New("snapshot: unknown codec")
)

// Record is the persisted collection.
type Record struct {
	Format       int     `json:"format" toml:"format"`
	GlobalFactor float64 `json:"globalFactor" toml:"globalFactor"`
	Transforms   []Entry `json:"transforms" toml:"transforms"`
}

// Entry is one persisted descriptor.
type Entry struct {
	ID         string         `json:"id" toml:"id"`
	Name       string         `json:"name" toml:"name"`
	Kind       transform.Kind `json:"kind" toml:"kind"`
	Parameters []float64      `json:"parameters" toml:"parameters"`
	Factor     float64        `json:"factor" toml:"factor"`
}

// Backend stores and retrieves the latest Record.
type Backend interface {
	// Load returns the saved Record or ErrNoSnapshot.
	Load(ctx context.Context) (Record, error)
	// Save replaces the saved Record.
	Save(ctx context.Context, r Record) error
	// Close releases connections and handles.
	Close() error
}

// FromCollection converts c into a Record (deep copy).
func FromCollection(c transform.Collection) Record {
	r := Record{
		Format:       FormatVersion,
		GlobalFactor: c.GlobalFactor,
		Transforms:   make([]Entry, len(c.Transforms)),
	}
	for i, d := range c.Transforms {
		r.Transforms[i] = Entry{
			ID:         d.ID,
			Name:       d.Name,
			Kind:       d.Kind,
			Parameters: append([]float64(nil), d.Parameters...),
			Factor:     d.Factor,
		}
	}

	return r
}

// FromState converts a committed store state into a Record.
func FromState(st store.State) Record {
	return FromCollection(st.Collection())
}

// Collection converts r back into a validated Collection. A zero Format is
// accepted as the current version.
func (r Record) Collection() (transform.Collection, error) {
	c, err := r.collection()
	if err != nil {
		return transform.Collection{}, err
	}
	if err = c.Validate(); err != nil {
		return transform.Collection{}, fmt.Errorf("snapshot: %w", err)
	}

	return c, nil
}

// collection converts r without validating descriptors or factors.
func (r Record) collection() (transform.Collection, error) {
	if r.Format != 0 && r.Format != FormatVersion {
		return transform.Collection{}, fmt.Errorf("snapshot: format %d: %w", r.Format, ErrFormat)
	}
	c := transform.Collection{
		GlobalFactor: r.GlobalFactor,
		Transforms:   make([]transform.Descriptor, len(r.Transforms)),
	}
	for i, e := range r.Transforms {
		c.Transforms[i] = transform.Descriptor{
			ID:         e.ID,
			Name:       e.Name,
			Kind:       e.Kind,
			Parameters: append([]float64(nil), e.Parameters...),
			Factor:     e.Factor,
		}
	}

	return c, nil
}

// Restore loads r into s as one commit. Factors go through the store's
// policy (clamped or rejected) before the collection is validated.
func Restore(s *store.Store, r Record) error {
	c, err := r.collection()
	if err != nil {
		return err
	}

	return s.Restore(c)
}
