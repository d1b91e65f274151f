// Package store: mutation methods.
//
// Each method validates against the current state inside commit, builds a
// fresh State (descriptor slices are copied, never edited in place) and lets
// commit publish it. Complexities are in n = number of descriptors.

package store

import (
	"fmt"

	"github.com/katalvlaran/transformlab/transform"
)

// Add appends d at the end of the collection.
// The descriptor is validated (id, kind, arity, finite parameters, factor)
// and deep-copied; the caller may reuse d afterwards.
// Returns ErrDuplicateID if d.ID already exists.
// Complexity: O(n).
func (s *Store) Add(d transform.Descriptor) error {
	method := fmt.Sprintf("Add(%q)", d.ID)
	d = d.Clone()
	f, err := s.factor(d.Factor)
	if err != nil {
		return storeErrorf(method, err)
	}
	d.Factor = f
	if err = d.Validate(); err != nil {
		return storeErrorf(method, err)
	}

	return s.commit(OpAdd, d.ID, func(cur *State) (*State, error) {
		if cur.Index(d.ID) >= 0 {
			return nil, storeErrorf(method, ErrDuplicateID)
		}
		ts := make([]transform.Descriptor, len(cur.Transforms), len(cur.Transforms)+1)
		copy(ts, cur.Transforms)

		return withTransforms(cur, append(ts, d)), nil
	})
}

// Remove deletes the descriptor with id. An absent id returns ErrNotFound and
// commits nothing.
// Complexity: O(n).
func (s *Store) Remove(id string) error {
	method := fmt.Sprintf("Remove(%q)", id)

	return s.commit(OpRemove, id, func(cur *State) (*State, error) {
		i := cur.Index(id)
		if i < 0 {
			return nil, storeErrorf(method, ErrNotFound)
		}
		ts := make([]transform.Descriptor, 0, len(cur.Transforms)-1)
		ts = append(ts, cur.Transforms[:i]...)
		ts = append(ts, cur.Transforms[i+1:]...)

		return withTransforms(cur, ts), nil
	})
}

// Update replaces the parameters and factor of id. A nil params keeps the
// current parameters; otherwise arity and finiteness are re-validated.
// Complexity: O(n).
func (s *Store) Update(id string, params []float64, factor float64) error {
	return s.edit(fmt.Sprintf("Update(%q)", id), id, Patch{Parameters: params, Factor: &factor})
}

// Edit replaces the fields selected by p; nil fields are kept. An empty patch
// still commits (the version moves and listeners run).
// Complexity: O(n).
func (s *Store) Edit(id string, p Patch) error {
	return s.edit(fmt.Sprintf("Edit(%q)", id), id, p)
}

func (s *Store) edit(method, id string, p Patch) error {
	var factor float64
	if p.Factor != nil {
		f, err := s.factor(*p.Factor)
		if err != nil {
			return storeErrorf(method, err)
		}
		factor = f
	}

	return s.commit(OpUpdate, id, func(cur *State) (*State, error) {
		i := cur.Index(id)
		if i < 0 {
			return nil, storeErrorf(method, ErrNotFound)
		}
		d := cur.Transforms[i].Clone()
		if p.Parameters != nil {
			d.Parameters = append([]float64(nil), p.Parameters...)
		}
		if p.Factor != nil {
			d.Factor = factor
		}
		if err := d.Validate(); err != nil {
			return nil, storeErrorf(method, err)
		}

		return withTransforms(cur, replaceAt(cur.Transforms, i, d)), nil
	})
}

// Rename sets the display name of id. Any string is accepted.
// Complexity: O(n).
func (s *Store) Rename(id, name string) error {
	method := fmt.Sprintf("Rename(%q)", id)

	return s.commit(OpRename, id, func(cur *State) (*State, error) {
		i := cur.Index(id)
		if i < 0 {
			return nil, storeErrorf(method, ErrNotFound)
		}
		d := cur.Transforms[i]
		d.Name = name

		return withTransforms(cur, replaceAt(cur.Transforms, i, d)), nil
	})
}

// Reorder rearranges the collection to follow ids, which must be a
// permutation of the current ids (same length, no repeats, no unknowns).
// Complexity: O(n).
func (s *Store) Reorder(ids []string) error {
	method := "Reorder"

	return s.commit(OpReorder, "", func(cur *State) (*State, error) {
		ts, err := permute(cur.Transforms, ids)
		if err != nil {
			return nil, storeErrorf(method, err)
		}

		return withTransforms(cur, ts), nil
	})
}

// Move relocates id to index, shifting the others; it commits through the
// same permutation path as Reorder.
// Complexity: O(n).
func (s *Store) Move(id string, index int) error {
	method := fmt.Sprintf("Move(%q, %d)", id, index)

	return s.commit(OpMove, id, func(cur *State) (*State, error) {
		from := cur.Index(id)
		if from < 0 {
			return nil, storeErrorf(method, ErrNotFound)
		}
		if index < 0 || index >= len(cur.Transforms) {
			return nil, storeErrorf(method, fmt.Errorf("index %d of %d: %w", index, len(cur.Transforms), ErrIndexOutOfRange))
		}
		order := cur.IDs()
		order = append(order[:from], order[from+1:]...)
		order = append(order[:index], append([]string{id}, order[index:]...)...)
		ts, err := permute(cur.Transforms, order)
		if err != nil {
			return nil, storeErrorf(method, err)
		}

		return withTransforms(cur, ts), nil
	})
}

// SetGlobalFactor sets the blend applied to the whole composition.
// Complexity: O(1).
func (s *Store) SetGlobalFactor(v float64) error {
	method := fmt.Sprintf("SetGlobalFactor(%v)", v)
	f, err := s.factor(v)
	if err != nil {
		return storeErrorf(method, err)
	}

	return s.commit(OpSetGlobalFactor, "", func(cur *State) (*State, error) {
		return &State{Transforms: cur.Transforms, GlobalFactor: f}, nil
	})
}

// Reset clears the collection and restores the global factor to 1. It
// always commits, even when the collection is already empty.
func (s *Store) Reset() {
	_ = s.commit(OpReset, "", func(*State) (*State, error) {
		return &State{GlobalFactor: 1}, nil
	})
}

// Restore replaces the whole collection with c after validating it
// (descriptors, unique ids and global factor). Factors are subject to the
// Store's clamp policy.
// Complexity: O(n).
func (s *Store) Restore(c transform.Collection) error {
	c = c.Clone()
	for i := range c.Transforms {
		f, err := s.factor(c.Transforms[i].Factor)
		if err != nil {
			return storeErrorf(fmt.Sprintf("Restore[%d]", i), err)
		}
		c.Transforms[i].Factor = f
	}
	g, err := s.factor(c.GlobalFactor)
	if err != nil {
		return storeErrorf("Restore(globalFactor)", err)
	}
	c.GlobalFactor = g
	if err = c.Validate(); err != nil {
		return storeErrorf("Restore", err)
	}

	return s.commit(OpRestore, "", func(*State) (*State, error) {
		return &State{Transforms: c.Transforms, GlobalFactor: c.GlobalFactor}, nil
	})
}

// replaceAt returns a copy of ts with ts[i] = d.
func replaceAt(ts []transform.Descriptor, i int, d transform.Descriptor) []transform.Descriptor {
	out := make([]transform.Descriptor, len(ts))
	copy(out, ts)
	out[i] = d

	return out
}

// permute returns ts ordered by ids or ErrInvalidPermutation.
func permute(ts []transform.Descriptor, ids []string) ([]transform.Descriptor, error) {
	if len(ids) != len(ts) {
		return nil, fmt.Errorf("got %d ids, want %d: %w", len(ids), len(ts), ErrInvalidPermutation)
	}
	pos := make(map[string]int, len(ts))
	for i := range ts {
		pos[ts[i].ID] = i
	}
	out := make([]transform.Descriptor, 0, len(ts))
	for _, id := range ids {
		i, ok := pos[id]
		if !ok {
			return nil, fmt.Errorf("id %q unknown or repeated: %w", id, ErrInvalidPermutation)
		}
		delete(pos, id)
		out = append(out, ts[i])
	}

	return out, nil
}
