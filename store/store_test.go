package store_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
	"github.com/stretchr/testify/require"
)

func translate(id string, x, y, z float64) transform.Descriptor {
	return transform.Descriptor{ID: id, Name: "Translate", Kind: transform.Translate, Parameters: []float64{x, y, z}, Factor: 1}
}

// recorder collects every Change delivered to it.
type recorder struct{ changes []store.Change }

func (r *recorder) listen(c store.Change) { r.changes = append(r.changes, c) }

func (r *recorder) ops() []store.Op {
	out := make([]store.Op, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Op
	}

	return out
}

func newStore(t *testing.T, ids ...string) (*store.Store, *recorder) {
	t.Helper()
	s := store.New()
	for i, id := range ids {
		require.NoError(t, s.Add(translate(id, float64(i), 0, 0)))
	}
	rec := &recorder{}
	s.Subscribe(rec.listen)

	return s, rec
}

func TestNewStore(t *testing.T) {
	s := store.New()
	st := s.Snapshot()
	require.Empty(t, st.Transforms)
	require.Equal(t, 1.0, st.GlobalFactor)
	require.Zero(t, st.Version)
	require.Zero(t, s.Len())
}

func TestAdd(t *testing.T) {
	s, rec := newStore(t)
	d := translate("a", 1, 2, 3)
	require.NoError(t, s.Add(d))

	d.Parameters[0] = 99 // caller's slice is not retained
	got, ok := s.Snapshot().Get("a")
	require.True(t, ok)
	require.Equal(t, []float64{1, 2, 3}, got.Parameters)
	require.Equal(t, uint64(1), s.Version())

	require.Len(t, rec.changes, 1)
	require.Equal(t, store.OpAdd, rec.changes[0].Op)
	require.Equal(t, "a", rec.changes[0].ID)
	require.Equal(t, uint64(1), rec.changes[0].State.Version)

	err := s.Add(translate("a", 0, 0, 0))
	require.ErrorIs(t, err, store.ErrDuplicateID)
	require.ErrorIs(t, s.Add(transform.Descriptor{ID: "b", Kind: transform.Scale, Parameters: []float64{1}, Factor: 1}), transform.ErrInvalidArity)
	require.ErrorIs(t, s.Add(transform.Descriptor{Kind: transform.Scale, Parameters: []float64{1, 1, 1}, Factor: 1}), transform.ErrEmptyID)
	require.ErrorIs(t, s.Add(transform.Descriptor{ID: "c", Kind: transform.Scale, Parameters: []float64{1, 1, 1}, Factor: 2}), transform.ErrOutOfRange)

	require.Equal(t, uint64(1), s.Version())
	require.Len(t, rec.changes, 1, "rejected mutations notify nobody")
}

func TestRemove(t *testing.T) {
	s, rec := newStore(t, "a", "b", "c")
	require.NoError(t, s.Remove("b"))
	require.Equal(t, []string{"a", "c"}, s.Snapshot().IDs())

	v := s.Version()
	require.ErrorIs(t, s.Remove("b"), store.ErrNotFound)
	require.Equal(t, v, s.Version())
	require.Equal(t, []store.Op{store.OpRemove}, rec.ops())
}

func TestUpdate(t *testing.T) {
	s, rec := newStore(t, "a", "b")
	require.NoError(t, s.Update("a", []float64{4, 5, 6}, 0.5))
	d, _ := s.Snapshot().Get("a")
	require.Equal(t, []float64{4, 5, 6}, d.Parameters)
	require.Equal(t, 0.5, d.Factor)

	// nil params keeps the current parameters.
	require.NoError(t, s.Update("a", nil, 0.25))
	d, _ = s.Snapshot().Get("a")
	require.Equal(t, []float64{4, 5, 6}, d.Parameters)
	require.Equal(t, 0.25, d.Factor)

	before := s.Snapshot()
	require.ErrorIs(t, s.Update("missing", []float64{1, 1, 1}, 1), store.ErrNotFound)
	require.ErrorIs(t, s.Update("a", []float64{1, 1}, 1), transform.ErrInvalidArity)
	require.ErrorIs(t, s.Update("a", []float64{1, math.Inf(1), 1}, 1), transform.ErrNonFinite)
	require.ErrorIs(t, s.Update("a", nil, -0.5), transform.ErrOutOfRange)
	require.ErrorIs(t, s.Update("a", nil, math.NaN()), transform.ErrOutOfRange)
	require.Equal(t, before, s.Snapshot(), "rejected updates leave state unchanged")
	require.Equal(t, []store.Op{store.OpUpdate, store.OpUpdate}, rec.ops())
}

func TestEditPatch(t *testing.T) {
	s, _ := newStore(t, "a")
	f := 0.4
	require.NoError(t, s.Edit("a", store.Patch{Factor: &f}))
	d, _ := s.Snapshot().Get("a")
	require.Equal(t, []float64{0, 0, 0}, d.Parameters)
	require.Equal(t, 0.4, d.Factor)

	require.NoError(t, s.Edit("a", store.Patch{Parameters: []float64{7, 8, 9}}))
	d, _ = s.Snapshot().Get("a")
	require.Equal(t, []float64{7, 8, 9}, d.Parameters)
	require.Equal(t, 0.4, d.Factor)
}

func TestReorder(t *testing.T) {
	s, rec := newStore(t, "a", "b", "c")
	require.NoError(t, s.Reorder([]string{"c", "a", "b"}))
	require.Equal(t, []string{"c", "a", "b"}, s.Snapshot().IDs())

	before := s.Snapshot()
	for _, bad := range [][]string{
		{"c", "a"},           // omits
		{"c", "a", "a"},      // duplicates
		{"c", "a", "x"},      // unknown
		{"c", "a", "b", "b"}, // too long
		nil,
	} {
		require.ErrorIs(t, s.Reorder(bad), store.ErrInvalidPermutation, "%v", bad)
	}
	require.Equal(t, before, s.Snapshot())
	require.Equal(t, []store.Op{store.OpReorder}, rec.ops())
}

func TestMove(t *testing.T) {
	s, rec := newStore(t, "a", "b", "c", "d")
	require.NoError(t, s.Move("a", 2))
	require.Equal(t, []string{"b", "c", "a", "d"}, s.Snapshot().IDs())
	require.NoError(t, s.Move("d", 0))
	require.Equal(t, []string{"d", "b", "c", "a"}, s.Snapshot().IDs())
	require.NoError(t, s.Move("c", 2)) // same position still commits
	require.Equal(t, []string{"d", "b", "c", "a"}, s.Snapshot().IDs())

	require.ErrorIs(t, s.Move("zz", 0), store.ErrNotFound)
	require.ErrorIs(t, s.Move("a", 4), store.ErrIndexOutOfRange)
	require.ErrorIs(t, s.Move("a", -1), store.ErrIndexOutOfRange)
	require.Equal(t, []store.Op{store.OpMove, store.OpMove, store.OpMove}, rec.ops())
}

func TestRename(t *testing.T) {
	s, rec := newStore(t, "a")
	require.NoError(t, s.Rename("a", "nudge right"))
	d, _ := s.Snapshot().Get("a")
	require.Equal(t, "nudge right", d.Name)
	require.ErrorIs(t, s.Rename("b", "x"), store.ErrNotFound)
	require.Equal(t, []store.Op{store.OpRename}, rec.ops())
}

func TestSetGlobalFactor(t *testing.T) {
	s, rec := newStore(t, "a")
	require.NoError(t, s.SetGlobalFactor(0))
	require.Equal(t, 0.0, s.Snapshot().GlobalFactor)
	require.ErrorIs(t, s.SetGlobalFactor(1.5), transform.ErrOutOfRange)
	require.Equal(t, 0.0, s.Snapshot().GlobalFactor)
	require.Equal(t, []store.Op{store.OpSetGlobalFactor}, rec.ops())
}

func TestClampFactors(t *testing.T) {
	s := store.New(store.WithClampFactors())
	d := translate("a", 1, 0, 0)
	d.Factor = 3
	require.NoError(t, s.Add(d))
	got, _ := s.Snapshot().Get("a")
	require.Equal(t, 1.0, got.Factor)

	require.NoError(t, s.SetGlobalFactor(-2))
	require.Equal(t, 0.0, s.Snapshot().GlobalFactor)

	require.ErrorIs(t, s.SetGlobalFactor(math.NaN()), transform.ErrOutOfRange)
}

func TestReset(t *testing.T) {
	s, rec := newStore(t, "a", "b")
	require.NoError(t, s.SetGlobalFactor(0.3))
	s.Reset()
	st := s.Snapshot()
	require.Empty(t, st.Transforms)
	require.Equal(t, 1.0, st.GlobalFactor)

	v := s.Version()
	s.Reset() // empty reset still commits
	require.Equal(t, v+1, s.Version())
	require.Equal(t, []store.Op{store.OpSetGlobalFactor, store.OpReset, store.OpReset}, rec.ops())
}

func TestRestore(t *testing.T) {
	s, rec := newStore(t, "old")
	c := transform.Collection{
		Transforms:   []transform.Descriptor{translate("x", 1, 0, 0), translate("y", 0, 1, 0)},
		GlobalFactor: 0.5,
	}
	require.NoError(t, s.Restore(c))
	st := s.Snapshot()
	require.Equal(t, []string{"x", "y"}, st.IDs())
	require.Equal(t, 0.5, st.GlobalFactor)

	c.Transforms[1].ID = "x"
	require.ErrorIs(t, s.Restore(c), store.ErrDuplicateID)
	require.Equal(t, []string{"x", "y"}, s.Snapshot().IDs())
	require.Equal(t, []store.Op{store.OpRestore}, rec.ops())
}

func TestSnapshotIsolation(t *testing.T) {
	s, _ := newStore(t, "a")
	st := s.Snapshot()
	st.Transforms[0].Parameters[0] = 42
	st.Transforms[0].ID = "hijack"
	d, ok := s.Snapshot().Get("a")
	require.True(t, ok)
	require.Equal(t, 0.0, d.Parameters[0])
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	s := store.New()
	var order []string
	unsubA := s.Subscribe(func(store.Change) { order = append(order, "a") })
	s.Subscribe(func(store.Change) { order = append(order, "b") })

	require.NoError(t, s.SetGlobalFactor(0.9))
	require.Equal(t, []string{"a", "b"}, order)

	unsubA()
	unsubA()
	require.NoError(t, s.SetGlobalFactor(0.8))
	require.Equal(t, []string{"a", "b", "b"}, order)
}

func TestListenerSeesCommittedState(t *testing.T) {
	var seen []uint64
	var s *store.Store
	s = store.New(store.WithListener(func(c store.Change) {
		// Reads inside a listener observe the commit being delivered.
		seen = append(seen, c.State.Version, s.Version())
	}))
	require.NoError(t, s.Add(translate("a", 0, 0, 0)))
	require.NoError(t, s.Remove("a"))
	require.Equal(t, []uint64{1, 1, 2, 2}, seen)
}

func TestOpString(t *testing.T) {
	require.Equal(t, "set_global_factor", store.OpSetGlobalFactor.String())
	require.Equal(t, "unknown", store.Op(0).String())
}
