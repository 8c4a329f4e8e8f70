package container

import (
	"testing"

	"github.com/dekarrin/lens/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOptions is a minimal OptionsSource stub for exercising container
// routing logic without building a real lens.
type fakeOptions struct {
	label    string
	hasLabel bool
	align    Alignment
	name     string
}

func (f fakeOptions) OptLabel() (string, bool)  { return f.label, f.hasLabel }
func (f fakeOptions) OptAlignment() Alignment   { return f.align }
func (f fakeOptions) OptName() string           { return f.name }

func TestListContainer_StoreAndCandidates(t *testing.T) {
	lc := NewList()
	require.NoError(t, lc.Store(item.New("a"), fakeOptions{}, nil))
	require.NoError(t, lc.Store(item.New("b"), fakeOptions{}, nil))

	cands := lc.Candidates(fakeOptions{align: AlignSource})
	require.Len(t, cands, 2)
	assert.Equal(t, "a", cands[0].Raw)
	assert.Equal(t, "b", cands[1].Raw)

	require.NoError(t, lc.Remove(fakeOptions{}, cands[0]))
	assert.False(t, lc.IsFullyConsumed())

	require.NoError(t, lc.Remove(fakeOptions{}, cands[1]))
	assert.True(t, lc.IsFullyConsumed())
}

func TestListContainer_RemoveUnknownItemFails(t *testing.T) {
	lc := NewList()
	require.NoError(t, lc.Store(item.New("a"), fakeOptions{}, nil))
	stray := item.New("z")
	err := lc.Remove(fakeOptions{}, &stray)
	assert.Error(t, err)
}

func TestListContainer_IsLabelDoesNotBecomeElement(t *testing.T) {
	lc := NewList()
	labelItem := item.New("mylabel")
	labelItem.Meta.IsLabel = true
	require.NoError(t, lc.Store(labelItem, fakeOptions{}, nil))

	label, ok := lc.Label()
	assert.True(t, ok)
	assert.Equal(t, "mylabel", label)
	assert.Empty(t, lc.Items())
	assert.True(t, lc.IsFullyConsumed())
}

func TestListContainer_SnapshotRestore(t *testing.T) {
	lc := NewList()
	require.NoError(t, lc.Store(item.New("a"), fakeOptions{}, nil))
	snap := lc.Snapshot()

	require.NoError(t, lc.Store(item.New("b"), fakeOptions{}, nil))
	assert.Len(t, lc.Items(), 2)

	lc.Restore(snap)
	assert.Len(t, lc.Items(), 1)
}

// TestListContainer_SnapshotEqualNoPanic guards against the panic a plain ==
// comparison would raise: listSnapshot embeds a slice and a map, so
// rollback's snapshotsEqual must go through listSnapshot.Equal rather than
// falling back to ==.
func TestListContainer_SnapshotEqualNoPanic(t *testing.T) {
	lc := NewList()
	require.NoError(t, lc.Store(item.New("a"), fakeOptions{}, nil))

	a := lc.Snapshot()
	b := lc.Snapshot()

	assert.NotPanics(t, func() {
		eq, ok := a.(listSnapshot)
		require.True(t, ok)
		assert.True(t, eq.Equal(b))
	})
}

func TestListContainer_SnapshotEqualDetectsDifference(t *testing.T) {
	lc := NewList()
	require.NoError(t, lc.Store(item.New("a"), fakeOptions{}, nil))
	before := lc.Snapshot().(listSnapshot)

	require.NoError(t, lc.Store(item.New("b"), fakeOptions{}, nil))
	after := lc.Snapshot().(listSnapshot)

	assert.False(t, before.Equal(after))
}

func TestListContainer_PrepareForPutFromTarget(t *testing.T) {
	lc := NewList()
	lc.SetTarget([]any{"x", "y", "z"})
	require.NoError(t, lc.PrepareForPut())

	cands := lc.Candidates(fakeOptions{align: AlignSource})
	require.Len(t, cands, 3)
	assert.Equal(t, "x", cands[0].Raw)

	for _, c := range cands {
		require.NoError(t, lc.Remove(fakeOptions{}, c))
	}
	assert.True(t, lc.IsFullyConsumed())
	assert.Equal(t, []any{"x", "y", "z"}, lc.Unwrap())
}
