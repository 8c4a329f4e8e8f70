package container

import (
	"testing"

	"github.com/dekarrin/lens/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapContainer_StoreRejectsUnlabeled(t *testing.T) {
	mc := NewMap()
	err := mc.Store(item.New("value"), fakeOptions{name: "entry"}, nil)
	assert.Error(t, err)
}

func TestMapContainer_StoreAndUnwrap(t *testing.T) {
	mc := NewMap()
	v := item.New("1")
	v.Meta.Label = "a"
	require.NoError(t, mc.Store(v, fakeOptions{name: "entry"}, nil))

	v2 := item.New("2")
	v2.Meta.Label = "b"
	require.NoError(t, mc.Store(v2, fakeOptions{name: "entry"}, nil))

	out := mc.Unwrap().(map[string]any)
	assert.Equal(t, "1", out["a"])
	assert.Equal(t, "2", out["b"])
}

func TestMapContainer_PrepareForPutFromTarget(t *testing.T) {
	mc := NewMap()
	mc.SetTarget(map[string]any{"a": "1", "b": "2"})
	require.NoError(t, mc.PrepareForPut())

	cands := mc.Candidates(fakeOptions{hasLabel: true, label: "a"})
	require.Len(t, cands, 1)
	assert.Equal(t, "1", cands[0].Raw)
	require.NoError(t, mc.Remove(fakeOptions{}, cands[0]))

	assert.False(t, mc.IsFullyConsumed())

	cands = mc.Candidates(fakeOptions{hasLabel: true, label: "b"})
	require.Len(t, cands, 1)
	require.NoError(t, mc.Remove(fakeOptions{}, cands[0]))
	assert.True(t, mc.IsFullyConsumed())
}

// TestMapContainer_SnapshotEqualNoPanic guards the same uncomparable-snapshot
// bug as ListContainer, since MapContainer inherits Snapshot/Restore (and
// thus listSnapshot) via embedding.
func TestMapContainer_SnapshotEqualNoPanic(t *testing.T) {
	mc := NewMap()
	v := item.New("1")
	v.Meta.Label = "a"
	require.NoError(t, mc.Store(v, fakeOptions{name: "entry"}, nil))

	a := mc.Snapshot()
	b := mc.Snapshot()

	assert.NotPanics(t, func() {
		eq, ok := a.(listSnapshot)
		require.True(t, ok)
		assert.True(t, eq.Equal(b))
	})
}
