package rollback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget is a minimal Rollbackable whose Snapshot returns a plain
// comparable int, exercising the == fallback path of snapshotsEqual.
type fakeTarget struct {
	n int
}

func (f *fakeTarget) Snapshot() any   { return f.n }
func (f *fakeTarget) Restore(s any)   { f.n = s.(int) }

// sliceTarget is a Rollbackable whose Snapshot returns a slice-backed value,
// mirroring container.listSnapshot: uncomparable with plain ==, so its
// snapshot type must implement comparableSnapshot (Equal) or
// TentativeProgress would panic.
type sliceTarget struct {
	items []int
}

type sliceSnapshot struct {
	items []int
}

func (s sliceSnapshot) Equal(other any) bool {
	o, ok := other.(sliceSnapshot)
	if !ok || len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

func (t *sliceTarget) Snapshot() any {
	items := make([]int, len(t.items))
	copy(items, t.items)
	return sliceSnapshot{items: items}
}

func (t *sliceTarget) Restore(s any) {
	t.items = s.(sliceSnapshot).items
}

type rollbackSafeErr struct{ msg string }

func (e rollbackSafeErr) Error() string      { return e.msg }
func (e rollbackSafeErr) RollbackSafe() bool { return true }

type fatalErr struct{ msg string }

func (e fatalErr) Error() string      { return e.msg }
func (e fatalErr) RollbackSafe() bool { return false }

func TestIsRollbackSafe(t *testing.T) {
	assert.True(t, IsRollbackSafe(nil))
	assert.True(t, IsRollbackSafe(rollbackSafeErr{"x"}))
	assert.False(t, IsRollbackSafe(fatalErr{"x"}))
	assert.False(t, IsRollbackSafe(errors.New("plain error, opts out by default")))
}

func TestTentative_RestoresOnRollbackSafeError(t *testing.T) {
	target := &fakeTarget{n: 1}
	err := Tentative(func() error {
		target.n = 2
		return rollbackSafeErr{"nope"}
	}, target)

	require.Error(t, err)
	assert.Equal(t, 1, target.n)
}

func TestTentative_LeavesStateOnFatalError(t *testing.T) {
	target := &fakeTarget{n: 1}
	err := Tentative(func() error {
		target.n = 2
		return fatalErr{"boom"}
	}, target)

	require.Error(t, err)
	assert.Equal(t, 2, target.n)
}

func TestTentative_LeavesStateOnSuccess(t *testing.T) {
	target := &fakeTarget{n: 1}
	err := Tentative(func() error {
		target.n = 2
		return nil
	}, target)

	require.NoError(t, err)
	assert.Equal(t, 2, target.n)
}

func TestTentativeProgress_ComparableSnapshot(t *testing.T) {
	target := &fakeTarget{n: 1}
	progressed, err := TentativeProgress(func() error {
		target.n = 2
		return nil
	}, target)

	require.NoError(t, err)
	assert.True(t, progressed)
}

func TestTentativeProgress_NoProgressWhenUnchanged(t *testing.T) {
	target := &fakeTarget{n: 1}
	progressed, err := TentativeProgress(func() error {
		return nil
	}, target)

	require.NoError(t, err)
	assert.False(t, progressed)
}

func TestTentativeProgress_RolledBackReportsNoProgress(t *testing.T) {
	target := &fakeTarget{n: 1}
	progressed, err := TentativeProgress(func() error {
		target.n = 99
		return rollbackSafeErr{"nope"}
	}, target)

	require.Error(t, err)
	assert.False(t, progressed)
	assert.Equal(t, 1, target.n)
}

// TestTentativeProgress_UncomparableSnapshotDoesNotPanic is the regression
// test for the panic a plain == comparison raises on a slice-backed
// snapshot: as long as the Rollbackable's Snapshot type implements
// comparableSnapshot, TentativeProgress must use that instead of ==.
func TestTentativeProgress_UncomparableSnapshotDoesNotPanic(t *testing.T) {
	target := &sliceTarget{items: []int{1, 2}}

	assert.NotPanics(t, func() {
		progressed, err := TentativeProgress(func() error {
			target.items = append(target.items, 3)
			return nil
		}, target)
		require.NoError(t, err)
		assert.True(t, progressed)
	})

	assert.NotPanics(t, func() {
		progressed, err := TentativeProgress(func() error {
			return nil
		}, target)
		require.NoError(t, err)
		assert.False(t, progressed)
	})
}
