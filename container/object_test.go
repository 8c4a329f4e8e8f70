package container

import (
	"reflect"
	"testing"

	"github.com/dekarrin/lens/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string
	Color string
}

func TestObjectContainer_StoreRoutesByLabel(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widget{}))

	nameItem := item.New("sprocket")
	nameItem.Meta.Label = "name"
	require.NoError(t, oc.Store(nameItem, fakeOptions{name: "name"}, nil))

	colorItem := item.New("red")
	colorItem.Meta.Label = "color"
	require.NoError(t, oc.Store(colorItem, fakeOptions{name: "color"}, nil))

	out := oc.Unwrap().(widget)
	assert.Equal(t, "sprocket", out.Name)
	assert.Equal(t, "red", out.Color)
}

func TestObjectContainer_StoreUnknownLabelFails(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widget{}))
	v := item.New("x")
	v.Meta.Label = "nonexistent"
	err := oc.Store(v, fakeOptions{name: "x"}, nil)
	assert.Error(t, err)
}

func TestObjectContainer_IsFullyConsumed(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widget{}))
	nameItem := item.New("sprocket")
	nameItem.Meta.Label = "name"
	require.NoError(t, oc.Store(nameItem, fakeOptions{name: "name"}, nil))

	cands := oc.Candidates(fakeOptions{hasLabel: true, label: "name"})
	require.Len(t, cands, 1)
	assert.False(t, oc.IsFullyConsumed())

	require.NoError(t, oc.Remove(fakeOptions{}, cands[0]))
	assert.True(t, oc.IsFullyConsumed())
}

// TestObjectContainer_SnapshotEqualNoPanic guards against the panic a plain
// == comparison would raise on objectSnapshot, whose fields/labelOf/claimed
// maps (and subs, for sub-container specs) are all uncomparable.
func TestObjectContainer_SnapshotEqualNoPanic(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widget{}))
	nameItem := item.New("sprocket")
	nameItem.Meta.Label = "name"
	require.NoError(t, oc.Store(nameItem, fakeOptions{name: "name"}, nil))

	a := oc.Snapshot()
	b := oc.Snapshot()

	assert.NotPanics(t, func() {
		eq, ok := a.(objectSnapshot)
		require.True(t, ok)
		assert.True(t, eq.Equal(b))
	})
}

func TestObjectContainer_SnapshotEqualDetectsDifference(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widget{}))
	nameItem := item.New("sprocket")
	nameItem.Meta.Label = "name"
	require.NoError(t, oc.Store(nameItem, fakeOptions{name: "name"}, nil))
	before := oc.Snapshot().(objectSnapshot)

	colorItem := item.New("red")
	colorItem.Meta.Label = "color"
	require.NoError(t, oc.Store(colorItem, fakeOptions{name: "color"}, nil))
	after := oc.Snapshot().(objectSnapshot)

	assert.False(t, before.Equal(after))
}

// widgetWithSub exercises ObjectContainer's sub-container routing so
// objectSnapshot's subs map (holding nested listSnapshot/objectSnapshot
// values) is covered by Equal too.
type widgetWithSub struct {
	Tags []any
}

func (*widgetWithSub) LensSubContainers() []SubContainerSpec {
	return []SubContainerSpec{
		{FieldName: "Tags", Kind: SubContainerList, StoreItemsOfType: []reflect.Type{reflect.TypeOf("")}},
	}
}

func TestObjectContainer_SubContainerSnapshotEqual(t *testing.T) {
	oc := NewObject(reflect.TypeOf(widgetWithSub{}))
	require.NoError(t, oc.Store(item.New("tag1"), fakeOptions{name: "tag"}, nil))

	a := oc.Snapshot().(objectSnapshot)
	b := oc.Snapshot().(objectSnapshot)
	assert.NotPanics(t, func() {
		assert.True(t, a.Equal(b))
	})

	require.NoError(t, oc.Store(item.New("tag2"), fakeOptions{name: "tag"}, nil))
	c := oc.Snapshot().(objectSnapshot)
	assert.False(t, a.Equal(c))
}
