package container

import (
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// MapContainer is, per spec.md §4.4, "built atop the list container": items
// carry labels, unwrap converts them to a map keyed by label, and storing an
// unlabeled item is a fatal error.
type MapContainer struct {
	*ListContainer
	target    map[string]any
	hasTarget bool
}

// NewMap returns an empty MapContainer.
func NewMap() *MapContainer {
	return &MapContainer{ListContainer: NewList()}
}

// SetTarget supplies the raw map PrepareForPut should wrap into items.
func (mc *MapContainer) SetTarget(v map[string]any) {
	mc.target = v
	mc.hasTarget = true
}

// Store implements Container, rejecting items with no label.
func (mc *MapContainer) Store(v item.Value, origin OptionsSource, rd *reader.Reader) error {
	if v.Meta.IsLabel {
		return mc.ListContainer.Store(v, origin, rd)
	}
	if v.Meta.Label == "" {
		name := origin.OptName()
		if name == "" {
			name = "<anonymous>"
		}
		return errs.Fatal("map container: item produced by lens %q has no label", name)
	}
	return mc.ListContainer.Store(v, origin, rd)
}

// PrepareForPut implements Container, wrapping mc.target's entries. Map
// iteration order is not stable, but that's immaterial here: the resulting
// items only ever get selected via the static-label alignment policy (a
// map-typed lens's children always carry a static label, per spec.md §4.4),
// never via AlignModel/AlignSource position.
func (mc *MapContainer) PrepareForPut() error {
	if !mc.hasTarget {
		return nil
	}
	mc.items = mc.items[:0]
	mc.claimed = make(map[*item.Value]bool)
	for k, raw := range mc.target {
		v := item.EnableMeta(raw)
		v.Meta.Label = k
		vv := v
		mc.items = append(mc.items, &vv)
	}
	return nil
}

// Unwrap implements Container, producing a map[string]any keyed by label.
func (mc *MapContainer) Unwrap() any {
	out := make(map[string]any, len(mc.items))
	for _, it := range mc.items {
		out[it.Meta.Label] = item.Unwrap(*it)
	}
	return out
}
