package container

import (
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// ListContainer is the ordered-sequence container: every stored item is
// kept as an element, in insertion order, with no notion of a key. It
// unwraps to a native []any.
type ListContainer struct {
	items    []*item.Value
	label    string
	hasLabel bool
	claimed  map[*item.Value]bool

	// target, if set via SetTarget, is the raw []any to wrap on
	// PrepareForPut.
	target    []any
	hasTarget bool

	// pending, if set via SetTargetItems, is used as-is by PrepareForPut in
	// place of re-deriving items from target. This lets callers that already
	// hold per-element metadata (auto_list/combine_chars re-wrapping) hand
	// it over directly instead of losing it through a raw []any round trip.
	pending    []*item.Value
	hasPending bool
}

// NewList returns an empty ListContainer.
func NewList() *ListContainer {
	return &ListContainer{claimed: make(map[*item.Value]bool)}
}

// SetTarget supplies the raw list PrepareForPut should wrap into items.
func (lc *ListContainer) SetTarget(v []any) {
	lc.target = v
	lc.hasTarget = true
}

// SetTargetItems supplies already metadata-carrying items directly, bypassing
// the raw-value wrapping PrepareForPut otherwise performs.
func (lc *ListContainer) SetTargetItems(items []*item.Value) {
	lc.pending = items
	lc.hasPending = true
}

// Items returns the container's current elements (excluding its label, if
// any), in insertion order. Unlike Unwrap, metadata is preserved; combinators
// that implement auto_list/combine_chars need this to piggyback the
// metadata of the element(s) they collapse.
func (lc *ListContainer) Items() []*item.Value {
	out := make([]*item.Value, len(lc.items))
	copy(out, lc.items)
	return out
}

// Store implements Container.
func (lc *ListContainer) Store(v item.Value, origin OptionsSource, rd *reader.Reader) error {
	if v.Meta.IsLabel {
		s, ok := v.Raw.(string)
		if !ok {
			return errs.Assertion("is_label item must be a string, got %T", v.Raw)
		}
		lc.label = s
		lc.hasLabel = true
		return nil
	}
	vv := v
	lc.items = append(lc.items, &vv)
	return nil
}

// Candidates implements Container.
func (lc *ListContainer) Candidates(lens OptionsSource) []*item.Value {
	avail := make([]*item.Value, 0, len(lc.items))
	for _, it := range lc.items {
		if !lc.claimed[it] {
			avail = append(avail, it)
		}
	}
	return orderCandidates(avail, lens)
}

// Remove implements Container.
func (lc *ListContainer) Remove(lens OptionsSource, v *item.Value) error {
	if lc.claimed[v] {
		return errs.Assertion("item already removed from list container")
	}
	for _, it := range lc.items {
		if it == v {
			lc.claimed[v] = true
			return nil
		}
	}
	return errNoCandidate(lens)
}

// PrepareForPut implements Container.
func (lc *ListContainer) PrepareForPut() error {
	if lc.hasPending {
		lc.items = lc.pending
		lc.claimed = make(map[*item.Value]bool)
		return nil
	}
	if !lc.hasTarget {
		return nil
	}
	lc.items = lc.items[:0]
	lc.claimed = make(map[*item.Value]bool)
	for _, raw := range lc.target {
		v := item.EnableMeta(raw)
		vv := v
		lc.items = append(lc.items, &vv)
	}
	return nil
}

// Unwrap implements Container.
func (lc *ListContainer) Unwrap() any {
	out := make([]any, len(lc.items))
	for i, it := range lc.items {
		out[i] = item.Unwrap(*it)
	}
	return out
}

// IsFullyConsumed implements Container.
func (lc *ListContainer) IsFullyConsumed() bool {
	for _, it := range lc.items {
		if !lc.claimed[it] {
			return false
		}
	}
	return true
}

// Label implements Container.
func (lc *ListContainer) Label() (string, bool) {
	return lc.label, lc.hasLabel
}

// SetLabel implements Container.
func (lc *ListContainer) SetLabel(label string) {
	lc.label = label
	lc.hasLabel = true
}

type listSnapshot struct {
	items    []*item.Value
	label    string
	hasLabel bool
	claimed  map[*item.Value]bool
}

// Snapshot implements rollback.Rollbackable with deep-copy semantics: the
// slice and claimed-set backing arrays are copied so subsequent mutation of
// lc is invisible to the snapshot.
func (lc *ListContainer) Snapshot() any {
	items := make([]*item.Value, len(lc.items))
	copy(items, lc.items)
	claimed := make(map[*item.Value]bool, len(lc.claimed))
	for k, v := range lc.claimed {
		claimed[k] = v
	}
	return listSnapshot{items: items, label: lc.label, hasLabel: lc.hasLabel, claimed: claimed}
}

// Equal implements the comparableSnapshot contract documented in
// internal/rollback, since items and claimed make listSnapshot
// uncomparable with plain ==.
func (s listSnapshot) Equal(other any) bool {
	o, ok := other.(listSnapshot)
	if !ok {
		return false
	}
	if s.label != o.label || s.hasLabel != o.hasLabel {
		return false
	}
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	if len(s.claimed) != len(o.claimed) {
		return false
	}
	for k, v := range s.claimed {
		if ov, present := o.claimed[k]; !present || ov != v {
			return false
		}
	}
	return true
}

// Restore implements rollback.Rollbackable.
func (lc *ListContainer) Restore(state any) {
	s, ok := state.(listSnapshot)
	if !ok {
		panic("ListContainer: Restore given a snapshot of unexpected type")
	}
	lc.items = s.items
	lc.label = s.label
	lc.hasLabel = s.hasLabel
	lc.claimed = s.claimed
}
