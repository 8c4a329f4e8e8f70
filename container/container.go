// Package container implements spec.md §4.4's container protocol: the
// stateful collectors that mediate between the ordered textual occurrences a
// lens tree walks on GET/PUT and the unordered model containers (lists,
// maps, user structs) the host program actually works with.
//
// Every container is Rollbackable (internal/rollback.Rollbackable) so a
// tentative PUT attempt against one candidate can be undone and another
// candidate tried.
package container

import (
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// Alignment is the ordering policy a container applies to PUT-side
// candidates, per spec.md §4.4.
type Alignment int

const (
	// AlignModel returns only the first item in insertion (model) order.
	AlignModel Alignment = iota

	// AlignSource returns all items sorted ascending by concrete start
	// offset; items with no concrete origin (freshly created) sort last.
	AlignSource

	// AlignLabel is reserved for future use; it currently behaves like
	// AlignModel.
	AlignLabel
)

// OptionsSource is the minimal view of a lens's options a container needs in
// order to route and order items: its static label (if any) and its
// alignment mode. lens.Lens values implement this structurally so this
// package never has to import the lens package.
type OptionsSource interface {
	// OptLabel returns the lens's static label and whether it has one.
	OptLabel() (string, bool)

	// OptAlignment returns the alignment mode to use when this lens
	// requests candidates from a container.
	OptAlignment() Alignment

	// OptName returns a friendly name for diagnostics, or "" if unnamed.
	OptName() string
}

// Container is the protocol every list, map, and object container
// implements.
type Container interface {
	// Store appends item v on the GET side. If v.Meta.IsLabel is set, v is
	// not stored as an element; it becomes the container's own label
	// instead (retrievable via Label).
	Store(v item.Value, origin OptionsSource, rd *reader.Reader) error

	// Candidates returns, in the order a PUTting lens should try them, the
	// items eligible for lens per its static label (if any) and the
	// container's alignment mode.
	Candidates(lens OptionsSource) []*item.Value

	// Remove deletes the given candidate (matched by identity) from the
	// container. It is an error to remove an item not currently held.
	Remove(lens OptionsSource, v *item.Value) error

	// PrepareForPut wraps a raw native collection (set via SetTarget on the
	// concrete container type) into metadata-carrying items, the reciprocal
	// of Unwrap.
	PrepareForPut() error

	// Unwrap converts the container's contents back into a native Go
	// value: []any, map[string]any, or a populated struct pointer.
	Unwrap() any

	// IsFullyConsumed reports whether every item has been claimed by a PUT.
	IsFullyConsumed() bool

	// Label returns the container's own label, if an is_label child has set
	// one.
	Label() (string, bool)

	// SetLabel seeds the container's label for PUT, the reciprocal of Label:
	// a dynamic-label lens (AsLabel) reads it back via Candidates/Label to
	// render the key half of a map entry.
	SetLabel(label string)

	Snapshot() any
	Restore(state any)
}

// orderCandidates applies spec.md §4.4's alignment policy to a raw slice of
// stored items, given the requesting lens's options. It never mutates src.
func orderCandidates(src []*item.Value, lens OptionsSource) []*item.Value {
	if label, ok := lens.OptLabel(); ok {
		out := make([]*item.Value, 0, len(src))
		for _, it := range src {
			if it.Meta.Label == label || it.Meta.AttrLabel == label {
				out = append(out, it)
			}
		}
		return out
	}

	switch lens.OptAlignment() {
	case AlignSource:
		out := make([]*item.Value, len(src))
		copy(out, src)
		sortBySourcePos(out)
		return out
	case AlignModel, AlignLabel:
		fallthrough
	default:
		if len(src) == 0 {
			return nil
		}
		return src[:1]
	}
}

// sortBySourcePos sorts items ascending by concrete start offset, in place,
// with items lacking a concrete origin (newly created items) sorted last.
// Plain insertion sort: candidate lists are small (one per textual
// occurrence in a single container), so there is no need for sort.Slice's
// overhead or its loss of a stable, dependency-free implementation.
func sortBySourcePos(items []*item.Value) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func less(a, b *item.Value) bool {
	aHas, bHas := a.Meta.HasConcreteOrigin(), b.Meta.HasConcreteOrigin()
	if aHas && !bHas {
		return true
	}
	if !aHas && bHas {
		return false
	}
	if !aHas && !bHas {
		return false
	}
	return a.Meta.ConcreteStart < b.Meta.ConcreteStart
}

// errNoCandidate is raised by combinators when a container holds no item a
// given lens may claim.
func errNoCandidate(lens OptionsSource) error {
	name := lens.OptName()
	if name == "" {
		name = "<anonymous>"
	}
	return errs.NoTokenToConsume("no token available in container for lens %q", name)
}
