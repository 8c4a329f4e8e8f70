// Package item implements the metadata-carrying value that flows across
// every lens boundary: spec.md §3's "item metadata" and §4.3's wrappers.
//
// Go has no way to attach a mutable property bag to a built-in string, int,
// float64, bool, slice or map the way pylens subclasses str/int/float/list/
// dict. Value plays the role those subclasses play: it pairs a raw Go value
// with a Meta bag, and EnableMeta is the idempotent "wrap if not already
// wrapped" operation spec.md §4.3 requires.
package item

import "github.com/dekarrin/lens/internal/reader"

// Meta is the property bag spec.md §3 attaches to every item.
type Meta struct {
	// OriginLens identifies the lens that produced this item on GET. It is
	// compared by equality (pointer identity for lenses, which are
	// constructed once and referenced thereafter) for container routing and
	// for the static-label alignment policy.
	OriginLens any

	// ConcreteStart and ConcreteEnd are byte offsets into the source the
	// item originated from, valid only when ConcreteSource is non-nil.
	ConcreteStart, ConcreteEnd int

	// ConcreteSource is the reader the item was read from, or nil for an
	// item that was freshly created (no concrete origin).
	ConcreteSource *reader.Reader

	// Label is the key by which a container may address this item.
	Label string

	// IsLabel marks that this item should become its enclosing container's
	// label rather than one of its elements.
	IsLabel bool

	// AttrLabel is the label used when this item is mapped to a named
	// attribute of an object container, which may differ from Label when a
	// static label option is also present.
	AttrLabel string

	// SingletonMeta piggybacks the metadata of the single element that
	// auto_list unwrapped, so re-wrapping on PUT can restore it verbatim.
	// See spec.md §9's "Open question" about the limits of this piggyback.
	SingletonMeta *Meta
}

// HasConcreteOrigin reports whether the item has a known position in a
// source reader.
func (m Meta) HasConcreteOrigin() bool {
	return m.ConcreteSource != nil
}

// Value is a metadata-carrying item. Raw holds the underlying Go value:
// string, int, float64, bool, []Value, map[string]Value, or a value
// implementing the Unwrapper interface for user object containers.
type Value struct {
	Raw  any
	Meta Meta
}

// Unwrapper is implemented by native values (such as object containers)
// whose Raw form needs a final conversion step before being handed back to
// the caller of Get, or accepted from the caller of Put.
type Unwrapper interface {
	LensUnwrap() any
}

// New wraps raw in a fresh Value with zero metadata.
func New(raw any) Value {
	return Value{Raw: raw}
}

// WithMeta returns a copy of v with its metadata replaced.
func (v Value) WithMeta(m Meta) Value {
	v.Meta = m
	return v
}

// EnableMeta wraps x in a Value if it is not already one. It is idempotent:
// EnableMeta(EnableMeta(x)) is identical, value and reference, to
// EnableMeta(x), satisfying spec.md §4.3 and §8's idempotence property.
func EnableMeta(x any) Value {
	if v, ok := x.(Value); ok {
		return v
	}
	return New(x)
}

// Unwrap strips metadata from v, returning its underlying Go value. If Raw
// implements Unwrapper, that conversion is applied first.
func Unwrap(v Value) any {
	if u, ok := v.Raw.(Unwrapper); ok {
		return u.LensUnwrap()
	}
	return v.Raw
}
