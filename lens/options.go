// Package lens implements spec.md's lens algebra: the primitive and
// combinator lenses, the Forward/Until reference lenses, and the utility
// lenses built on top of them, together with the top-level GET/PUT driver.
//
// A Lens is a value that simultaneously knows how to read a structured model
// value out of a piece of concrete text (Get) and how to weave a model value
// back into text (Put), reusing as much of an optionally-supplied original
// text as still applies.
package lens

import (
	"fmt"
	"reflect"

	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/lens/errs"
)

// Kind identifies which of the nine lens variants a Lens value is. Spec.md
// §9 suggests modeling the algebra as a tagged union; in Go, Kind plays the
// role of the tag while each variant is still its own concrete type
// implementing the shared Lens interface, which keeps the type-specific
// fields out of a single bloated struct while still letting callers
// exhaustively switch on Kind for diagnostics.
type Kind int

const (
	KindAnyOf Kind = iota
	KindLiteral
	KindEmpty
	KindAnd
	KindOr
	KindRepeat
	KindGroup
	KindForward
	KindUntil
)

func (k Kind) String() string {
	switch k {
	case KindAnyOf:
		return "AnyOf"
	case KindLiteral:
		return "Literal"
	case KindEmpty:
		return "Empty"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindRepeat:
		return "Repeat"
	case KindGroup:
		return "Group"
	case KindForward:
		return "Forward"
	case KindUntil:
		return "Until"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// EmptyMode restricts where an Empty lens may match, per spec.md §4.5.
type EmptyMode int

const (
	// EmptyAnywhere matches the empty string at any reader position.
	EmptyAnywhere EmptyMode = iota
	// EmptyStartOfText additionally requires the reader to be at position 0.
	EmptyStartOfText
	// EmptyEndOfText additionally requires the reader to be exhausted.
	EmptyEndOfText
)

// Options is the common property bag every lens variant carries, per
// spec.md §3's "Lens" data model entry.
type Options struct {
	HasType bool
	Type    reflect.Type

	HasDefault bool
	Default    string

	Name string

	HasLabel bool
	Label    string

	IsLabel      bool
	AutoList     bool
	CombineChars bool
	Alignment    container.Alignment

	emptyMode EmptyMode
	include   bool // Until's include flag
}

// OptLabel implements container.OptionsSource.
func (o *Options) OptLabel() (string, bool) { return o.Label, o.HasLabel }

// OptAlignment implements container.OptionsSource.
func (o *Options) OptAlignment() container.Alignment { return o.Alignment }

// OptName implements container.OptionsSource.
func (o *Options) OptName() string { return o.Name }

// Opt configures a lens at construction time, spec.md §6's option
// vocabulary.
type Opt func(*Options)

// WithType makes the lens a STORE lens whose model value has the shape of
// sample: reflect.TypeOf(sample) determines, via its Kind, whether a list,
// map, or object container is allocated (Slice, Map, or Struct respectively)
// or whether the lens is a plain scalar STORE (string, int, float64, bool).
// WithType and WithDefault are mutually exclusive, per spec.md §3 invariant
// 1; combining them panics with an *errs.AssertionError when the lens is
// constructed.
func WithType(sample any) Opt {
	return func(o *Options) {
		o.HasType = true
		o.Type = reflect.TypeOf(sample)
	}
}

// WithGoType is WithType for cases where a zero value of the desired type
// can't be constructed inline (for example an interface type); it takes the
// reflect.Type directly.
func WithGoType(t reflect.Type) Opt {
	return func(o *Options) {
		o.HasType = true
		o.Type = t
	}
}

// WithDefault sets the output this lens produces on CREATE (PUT with no
// original text and no supplied item for a non-STORE lens).
func WithDefault(s string) Opt {
	return func(o *Options) {
		o.HasDefault = true
		o.Default = s
	}
}

// WithName attaches a friendly name used in diagnostics and debug traces.
func WithName(name string) Opt {
	return func(o *Options) { o.Name = name }
}

// WithLabel gives the lens a static label: inside a container, the lens
// will only ever select items whose label equals s.
func WithLabel(s string) Opt {
	return func(o *Options) {
		o.HasLabel = true
		o.Label = s
	}
}

// AsLabel marks that the item this lens produces becomes its enclosing
// container's label rather than one of its elements. Implies a string-typed
// lens.
func AsLabel() Opt {
	return func(o *Options) { o.IsLabel = true }
}

// AutoList marks a list-typed lens so that a single-element list is
// unwrapped to its lone element on GET and re-wrapped on PUT.
func AutoList() Opt {
	return func(o *Options) { o.AutoList = true }
}

// CombineChars marks a list-typed lens of characters (or, per
// SPEC_FULL.md's supplemented semantics, of short strings) so its elements
// are joined into a single string on GET and split back into a list on PUT.
func CombineChars() Opt {
	return func(o *Options) { o.CombineChars = true }
}

// WithAlignment sets the candidate-ordering policy a container-typed lens
// uses when PUTting its children.
func WithAlignment(a container.Alignment) Opt {
	return func(o *Options) { o.Alignment = a }
}

// withEmptyMode is internal to Empty's constructor.
func withEmptyMode(m EmptyMode) Opt {
	return func(o *Options) { o.emptyMode = m }
}

// withInclude is internal to Until's constructor.
func withInclude(v bool) Opt {
	return func(o *Options) { o.include = v }
}

func newOptions(opts []Opt) *Options {
	o := &Options{}
	for _, f := range opts {
		f(o)
	}
	if o.HasType && o.HasDefault {
		panic(errs.Assertion("a lens may not have both type and default (invariant violated by %q)", o.Name))
	}
	return o
}

// containerKind classifies o.Type for allocation purposes.
type containerKind int

const (
	containerNone containerKind = iota
	containerList
	containerMap
	containerObject
)

func (o *Options) containerKind() containerKind {
	if !o.HasType {
		return containerNone
	}
	switch o.Type.Kind() {
	case reflect.Slice:
		return containerList
	case reflect.Map:
		return containerMap
	case reflect.Struct:
		return containerObject
	default:
		return containerNone
	}
}
