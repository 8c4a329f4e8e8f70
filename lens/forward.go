package lens

import (
	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// DefaultMaxRecursionDepth bounds a Forward lens's CREATE-mode recursion
// (PUT with no reader) when Settings.MaxRecursionDepth is left at zero.
const DefaultMaxRecursionDepth = 100

// forwardLens is spec.md §4.7's Forward: a late-bound reference to another
// lens, letting a lens tree refer to itself for recursive grammars.
type forwardLens struct {
	*Options
	name    string
	bound   Lens
	isBound bool
}

func (l *forwardLens) Kind() Kind        { return KindForward }
func (l *forwardLens) options() *Options { return l.Options }

func (l *forwardLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	if !l.isBound {
		err := errs.Assertion("forward lens %q used before Bind", l.name)
		c.exitTrace(l, "get", err)
		return nil, err
	}
	v, err := l.bound.doGet(c, rd, parent)
	c.exitTrace(l, "get", err)
	return v, err
}

func (l *forwardLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if !l.isBound {
		return "", errs.Assertion("forward lens %q used before Bind", l.name)
	}

	// Recursion is only unbounded danger in CREATE mode: with a reader
	// present, each recursive descent either consumes input or fails, so the
	// call tree is bounded by the input's length. With no reader, nothing
	// stops a self-referential lens from recursing forever trying to invent
	// output, hence the depth cap.
	if rd == nil {
		limit := c.settings.MaxRecursionDepth
		if limit <= 0 {
			limit = DefaultMaxRecursionDepth
		}
		depth := c.forwardDepth[l]
		if depth >= limit {
			return "", errs.InfiniteRecursion(limit, l.name)
		}
		c.forwardDepth[l] = depth + 1
		defer func() { c.forwardDepth[l]-- }()
	}

	return l.bound.doPut(c, val, rd, parent)
}

// ForwardRef is a Forward lens reference that must be bound exactly once
// (usually to a lens tree that refers back to the ForwardRef itself) before
// use.
type ForwardRef struct {
	*forwardLens
}

// NewForward returns an unbound forward reference. Build the recursive lens
// tree using it as a placeholder, then call Bind once the full tree exists.
func NewForward(opts ...Opt) *ForwardRef {
	o := newOptions(opts)
	name := o.Name
	if name == "" {
		name = "<forward>"
	}
	return &ForwardRef{forwardLens: &forwardLens{Options: o, name: name}}
}

// Bind attaches the target lens. Bind may be called exactly once; calling it
// again panics with an *errs.AssertionError.
func (f *ForwardRef) Bind(l Lens) {
	if f.isBound {
		panic(errs.Assertion("forward lens %q already bound", f.name))
	}
	f.bound = l
	f.isBound = true
}
