package lens

import (
	"strings"

	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/internal/rollback"
	"github.com/dekarrin/lens/lens/errs"
)

// andLens is spec.md §4.6's And: a fixed sequence of lenses, all of which
// must match in order.
type andLens struct {
	*Options
	children []Lens
}

// And sequences lenses, all of which must match for And itself to match.
// Nested Ands with no type or label of their own are flattened into the
// parent's child list at construction, so chains built incrementally (for
// example appending one separator-delimited clause at a time) don't grow a
// needless tree of single-purpose wrappers.
func And(lenses []Lens, opts ...Opt) Lens {
	return &andLens{Options: newOptions(opts), children: flattenAnd(lenses)}
}

func flattenAnd(lenses []Lens) []Lens {
	var out []Lens
	for _, l := range lenses {
		if al, ok := l.(*andLens); ok && !al.HasType && !al.HasLabel && !al.IsLabel {
			out = append(out, al.children...)
			continue
		}
		out = append(out, l)
	}
	return out
}

func (l *andLens) Kind() Kind        { return KindAnd }
func (l *andLens) options() *Options { return l.Options }

func (l *andLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	var own container.Container
	if l.HasType {
		own = allocateContainer(l.Options)
	} else {
		own = parent
	}

	start := rd.PeekPos()
	for _, child := range l.children {
		if _, err := child.doGet(c, rd, own); err != nil {
			c.exitTrace(l, "get", err)
			return nil, err
		}
	}

	if !l.HasType {
		c.exitTrace(l, "get", nil)
		return nil, nil
	}

	v, err := finalizeContainerValue(l.Options, own, makeMeta(l, l.Options, start, rd))
	if err != nil {
		c.exitTrace(l, "get", err)
		return nil, err
	}
	if parent != nil {
		if err := parent.Store(v, l, rd); err != nil {
			c.exitTrace(l, "get", err)
			return nil, err
		}
	}
	c.exitTrace(l, "get", nil)
	return &v, nil
}

func (l *andLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	var own container.Container
	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		own = allocateContainer(l.Options)
		if err := prepareContainerTarget(l.Options, own, *val); err != nil {
			return "", err
		}
		if err := own.PrepareForPut(); err != nil {
			return "", err
		}
	} else {
		if val != nil {
			return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
		}
		own = parent
	}

	var sb strings.Builder
	for _, child := range l.children {
		out, err := containerPut(c, child, rd, own)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}

	if l.HasType && effectiveSettings().CheckConsumption && !own.IsFullyConsumed() {
		return "", errs.NotFullyConsumed("%s: not every item was claimed during put", describeLens(l))
	}
	return sb.String(), nil
}

// orLens is spec.md §4.6's Or: the first branch that matches wins. Or never
// owns a container of its own — whichever branch matches produces (or
// doesn't produce) the item, and that branch is responsible for storing it
// into the ancestor container Or was handed.
type orLens struct {
	*Options
	branches []Lens
}

// Or tries each lens in order, on both GET and PUT, committing to the first
// that succeeds. Nested Ors with no type/label of their own are flattened
// into the parent's branch list at construction.
func Or(lenses []Lens, opts ...Opt) Lens {
	o := newOptions(opts)
	if o.HasType {
		panic(errs.Assertion("Or does not own a container; give the type to a branch or wrap the Or in a Group instead"))
	}
	return &orLens{Options: o, branches: flattenOr(lenses)}
}

func flattenOr(lenses []Lens) []Lens {
	var out []Lens
	for _, l := range lenses {
		if ol, ok := l.(*orLens); ok && !ol.HasLabel && !ol.IsLabel {
			out = append(out, ol.branches...)
			continue
		}
		out = append(out, l)
	}
	return out
}

func (l *orLens) Kind() Kind        { return KindOr }
func (l *orLens) options() *Options { return l.Options }

func (l *orLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	var lastErr error
	for _, branch := range l.branches {
		var v *item.Value
		terr := rollback.Tentative(func() error {
			var err error
			v, err = branch.doGet(c, rd, parent)
			return err
		}, rollbackTargets(rd, parent)...)
		if terr == nil {
			c.exitTrace(l, "get", nil)
			return v, nil
		}
		lastErr = terr
		if !rollback.IsRollbackSafe(terr) {
			c.exitTrace(l, "get", terr)
			return nil, terr
		}
	}
	if lastErr == nil {
		lastErr = errs.New("%s: no branch matched", describeLens(l))
	}
	c.exitTrace(l, "get", lastErr)
	return nil, lastErr
}

func (l *orLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if val != nil {
		return "", errs.Assertion("%s: Or lenses do not carry their own item; type a branch or wrap in a Group", describeLens(l))
	}

	var lastErr error

	// Phase 1 (straight PUT): try each branch as-is, weaving against rd and
	// parent's current candidates exactly as GET left them.
	for _, branch := range l.branches {
		var out string
		terr := rollback.Tentative(func() error {
			var err error
			out, err = containerPut(c, branch, rd, parent)
			return err
		}, rollbackTargets(rd, parent)...)
		if terr == nil {
			return out, nil
		}
		lastErr = terr
		if !rollback.IsRollbackSafe(terr) {
			return "", terr
		}
	}

	// Phase 2 (cross PUT): none of the branches could weave this slot as
	// themselves, meaning the model now calls for a different branch than
	// whichever one GET originally matched here. Discard the original
	// occupant (tried via Or's own doGet, which already knows how to match
	// any branch) and retry every branch in CREATE mode.
	if rd != nil {
		discardOccupant(c, l, rd)
		for _, branch := range l.branches {
			var out string
			terr := rollback.Tentative(func() error {
				var err error
				out, err = containerPut(c, branch, nil, parent)
				return err
			}, rollbackTargets(nil, parent)...)
			if terr == nil {
				return out, nil
			}
			lastErr = terr
			if !rollback.IsRollbackSafe(terr) {
				return "", terr
			}
		}
	}

	if lastErr == nil {
		lastErr = errs.NoDefault("%s: no branch could be put", describeLens(l))
	}
	return "", lastErr
}

// repeatLens is spec.md §4.6's Repeat: the same lens matched min..max times.
// max of 0 means unlimited.
type repeatLens struct {
	*Options
	child    Lens
	min, max int
}

// Repeat matches child between min and max times (max <= 0 for unlimited).
func Repeat(child Lens, min, max int, opts ...Opt) Lens {
	return &repeatLens{Options: newOptions(opts), child: child, min: min, max: max}
}

func (l *repeatLens) Kind() Kind        { return KindRepeat }
func (l *repeatLens) options() *Options { return l.Options }

func (l *repeatLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	var own container.Container
	if l.HasType {
		own = allocateContainer(l.Options)
	} else {
		own = parent
	}

	start := rd.PeekPos()
	count := 0
	for {
		if l.max > 0 && count >= l.max {
			break
		}
		progressed, err := rollback.TentativeProgress(func() error {
			_, e := l.child.doGet(c, rd, own)
			return e
		}, rollbackTargets(rd, own)...)
		if err != nil {
			if !rollback.IsRollbackSafe(err) {
				c.exitTrace(l, "get", err)
				return nil, err
			}
			break
		}
		if !progressed {
			break
		}
		count++
	}

	if count < l.min {
		werr := errs.TooFewIterations("%s: matched %d repetitions, need at least %d", describeLens(l), count, l.min)
		c.exitTrace(l, "get", werr)
		return nil, werr
	}

	if !l.HasType {
		c.exitTrace(l, "get", nil)
		return nil, nil
	}

	v, err := finalizeContainerValue(l.Options, own, makeMeta(l, l.Options, start, rd))
	if err != nil {
		c.exitTrace(l, "get", err)
		return nil, err
	}
	if parent != nil {
		if err := parent.Store(v, l, rd); err != nil {
			c.exitTrace(l, "get", err)
			return nil, err
		}
	}
	c.exitTrace(l, "get", nil)
	return &v, nil
}

func (l *repeatLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	var own container.Container
	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		own = allocateContainer(l.Options)
		if err := prepareContainerTarget(l.Options, own, *val); err != nil {
			return "", err
		}
		if err := own.PrepareForPut(); err != nil {
			return "", err
		}
	} else {
		if val != nil {
			return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
		}
		own = parent
	}

	var sb strings.Builder
	put := 0

	// Phase A: straight PUT, weaving against rd for as long as there is
	// both an unclaimed candidate and original text left to reuse.
	for rd != nil && !own.IsFullyConsumed() && (l.max <= 0 || put < l.max) {
		out, err := containerPut(c, l.child, rd, own)
		if err != nil {
			if !rollback.IsRollbackSafe(err) {
				return "", err
			}
			break
		}
		sb.WriteString(out)
		put++
	}

	// Phase B: defaults-only PUT for whatever candidates remain once weaving
	// has run out — a pure CREATE tail, for a model that grew longer than
	// the original text had repetitions.
	for !own.IsFullyConsumed() && (l.max <= 0 || put < l.max) {
		out, err := containerPut(c, l.child, nil, own)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		put++
	}

	// Phase C: the model shrank relative to the original text. Drain
	// whatever repetitions are left in rd so they don't surface as leftover
	// unconsumed input.
	if rd != nil && (l.max <= 0 || put < l.max) {
		sink := container.NewList()
		for {
			progressed, err := rollback.TentativeProgress(func() error {
				_, e := l.child.doGet(c, rd, sink)
				return e
			}, rd)
			if err != nil || !progressed {
				break
			}
		}
	}

	if put < l.min {
		return "", errs.TooFewIterations("%s: put %d repetitions, need at least %d", describeLens(l), put, l.min)
	}

	if l.HasType && effectiveSettings().CheckConsumption && !own.IsFullyConsumed() {
		return "", errs.NotFullyConsumed("%s: not every item was claimed during put", describeLens(l))
	}
	return sb.String(), nil
}

// groupLens is spec.md §4.6's Group: a single child wrapped in its own
// container, always STORE (WithType is mandatory).
type groupLens struct {
	*Options
	child Lens
}

// Group wraps child in a container of the shape given by WithType/WithGoType
// (mandatory: Group always owns an item). Group is how a typeless And/Or
// tree is given a place in an ancestor container, and how the top-level
// Get/Put entry points wrap a typeless root lens via AutoGroup.
func Group(child Lens, opts ...Opt) Lens {
	o := newOptions(opts)
	if !o.HasType {
		panic(errs.Assertion("Group requires WithType or WithGoType (got none for %q)", o.Name))
	}
	return &groupLens{Options: o, child: child}
}

func (l *groupLens) Kind() Kind        { return KindGroup }
func (l *groupLens) options() *Options { return l.Options }

func (l *groupLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	own := allocateContainer(l.Options)
	start := rd.PeekPos()
	if _, err := l.child.doGet(c, rd, own); err != nil {
		c.exitTrace(l, "get", err)
		return nil, err
	}

	v, err := finalizeContainerValue(l.Options, own, makeMeta(l, l.Options, start, rd))
	if err != nil {
		c.exitTrace(l, "get", err)
		return nil, err
	}
	if parent != nil {
		if err := parent.Store(v, l, rd); err != nil {
			c.exitTrace(l, "get", err)
			return nil, err
		}
	}
	c.exitTrace(l, "get", nil)
	return &v, nil
}

func (l *groupLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if val == nil {
		return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
	}
	own := allocateContainer(l.Options)
	if err := prepareContainerTarget(l.Options, own, *val); err != nil {
		return "", err
	}
	if err := own.PrepareForPut(); err != nil {
		return "", err
	}
	out, err := containerPut(c, l.child, rd, own)
	if err != nil {
		return "", err
	}

	if effectiveSettings().CheckConsumption && !own.IsFullyConsumed() {
		return "", errs.NotFullyConsumed("%s: not every item was claimed during put", describeLens(l))
	}
	return out, nil
}
