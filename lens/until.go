package lens

import (
	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/internal/rollback"
	"github.com/dekarrin/lens/lens/errs"
)

// Include marks an Until lens so its stop lens's own match is folded into
// the consumed text instead of being left for whatever follows.
func Include() Opt {
	return withInclude(true)
}

// untilLens is spec.md §4.7's Until: a lazy "read everything up to here"
// matcher, consuming one character at a time until stop matches (without
// itself being consumed, unless Include() is given).
type untilLens struct {
	*Options
	stop Lens
}

// Until consumes characters up to (and, with Include(), through) the point
// where stop matches, never consuming past end of input.
func Until(stop Lens, opts ...Opt) Lens {
	return &untilLens{Options: newOptions(opts), stop: stop}
}

func (l *untilLens) Kind() Kind        { return KindUntil }
func (l *untilLens) options() *Options { return l.Options }

// stopMatchesAt reports whether l.stop matches at rd's current position,
// without consuming anything from rd.
func (l *untilLens) stopMatchesAt(c *ctx, rd *reader.Reader) bool {
	probe := rd.Clone()
	err := rollback.Tentative(func() error {
		_, e := l.stop.doGet(c, probe, container.NewList())
		return e
	}, probe)
	return err == nil
}

func (l *untilLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	start := rd.PeekPos()

	for !l.stopMatchesAt(c, rd) {
		if rd.IsExhausted() {
			werr := errs.EndOfInput("%s: reached end of input before the stop lens matched", describeLens(l))
			c.exitTrace(l, "get", werr)
			return nil, werr
		}
		if _, err := rd.ConsumeChar(); err != nil {
			werr := errs.EndOfInput("%s: reached end of input before the stop lens matched", describeLens(l))
			c.exitTrace(l, "get", werr)
			return nil, werr
		}
	}

	if l.include {
		if _, err := l.stop.doGet(c, rd, container.NewList()); err != nil {
			c.exitTrace(l, "get", err)
			return nil, err
		}
	}

	raw := rd.ConsumedSince(start)
	if raw == "" {
		werr := errs.New("%s: matched zero characters; Until must consume at least one character", describeLens(l))
		c.exitTrace(l, "get", werr)
		return nil, werr
	}

	v, err := produce(l, l.Options, raw, start, rd, parent)
	c.exitTrace(l, "get", err)
	return v, err
}

func (l *untilLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		return stringifyScalar(val.Raw)
	}

	if val != nil {
		return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
	}

	if rd != nil {
		start := rd.PeekPos()
		for !l.stopMatchesAt(c, rd) {
			if rd.IsExhausted() {
				break
			}
			if _, err := rd.ConsumeChar(); err != nil {
				break
			}
		}
		if l.include {
			_, _ = l.stop.doGet(c, rd, container.NewList())
		}
		return rd.ConsumedSince(start), nil
	}

	if l.HasDefault {
		return l.Default, nil
	}
	return "", errs.NoDefault("%s: no input and no default available", describeLens(l))
}
