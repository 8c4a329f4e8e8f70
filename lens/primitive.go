package lens

import (
	"fmt"

	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/charset"
	"github.com/dekarrin/lens/lens/errs"
)

// describeLens renders a lens's friendly name (or its kind, if unnamed) for
// error messages and debug traces.
func describeLens(l Lens) string {
	o := l.options()
	if o.Name != "" {
		return fmt.Sprintf("%s(%s)", l.Kind(), o.Name)
	}
	return l.Kind().String()
}

func produce(l Lens, o *Options, raw string, start int, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	if !o.HasType {
		return nil, nil
	}
	val, err := coerceScalar(o, raw)
	if err != nil {
		return nil, err
	}
	v := item.New(val)
	v.Meta = makeMeta(l, o, start, rd)
	if parent != nil {
		if err := parent.Store(v, l, rd); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

// anyOfLens is spec.md §4.5's AnyOf: a single-character matcher against a
// charset, optionally negated.
type anyOfLens struct {
	*Options
	set    charset.Set
	negate bool
}

// AnyOf matches (or, with Negate(), rejects) a single character from set.
func AnyOf(set charset.Set, opts ...Opt) Lens {
	return &anyOfLens{Options: newOptions(opts), set: set}
}

// AnyOfNot matches a single character not present in set.
func AnyOfNot(set charset.Set, opts ...Opt) Lens {
	l := &anyOfLens{Options: newOptions(opts), set: set, negate: true}
	return l
}

func (l *anyOfLens) Kind() Kind       { return KindAnyOf }
func (l *anyOfLens) options() *Options { return l.Options }

func (l *anyOfLens) matches(r rune) bool {
	m := l.set(r)
	if l.negate {
		return !m
	}
	return m
}

func (l *anyOfLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	start := rd.PeekPos()
	ru, err := rd.ConsumeChar()
	if err != nil {
		werr := errs.EndOfInput("%s: unexpected end of input", describeLens(l))
		c.exitTrace(l, "get", werr)
		return nil, werr
	}
	if !l.matches(ru) {
		rd.Seek(start)
		werr := errs.New("%s: character %q not in expected set", describeLens(l), ru)
		c.exitTrace(l, "get", werr)
		return nil, werr
	}
	v, err := produce(l, l.Options, string(ru), start, rd, parent)
	c.exitTrace(l, "get", err)
	return v, err
}

func (l *anyOfLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		s, err := stringifyScalar(val.Raw)
		if err != nil {
			return "", err
		}
		runes := []rune(s)
		if len(runes) != 1 {
			return "", errs.New("%s: value %q is not exactly one character", describeLens(l), s)
		}
		if !l.matches(runes[0]) {
			return "", errs.New("%s: value %q is not in the expected character set", describeLens(l), s)
		}
		return s, nil
	}

	if val != nil {
		return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
	}
	if rd != nil {
		start := rd.PeekPos()
		ru, err := rd.ConsumeChar()
		if err == nil {
			if l.matches(ru) {
				return string(ru), nil
			}
			rd.Seek(start)
			return "", errs.New("%s: input character %q does not match this lens", describeLens(l), ru)
		}
	}
	if l.HasDefault {
		return l.Default, nil
	}
	return "", errs.NoDefault("%s: no input and no default available", describeLens(l))
}

// literalLens is spec.md §4.5's Literal: an exact constant string matcher.
type literalLens struct {
	*Options
	text string
}

// Literal matches (and, by default, PUTs) the exact string s.
func Literal(s string, opts ...Opt) Lens {
	return &literalLens{Options: newOptions(opts), text: s}
}

func (l *literalLens) Kind() Kind        { return KindLiteral }
func (l *literalLens) options() *Options { return l.Options }

func (l *literalLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	start := rd.PeekPos()
	got, err := rd.ConsumeExact(len(l.text))
	if err != nil {
		werr := errs.EndOfInput("%s: expected %q, ran out of input", describeLens(l), l.text)
		c.exitTrace(l, "get", werr)
		return nil, werr
	}
	if got != l.text {
		rd.Seek(start)
		werr := errs.New("%s: expected %q, got %q", describeLens(l), l.text, got)
		c.exitTrace(l, "get", werr)
		return nil, werr
	}
	v, err := produce(l, l.Options, got, start, rd, parent)
	c.exitTrace(l, "get", err)
	return v, err
}

func (l *literalLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		s, err := stringifyScalar(val.Raw)
		if err != nil {
			return "", err
		}
		if s != l.text {
			return "", errs.New("%s: value %q does not equal literal %q", describeLens(l), s, l.text)
		}
		return s, nil
	}

	if val != nil {
		return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
	}
	if rd != nil {
		start := rd.PeekPos()
		got, err := rd.ConsumeExact(len(l.text))
		if err == nil && got == l.text {
			return got, nil
		}
		rd.Seek(start)
	}
	return l.text, nil
}

// emptyLens is spec.md §4.5's Empty: matches the empty string, optionally
// requiring the reader to be at the start or end of the text.
type emptyLens struct {
	*Options
}

// Empty matches the empty string unconditionally.
func Empty(opts ...Opt) Lens {
	return &emptyLens{Options: newOptions(opts)}
}

// EmptyAt is Empty with an additional positional assertion.
func EmptyAt(mode EmptyMode, opts ...Opt) Lens {
	return &emptyLens{Options: newOptions(append(opts, withEmptyMode(mode)))}
}

func (l *emptyLens) Kind() Kind        { return KindEmpty }
func (l *emptyLens) options() *Options { return l.Options }

func (l *emptyLens) checkPosition(rd *reader.Reader) error {
	switch l.emptyMode {
	case EmptyStartOfText:
		if rd.PeekPos() != 0 {
			return errs.New("%s: not at start of text", describeLens(l))
		}
	case EmptyEndOfText:
		if !rd.IsExhausted() {
			return errs.New("%s: not at end of text", describeLens(l))
		}
	}
	return nil
}

func (l *emptyLens) doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error) {
	c.enterTrace(l, "get", rd)
	if err := l.checkPosition(rd); err != nil {
		c.exitTrace(l, "get", err)
		return nil, err
	}
	start := rd.PeekPos()
	v, err := produce(l, l.Options, "", start, rd, parent)
	c.exitTrace(l, "get", err)
	return v, err
}

func (l *emptyLens) doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error) {
	c.enterTrace(l, "put", rd)
	defer func() { c.exitTrace(l, "put", nil) }()

	if l.HasType {
		if val == nil {
			return "", errs.Assertion("%s: STORE lens given no item to put", describeLens(l))
		}
		s, ok := val.Raw.(string)
		if !ok || s != "" {
			return "", errs.New("%s: expected the empty string", describeLens(l))
		}
		return "", nil
	}
	if val != nil {
		return "", errs.Assertion("%s: non-STORE lens given an item to put", describeLens(l))
	}
	if rd != nil {
		if err := l.checkPosition(rd); err != nil {
			return "", err
		}
	}
	return "", nil
}
