package lens

import (
	"io"
	"sync"

	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// Settings is spec.md §4.8/§6's process-wide-by-default configuration for
// the top-level Get/Put entry points.
type Settings struct {
	// CheckConsumption requires Get to consume the entire input and Put (when
	// given original text) to weave the entire original text, raising
	// *errs.NotFullyConsumedError otherwise. Defaults to true.
	CheckConsumption bool

	// MaxRecursionDepth bounds a Forward lens's CREATE-mode recursion. Zero
	// means DefaultMaxRecursionDepth.
	MaxRecursionDepth int

	traceWriter io.Writer
}

// DefaultSettings returns the library's out-of-the-box settings:
// consumption checking on, default recursion depth.
func DefaultSettings() Settings {
	return Settings{CheckConsumption: true}
}

var (
	settingsMu sync.Mutex
	current    = DefaultSettings()
)

// WithSettings runs fn with s as the effective settings for every Get/Put
// call made during fn, restoring whatever was previously in effect
// afterward — a scoped override rather than a permanent mutation of process
// state, per spec.md §9's guidance on global configuration.
func WithSettings(s Settings, fn func()) {
	settingsMu.Lock()
	prev := current
	current = s
	settingsMu.Unlock()

	defer func() {
		settingsMu.Lock()
		current = prev
		settingsMu.Unlock()
	}()

	fn()
}

func effectiveSettings() Settings {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	return current
}

// coerceRootLens implements spec.md §6's surface-API coercions: a bare
// string is lifted to a self-matching Literal, and any typeless lens is
// wrapped in AutoGroup so Get always has something to hand back.
func coerceRootLens(l any) (Lens, error) {
	switch t := l.(type) {
	case Lens:
		if !t.options().HasType {
			return AutoGroup(t), nil
		}
		return t, nil
	case string:
		return Literal(t, WithType("")), nil
	default:
		return nil, errs.Assertion("lens: unsupported root value of type %T; pass a Lens or a string", l)
	}
}

// Get parses input against l (a Lens, or a string lifted to a self-matching
// Literal), returning the model value it produces.
func Get(l any, input string) (any, error) {
	lens, err := coerceRootLens(l)
	if err != nil {
		return nil, err
	}

	s := effectiveSettings()
	c := newCtx(s)
	if s.traceWriter != nil {
		c.trace = newTracer(s.traceWriter)
	}

	rd := reader.New(input)
	v, err := lens.doGet(c, rd, nil)
	if err != nil {
		return nil, err
	}
	if s.CheckConsumption && !rd.IsExhausted() {
		return nil, errs.NotFullyConsumed("unconsumed input remains: %q", rd.Remaining())
	}
	if v == nil {
		return nil, nil
	}
	return item.Unwrap(*v), nil
}

// PutOption configures a single Put call.
type PutOption func(*putConfig)

type putConfig struct {
	original *string
}

// WithOriginal supplies the original text Put should weave val against,
// reusing as much of it as still applies. Without it, Put performs a pure
// CREATE: every lens in the tree falls back to its default/literal text.
func WithOriginal(text string) PutOption {
	return func(pc *putConfig) { pc.original = &text }
}

// Put renders val back to text via l (a Lens, or a string lifted to a
// self-matching Literal), optionally weaving it against original text
// supplied via WithOriginal.
func Put(l any, val any, opts ...PutOption) (string, error) {
	lens, err := coerceRootLens(l)
	if err != nil {
		return "", err
	}
	pc := &putConfig{}
	for _, o := range opts {
		o(pc)
	}

	s := effectiveSettings()
	c := newCtx(s)
	if s.traceWriter != nil {
		c.trace = newTracer(s.traceWriter)
	}

	var rd *reader.Reader
	if pc.original != nil {
		rd = reader.New(*pc.original)
	}

	var iv *item.Value
	if lens.options().HasType {
		v := item.EnableMeta(val)
		iv = &v
	} else if val != nil {
		return "", errs.Assertion("lens: the root lens given to Put has no type; it cannot accept a value")
	}

	out, err := lens.doPut(c, iv, rd, nil)
	if err != nil {
		return "", err
	}
	if s.CheckConsumption && rd != nil && !rd.IsExhausted() {
		return "", errs.NotFullyConsumed("put did not consume all of the original text: %q remains", rd.Remaining())
	}
	return out, nil
}
