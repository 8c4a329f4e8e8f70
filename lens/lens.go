package lens

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// Lens is the interface every lens variant satisfies: the tagged-union
// discriminator (Kind), the shared option accessors container.Container
// needs for routing (embedded via container.OptionsSource), and the
// internal GET/PUT dispatch methods. The dispatch methods are unexported,
// so Lens can only be implemented from within this package — callers always
// work through the constructors (AnyOf, Literal, And, ...) and the Get/Put
// entry points.
type Lens interface {
	container.OptionsSource

	// Kind reports which of the nine variants this lens is.
	Kind() Kind

	options() *Options

	// doGet consumes from rd (if non-nil) and returns the item this lens
	// produced, or nil if it is not a STORE lens. parent is the container
	// any produced item should additionally be stored into (nil at the
	// true root of a call). rd may be nil only when called from doPut's
	// GET-and-discard helper never applies to doGet itself; doGet always
	// has a reader.
	doGet(c *ctx, rd *reader.Reader, parent container.Container) (*item.Value, error)

	// doPut produces this lens's output fragment. val is the item to PUT,
	// or nil for a non-STORE lens (which must not be given one). rd is the
	// original-text reader to weave against, or nil for pure CREATE. parent
	// is the container candidates for this lens's children, if any, should
	// be drawn from/stored into.
	doPut(c *ctx, val *item.Value, rd *reader.Reader, parent container.Container) (string, error)
}

// ctx threads per-call state through a single Get or Put invocation:
// effective settings, the optional debug tracer, and Forward's recursion
// depth counters (reset at the start of every top-level call, per spec.md
// §5's recursion guarantee).
type ctx struct {
	settings     Settings
	trace        *tracer
	forwardDepth map[*forwardLens]int
}

func newCtx(s Settings) *ctx {
	return &ctx{settings: s, forwardDepth: make(map[*forwardLens]int)}
}

// enterTrace/exitTrace are no-ops when tracing isn't enabled; see debug.go.
func (c *ctx) enterTrace(l Lens, mode string, rd *reader.Reader) {
	if c.trace != nil {
		c.trace.enter(l, mode, rd)
	}
}

func (c *ctx) exitTrace(l Lens, mode string, err error) {
	if c.trace != nil {
		c.trace.exit(l, mode, err)
	}
}

// makeMeta builds the metadata a produced item carries, including a frozen
// clone of rd positioned at start: the item's "own reader", used by the PUT
// weaving logic (weave.go's reconcile) to keep reading a misaligned or
// reordered item's original text independent of wherever the live, shared
// outer reader has since moved on to.
func makeMeta(l Lens, o *Options, start int, rd *reader.Reader) item.Meta {
	src := rd.Clone()
	src.Seek(start)
	return item.Meta{
		OriginLens:     l,
		ConcreteStart:  start,
		ConcreteEnd:    rd.PeekPos(),
		ConcreteSource: src,
		Label:          o.Label,
		IsLabel:        o.IsLabel,
	}
}

// allocateContainer builds a fresh container for a STORE lens whose type is
// a container kind (list/map/struct). It returns nil for scalar STORE
// lenses and for non-STORE lenses.
func allocateContainer(o *Options) container.Container {
	switch o.containerKind() {
	case containerList:
		return container.NewList()
	case containerMap:
		return container.NewMap()
	case containerObject:
		return container.NewObject(o.Type)
	default:
		return nil
	}
}

// finalizeContainerValue implements spec.md §4.8 steps 4-5 (auto_list
// unwrap, combine_chars join), applied uniformly to whichever lens owns the
// container, not just at the true top level: any nested list/map/struct-
// typed lens applies its own auto_list/combine_chars before handing its item
// up to its parent.
func finalizeContainerValue(o *Options, c container.Container, meta item.Meta) (item.Value, error) {
	if label, ok := c.Label(); ok {
		meta.Label = label
	}

	if o.containerKind() == containerList {
		lc := c.(*container.ListContainer)
		items := lc.Items()

		if o.CombineChars {
			if s, ok := combineChars(items); ok {
				v := item.New(s)
				v.Meta = meta
				return v, nil
			}
		}
		if o.AutoList && len(items) == 1 {
			v := item.New(item.Unwrap(*items[0]))
			v.Meta = meta
			sm := items[0].Meta
			v.Meta.SingletonMeta = &sm
			return v, nil
		}
	}

	v := item.New(c.Unwrap())
	v.Meta = meta
	return v, nil
}

func combineChars(items []*item.Value) (string, bool) {
	var sb strings.Builder
	for _, it := range items {
		s, ok := item.Unwrap(*it).(string)
		if !ok {
			return "", false
		}
		sb.WriteString(s)
	}
	return sb.String(), true
}

// prepareContainerTarget implements the reverse of finalizeContainerValue
// for PUT: given the incoming (possibly collapsed/combined) value, it seeds
// the container with the raw collection PrepareForPut should wrap, or with
// precise pre-wrapped items when metadata must be piggybacked through an
// auto_list singleton.
func prepareContainerTarget(o *Options, c container.Container, v item.Value) error {
	if v.Meta.Label != "" {
		c.SetLabel(v.Meta.Label)
	}

	switch o.containerKind() {
	case containerList:
		lc := c.(*container.ListContainer)
		if o.CombineChars {
			if s, ok := v.Raw.(string); ok {
				items := make([]*item.Value, 0, len(s))
				for _, r := range s {
					it := item.New(string(r))
					items = append(items, &it)
				}
				lc.SetTargetItems(items)
				return nil
			}
		}
		if o.AutoList {
			if lst, ok := v.Raw.([]any); ok {
				lc.SetTarget(lst)
				return nil
			}
			var it item.Value
			if v.Meta.SingletonMeta != nil {
				it = item.Value{Raw: v.Raw, Meta: *v.Meta.SingletonMeta}
			} else {
				it = item.New(v.Raw)
			}
			lc.SetTargetItems([]*item.Value{&it})
			return nil
		}
		lst, ok := v.Raw.([]any)
		if !ok {
			return errs.Assertion("expected a list value for %q, got %T", o.Name, v.Raw)
		}
		lc.SetTarget(lst)
		return nil

	case containerMap:
		mc := c.(*container.MapContainer)
		m, ok := v.Raw.(map[string]any)
		if !ok {
			return errs.Assertion("expected a map value for %q, got %T", o.Name, v.Raw)
		}
		mc.SetTarget(m)
		return nil

	case containerObject:
		oc := c.(*container.ObjectContainer)
		rv := reflect.ValueOf(v.Raw)
		if !rv.IsValid() {
			return errs.Assertion("expected a struct value for %q, got nil", o.Name)
		}
		oc.SetTarget(rv)
		return nil

	default:
		return nil
	}
}

// coerceScalar converts a raw consumed (or supplied-as-string) substring
// into the model type a scalar STORE lens declares via WithType, per
// spec.md §4.8 step 3's "cast item to type if needed".
func coerceScalar(o *Options, raw string) (any, error) {
	if !o.HasType {
		return raw, nil
	}
	switch o.Type.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errs.New("cannot interpret %q as an integer: %v", raw, err)
		}
		return int(n), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errs.New("cannot interpret %q as a float: %v", raw, err)
		}
		return f, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errs.New("cannot interpret %q as a bool: %v", raw, err)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// stringifyScalar is coerceScalar's reverse: the concrete text a scalar
// STORE lens's model value should PUT as, used to validate and render an
// incoming item.
func stringifyScalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", errs.Assertion("cannot render a %T as concrete text", v)
	}
}
