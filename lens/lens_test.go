package lens_test

import (
	"testing"

	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/lens"
	"github.com/dekarrin/lens/lens/charset"
	"github.com/dekarrin/lens/lens/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: an And sequencing two single-character AnyOf lenses.
func TestAndAnyOfPair(t *testing.T) {
	l := lens.And([]lens.Lens{
		lens.AnyOf(charset.FromString("ab"), lens.WithType("")),
		lens.AnyOf(charset.FromString("cd"), lens.WithType("")),
	}, lens.WithType([]any{}))

	got, err := lens.Get(l, "ac")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c"}, got)

	out, err := lens.Put(l, got, lens.WithOriginal("ac"))
	require.NoError(t, err)
	assert.Equal(t, "ac", out)

	_, err = lens.Get(l, "ae")
	assert.Error(t, err)
}

// Scenario 2: a Group nested inside a Repeat, each repetition choosing
// between two branches of a default (unlabeled) Or.
func TestNestedGroupWithDefaultOr(t *testing.T) {
	choice := lens.AutoGroup(lens.Or([]lens.Lens{
		lens.Literal("cat", lens.WithType("")),
		lens.Literal("dog", lens.WithType("")),
	}))
	l := lens.Group(lens.Repeat(choice, 0, 0), lens.WithType([]any{}))

	got, err := lens.Get(l, "catdogcat")
	require.NoError(t, err)
	assert.Equal(t, []any{"cat", "dog", "cat"}, got)

	out, err := lens.Put(l, got, lens.WithOriginal("catdogcat"))
	require.NoError(t, err)
	assert.Equal(t, "catdogcat", out)
}

// Scenario 3: Repeat with a min/max range, including the case where input
// has more repetitions than max allows and leaves leftover text.
func TestRepeatMinMaxWithLeftoverInput(t *testing.T) {
	a := lens.Literal("a", lens.WithType(""))
	l := lens.Group(lens.Repeat(a, 1, 2), lens.WithType([]any{}))

	got, err := lens.Get(l, "aa")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "a"}, got)

	out, err := lens.Put(l, got, lens.WithOriginal("aa"))
	require.NoError(t, err)
	assert.Equal(t, "aa", out)

	_, err = lens.Get(l, "aaa")
	require.Error(t, err)
	var nfc *errs.NotFullyConsumedError
	assert.ErrorAs(t, err, &nfc)

	_, err = lens.Get(l, "")
	require.Error(t, err)
	var tfi *errs.TooFewIterationsError
	assert.ErrorAs(t, err, &tfi)
}

// Scenario 4: Or with an Empty alternative (Optional), matching or not
// matching depending on whether the input has the optional text.
func TestOrWithEmptyOptional(t *testing.T) {
	greeting := lens.Optional(lens.Literal("hello ", lens.WithType("")))
	l := lens.And([]lens.Lens{greeting, lens.Literal("world", lens.WithType(""))}, lens.WithType([]any{}))

	got, err := lens.Get(l, "hello world")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello ", "world"}, got)

	out, err := lens.Put(l, got, lens.WithOriginal("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	got2, err := lens.Get(l, "world")
	require.NoError(t, err)
	assert.Equal(t, []any{"world"}, got2)

	out2, err := lens.Put(l, got2, lens.WithOriginal("world"))
	require.NoError(t, err)
	assert.Equal(t, "world", out2)
}

// Scenario 5: a map with statically-labeled entries (the key is fixed by
// the lens definition, not read from the source).
func TestStaticLabelMap(t *testing.T) {
	line := func(key string) lens.Lens {
		return lens.And([]lens.Lens{
			lens.Keyword(key + "="),
			lens.Until(lens.NewLine(), lens.WithType(""), lens.WithLabel(key)),
			lens.NewLine(),
		})
	}
	l := lens.Group(lens.And([]lens.Lens{line("host"), line("port")}), lens.WithType(map[string]any{}))

	input := "host=localhost\nport=8080\n"
	got, err := lens.Get(l, input)
	require.NoError(t, err)
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "localhost", m["host"])
	assert.Equal(t, "8080", m["port"])

	out, err := lens.Put(l, got, lens.WithOriginal(input))
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

// Scenario 6: a map whose entry keys are read dynamically from the source
// (AsLabel) rather than fixed by the lens, with source-position alignment
// on PUT. Since the model round trip goes through plain Go values (no
// concrete origin survives Unwrap), entry order on PUT isn't guaranteed to
// match the original text, so round-trip correctness is checked by
// re-parsing the PUT output rather than requiring byte-identical text.
func TestDynamicLabelSourceAlignedMap(t *testing.T) {
	entry := lens.Group(lens.And([]lens.Lens{
		lens.Word(charset.AlphaNumeric, lens.AsLabel()),
		lens.Literal("="),
		lens.Until(lens.NewLine(), lens.WithType("")),
		lens.NewLine(),
	}), lens.WithType([]any{}), lens.AutoList(), lens.WithAlignment(container.AlignSource))

	l := lens.Group(lens.Repeat(entry, 0, 0), lens.WithType(map[string]any{}))

	input := "a=1\nb=2\nc=3\n"
	got, err := lens.Get(l, input)
	require.NoError(t, err)
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", m["a"])
	assert.Equal(t, "2", m["b"])
	assert.Equal(t, "3", m["c"])

	out, err := lens.Put(l, got, lens.WithOriginal(input))
	require.NoError(t, err)

	reparsed, err := lens.Get(l, out)
	require.NoError(t, err)
	assert.Equal(t, got, reparsed)
}

// Scenario 7: a Forward lens bound directly to itself recurses without
// bound on CREATE (no reader to terminate the recursion), which must trip
// the MaxRecursionDepth guard rather than overflow the stack.
func TestForwardSelfReferenceTripsInfiniteRecursion(t *testing.T) {
	ref := lens.NewForward(lens.WithName("rec"), lens.WithType(""))
	ref.Bind(ref)

	var err error
	lens.WithSettings(lens.Settings{CheckConsumption: true, MaxRecursionDepth: 5}, func() {
		_, err = lens.Put(ref, "x")
	})

	require.Error(t, err)
	var ire *errs.InfiniteRecursionError
	assert.ErrorAs(t, err, &ire)
}

// Scenario 7b: a Forward lens used for an actual recursive grammar (nested
// parentheses) works for GET, where the input itself bounds the recursion.
func TestForwardRecursiveGrammarGet(t *testing.T) {
	ref := lens.NewForward()
	ref.Bind(lens.Or([]lens.Lens{
		lens.And([]lens.Lens{lens.Literal("("), ref, lens.Literal(")")}),
		lens.Empty(),
	}))

	_, err := lens.Get(ref, "(())")
	require.NoError(t, err)

	_, err = lens.Get(ref, "(()")
	require.Error(t, err)
}

// Regression test for the rollback snapshot panic: Repeat's progress check
// snapshots its own container on every iteration, and a map-typed container
// (embedding listSnapshot's slice/map fields) must not panic when compared.
func TestRepeatWithMapTypedChildDoesNotPanic(t *testing.T) {
	attrLine := lens.And([]lens.Lens{
		lens.Word(charset.AlphaNumeric, lens.AsLabel()),
		lens.Literal("="),
		lens.Until(lens.NewLine(), lens.WithType("")),
		lens.NewLine(),
	})
	l := lens.Repeat(attrLine, 0, 0, lens.WithType(map[string]any{}))

	input := "a=1\nb=2\n"
	assert.NotPanics(t, func() {
		got, err := lens.Get(l, input)
		require.NoError(t, err)
		m, ok := got.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "1", m["a"])
		assert.Equal(t, "2", m["b"])
	})
}

// Regression test for the Until lens silently succeeding on a zero-width
// match: a stop lens that matches immediately must be rejected, not
// produce an empty item.
func TestUntilRejectsZeroWidthMatch(t *testing.T) {
	l := lens.Until(lens.Literal("STOP"), lens.WithType(""))
	_, err := lens.Get(l, "STOPandmore")
	require.Error(t, err)
}

func TestUntilAcceptsNonEmptyMatch(t *testing.T) {
	l := lens.Until(lens.Literal("STOP"), lens.WithType(""))
	got, err := lens.Get(l, "helloSTOP")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

// Regression test for the missing IsFullyConsumed/NotFullyConsumed wiring:
// a container-owning PUT that leaves model items unclaimed must raise
// *errs.NotFullyConsumedError instead of silently discarding them.
func TestPutDetectsUnclaimedContainerItems(t *testing.T) {
	l := lens.Group(lens.Literal("x", lens.WithType("")), lens.WithType([]any{}))

	_, err := lens.Put(l, []any{"x", "extra"})
	require.Error(t, err)
	var nfc *errs.NotFullyConsumedError
	assert.ErrorAs(t, err, &nfc)
}
