package lens

import "github.com/dekarrin/lens/lens/charset"

// Optional matches child if present, or the empty string otherwise. If child
// is a STORE lens, the position it occupies in its ancestor container is
// simply left unclaimed when child doesn't match (or has no candidate to
// claim on PUT), rather than raising.
func Optional(child Lens, opts ...Opt) Lens {
	return Or([]Lens{child, Empty()}, opts...)
}

// List matches itemLens one or more times, separated by sep: itemLens (sep
// itemLens)*. sep is ordinarily a non-STORE literal; itemLens's matches are
// stored, in order, into whatever ancestor container List itself is given
// (List carries no type of its own — give opts a WithType to make the whole
// list a single typed item, as And does).
func List(itemLens, sep Lens, opts ...Opt) Lens {
	return And([]Lens{itemLens, Repeat(And([]Lens{sep, itemLens}), 0, 0)}, opts...)
}

// NewLine matches a line terminator, either "\n" or "\r\n", and PUTs "\n" on
// CREATE.
func NewLine(opts ...Opt) Lens {
	return Or([]Lens{Literal("\r\n"), Literal("\n")}, opts...)
}

// Whitespace matches a run of one or more whitespace characters, weaving the
// original run back unchanged when PUT against existing text, and falling
// back to a single space on CREATE.
func Whitespace(opts ...Opt) Lens {
	return Or([]Lens{
		Repeat(AnyOf(charset.Whitespace), 1, 0),
		Literal(" "),
	}, opts...)
}

// Word matches a run of one or more characters from set, type=string via
// combine_chars: the run collapses to a single string on GET and splits back
// into one AnyOf match per character on PUT.
func Word(set charset.Set, opts ...Opt) Lens {
	o := append([]Opt{WithType([]any{}), CombineChars()}, opts...)
	return Repeat(AnyOf(set, WithType("")), 1, 0, o...)
}

// KeyValue sequences key, sep, and value, the common "key_lens + sep_lens +
// value_lens" shape for one entry of a map-typed Repeat: give key AsLabel()
// so its text becomes the entry's label rather than one of the stored
// elements.
func KeyValue(key, sep, value Lens, opts ...Opt) Lens {
	return And([]Lens{key, sep, value}, opts...)
}

// HashComment matches a "#"-prefixed line comment: Literal("#") followed by
// Until(NewLine()). Pass WithType to opts (forwarded to the Until half) to
// capture the comment body; the leading "#" itself is never stored.
func HashComment(opts ...Opt) Lens {
	return And([]Lens{Literal("#"), Until(NewLine(), opts...)})
}

// Keyword matches the exact text s and is never a STORE lens (a fixed-text
// marker with no associated model value), mirroring Literal's own CREATE
// behavior of emitting s verbatim.
func Keyword(s string, opts ...Opt) Lens {
	o := append([]Opt{WithName(s)}, opts...)
	return Literal(s, o...)
}

// AutoGroup wraps a typeless lens tree (one with no WithType of its own) in
// a Group so it always produces a usable root value: a single collected
// value auto-unwrapped from its container when there's exactly one element,
// the joined string when every element is a single character, or the raw
// []any otherwise. lens.Get wraps any typeless root lens in AutoGroup
// automatically; it's exported because nested typeless subtrees sometimes
// want the same treatment explicitly.
func AutoGroup(child Lens, opts ...Opt) Lens {
	o := append([]Opt{WithType([]any{}), AutoList(), CombineChars()}, opts...)
	return Group(child, o...)
}
