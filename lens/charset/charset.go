// Package charset provides the named character classes spec.md §1 lists as
// a peripheral concern of the core ("charset tables") but which SPEC_FULL.md
// pulls into scope, ported from pylens's src/pylens/charsets.py. They are
// ordinary predicates usable as the charset argument to lens.AnyOf, and are
// built on golang.org/x/text/runes for the Unicode range classification the
// teacher's stack already depends on.
package charset

import (
	"unicode"

	"golang.org/x/text/runes"
)

// Set is a predicate over runes: the contract lens.AnyOf's charset argument
// requires.
type Set func(r rune) bool

// FromString returns a Set that matches exactly the runes present in s.
func FromString(s string) Set {
	members := make(map[rune]bool, len(s))
	for _, r := range s {
		members[r] = true
	}
	return func(r rune) bool { return members[r] }
}

// Negate returns a Set matching every rune s does not match.
func Negate(s Set) Set {
	return func(r rune) bool { return !s(r) }
}

// Union returns a Set matching any rune matched by at least one of sets.
func Union(sets ...Set) Set {
	return func(r rune) bool {
		for _, s := range sets {
			if s(r) {
				return true
			}
		}
		return false
	}
}

// the named classes below mirror charsets.py's ALPHAS, DIGITS, ALPHANUMERIC,
// etc. runes.In/runes.NotIn give the same RangeTable-driven matching the
// teacher's golang.org/x/text dependency is used for elsewhere.
var (
	// Alphas matches ASCII and Unicode letters.
	Alphas Set = func(r rune) bool { return runes.In(unicode.Letter).Contains(r) }

	// Digits matches decimal digits.
	Digits Set = func(r rune) bool { return runes.In(unicode.Digit).Contains(r) }

	// AlphaNumeric matches letters and digits.
	AlphaNumeric Set = Union(Alphas, Digits)

	// Whitespace matches Unicode whitespace, including newlines.
	Whitespace Set = func(r rune) bool { return runes.In(unicode.White_Space).Contains(r) }

	// NonWhitespace matches any rune that is not Unicode whitespace.
	NonWhitespace Set = Negate(Whitespace)

	// Printable matches graphic characters (letters, digits, punctuation,
	// symbols, and the space character) but excludes control characters.
	Printable Set = func(r rune) bool { return unicode.IsGraphic(r) }

	// NewLine matches the two characters that terminate a line.
	NewLine Set = FromString("\n\r")

	// NotNewLine matches any rune other than a line terminator.
	NotNewLine Set = Negate(NewLine)
)
