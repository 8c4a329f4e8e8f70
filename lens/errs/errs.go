// Package errs defines the error taxonomy used throughout the lens engine:
// spec.md §7's rollback-safe errors (absorbed by a tentative scope and
// retried as another alternative) and fatal errors (surfaced to the caller
// with the faulting state left exactly as it was).
//
// The style follows the teacher's two error packages: tqerrors' wrapping
// constructors and tunascript's SyntaxError, which renders a source line with
// a cursor under the offending column via rosed.
package errs

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// LensError is the base of every rollback-safe error the engine raises when
// a lens fails to match or produce an item. More specific errors
// (EndOfInputError, NoDefaultError, and so on) embed it.
type LensError struct {
	// LensName is the friendly name of the lens that raised the error, if
	// it has one (see Options.Name in the lens package).
	LensName string

	// Path is a breadcrumb of lens names/kinds from the root to the
	// failing lens, joined with " > ", used to describe the failing branch
	// in user-visible messages.
	Path string

	// Pos is the byte offset in the source the error occurred at, or -1 if
	// not applicable (for example, a PUT with no reader).
	Pos int

	// Source and Line are the full source text and 1-indexed line number
	// the error occurred on; Line is 0 if not known.
	Source string
	Line   int
	Col    int

	Message string
	wrapped error
}

func (e *LensError) Error() string {
	loc := ""
	if e.Path != "" {
		loc = fmt.Sprintf(" in %s", e.Path)
	}
	if e.Line > 0 {
		return fmt.Sprintf("lens error%s: around line %d, col %d: %s", loc, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("lens error%s: %s", loc, e.Message)
}

// Unwrap returns the error e wraps, if any, so errors.Is/errors.As work
// against the taxonomy.
func (e *LensError) Unwrap() error {
	return e.wrapped
}

// RollbackSafe reports true: LensError and everything built on it via New
// are absorbed by rollback.Tentative.
func (e *LensError) RollbackSafe() bool {
	return true
}

// FullMessage renders e.Error() preceded by the offending source line and a
// cursor line pointing at the column, matching tunascript.SyntaxError's
// FullMessage/SourceLineWithCursor behavior, wrapped to a terminal-friendly
// width with rosed.
func (e *LensError) FullMessage() string {
	msg := e.Error()
	if e.Line == 0 || e.Source == "" {
		return msg
	}
	return e.SourceLineWithCursor() + "\n" + msg
}

// SourceLineWithCursor returns the offending source line and, directly under
// it, a caret at the offending column. Returns an empty string if no source
// line is available.
func (e *LensError) SourceLineWithCursor() string {
	if e.Source == "" {
		return ""
	}
	wrapped := rosed.Edit(e.Source).Wrap(100).String()
	cursor := ""
	for i := 0; i < e.Col-1; i++ {
		cursor += " "
	}
	cursor += "^"
	return wrapped + "\n" + cursor
}

// New constructs a LensError with the given message. Positional fields are
// left zero; callers that know the offending location should populate them
// with WithPos or construct the struct directly.
func New(format string, a ...any) *LensError {
	return &LensError{Message: fmt.Sprintf(format, a...), Pos: -1}
}

// Wrap constructs a LensError that wraps an existing error.
func Wrap(err error, format string, a ...any) *LensError {
	le := New(format, a...)
	le.wrapped = err
	return le
}

// WithPos returns a copy of e with positional/source context attached, for
// rendering FullMessage.
func (e *LensError) WithPos(source string, line, col, pos int) *LensError {
	c := *e
	c.Source = source
	c.Line = line
	c.Col = col
	c.Pos = pos
	return &c
}

// WithPath returns a copy of e with its lens breadcrumb set.
func (e *LensError) WithPath(path string) *LensError {
	c := *e
	c.Path = path
	return &c
}

// EndOfInputError is raised when a reader is exhausted mid-match.
type EndOfInputError struct{ *LensError }

// EndOfInput constructs an EndOfInputError.
func EndOfInput(format string, a ...any) *EndOfInputError {
	return &EndOfInputError{New(format, a...)}
}

// NoDefaultError is raised when a non-STORE lens is asked to CREATE (no
// reader, no default).
type NoDefaultError struct{ *LensError }

// NoDefault constructs a NoDefaultError.
func NoDefault(format string, a ...any) *NoDefaultError {
	return &NoDefaultError{New(format, a...)}
}

// TooFewIterationsError is raised when Repeat matches fewer than its
// configured minimum.
type TooFewIterationsError struct{ *LensError }

// TooFewIterations constructs a TooFewIterationsError.
func TooFewIterations(format string, a ...any) *TooFewIterationsError {
	return &TooFewIterationsError{New(format, a...)}
}

// NotFullyConsumedError is raised when a top-level consumption check finds
// leftover input or an under-consumed container.
type NotFullyConsumedError struct{ *LensError }

// NotFullyConsumed constructs a NotFullyConsumedError.
func NotFullyConsumed(format string, a ...any) *NotFullyConsumedError {
	return &NotFullyConsumedError{New(format, a...)}
}

// NoTokenToConsumeError is raised when a container can supply no candidate
// item for a PUTting lens.
type NoTokenToConsumeError struct{ *LensError }

// NoTokenToConsume constructs a NoTokenToConsumeError.
func NoTokenToConsume(format string, a ...any) *NoTokenToConsumeError {
	return &NoTokenToConsumeError{New(format, a...)}
}

// FatalError is the base of errors that are never absorbed by a tentative
// scope: they always propagate with state left exactly as the failing call
// left it, per spec.md §7.
type FatalError struct {
	Message string
	wrapped error
}

func (e *FatalError) Error() string { return e.Message }
func (e *FatalError) Unwrap() error { return e.wrapped }

// RollbackSafe reports false: FatalError is never absorbed.
func (e *FatalError) RollbackSafe() bool { return false }

// Fatal constructs a FatalError.
func Fatal(format string, a ...any) *FatalError {
	return &FatalError{Message: fmt.Sprintf(format, a...)}
}

// InfiniteRecursionError is raised when Forward's recursion depth cap trips
// on CREATE.
type InfiniteRecursionError struct{ *FatalError }

// InfiniteRecursion constructs an InfiniteRecursionError with a diagnostic
// about branch ordering inside Or, per spec.md §4.7.
func InfiniteRecursion(depth int, name string) *InfiniteRecursionError {
	msg := fmt.Sprintf(
		"forward lens %q recursed past depth %d while creating output with no "+
			"input to bound it; if this lens is reachable through an Or, put the "+
			"non-recursive branch first so it is tried before the recursive one",
		name, depth,
	)
	return &InfiniteRecursionError{Fatal("%s", msg)}
}

// AssertionError indicates a programmer error: a malformed lens construction
// such as a typeless Group, a doubly-bound Forward, or an item of the wrong
// shape passed to Put.
type AssertionError struct{ *FatalError }

// Assertion constructs an AssertionError.
func Assertion(format string, a ...any) *AssertionError {
	return &AssertionError{Fatal(format, a...)}
}
