// Package reader provides the concrete input reader used by the lens engine:
// a position-tracked, cheaply-clonable, rollbackable cursor over an immutable
// source string.
//
// A Reader is the only rollbackable object whose state is a single integer;
// everything else it exposes is derived from that position plus a reference
// to the (never mutated) source string.
package reader

import (
	"fmt"
	"unicode/utf8"
)

// ErrEndOfInput is returned (wrapped by the caller with positional info) when
// a consume operation runs past the end of the source string.
var ErrEndOfInput = fmt.Errorf("end of input")

// Reader is a rollbackable, position-tracked view over a source string. The
// zero value is not usable; construct one with New.
//
// Readers are cheap to copy: cloning shares the underlying string by
// reference and only duplicates the position.
type Reader struct {
	src *string
	pos int
}

// New returns a Reader positioned at the start of src.
func New(src string) *Reader {
	s := src
	return &Reader{src: &s, pos: 0}
}

// Clone returns a Reader aliasing the same source string at the same
// position as r. Mutating the clone's position never affects r.
func (r *Reader) Clone() *Reader {
	return &Reader{src: r.src, pos: r.pos}
}

// AlignedWith reports whether r and other refer to the same source string
// and share the same position.
func (r *Reader) AlignedWith(other *Reader) bool {
	if other == nil {
		return false
	}
	return r.src == other.src && r.pos == other.pos
}

// SameSource reports whether r and other are views over the same source
// string, regardless of position.
func (r *Reader) SameSource(other *Reader) bool {
	return other != nil && r.src == other.src
}

// PeekPos returns the reader's current byte offset into the source string.
func (r *Reader) PeekPos() int {
	return r.pos
}

// Seek moves the reader to the given absolute byte offset. It panics if pos
// is out of the source string's bounds; callers are expected to only ever
// seek to offsets obtained from PeekPos or from string lengths of the same
// source.
func (r *Reader) Seek(pos int) {
	if pos < 0 || pos > len(*r.src) {
		panic(fmt.Sprintf("reader: seek out of bounds: %d (len %d)", pos, len(*r.src)))
	}
	r.pos = pos
}

// IsExhausted reports whether the reader has consumed the entire source
// string.
func (r *Reader) IsExhausted() bool {
	return r.pos >= len(*r.src)
}

// Remaining returns the unconsumed tail of the source string.
func (r *Reader) Remaining() string {
	return (*r.src)[r.pos:]
}

// Len returns the total length, in bytes, of the source string.
func (r *Reader) Len() int {
	return len(*r.src)
}

// ConsumedSince returns the substring consumed between pos and the reader's
// current position. pos must be less than or equal to the current position.
func (r *Reader) ConsumedSince(pos int) string {
	if pos > r.pos {
		panic("reader: ConsumedSince given a position ahead of the current one")
	}
	return (*r.src)[pos:r.pos]
}

// ConsumeChar consumes and returns the next rune in the source. It returns
// ErrEndOfInput without advancing the position if the reader is already
// exhausted.
func (r *Reader) ConsumeChar() (rune, error) {
	if r.IsExhausted() {
		return 0, ErrEndOfInput
	}
	ru, size := utf8.DecodeRuneInString(r.Remaining())
	r.pos += size
	return ru, nil
}

// ConsumeExact consumes and returns exactly n bytes. It returns
// ErrEndOfInput without advancing the position if fewer than n bytes remain.
func (r *Reader) ConsumeExact(n int) (string, error) {
	if n < 0 {
		panic("reader: ConsumeExact given a negative count")
	}
	if r.pos+n > len(*r.src) {
		return "", ErrEndOfInput
	}
	s := (*r.src)[r.pos : r.pos+n]
	r.pos += n
	return s, nil
}

// snapshot captures a Reader's rollbackable state: its position.
type snapshot struct {
	pos int
}

// Snapshot captures r's current position for later Restore. It satisfies
// rollback.Rollbackable.
func (r *Reader) Snapshot() any {
	return snapshot{pos: r.pos}
}

// Restore resets r's position to one previously returned by Snapshot. It
// satisfies rollback.Rollbackable.
func (r *Reader) Restore(state any) {
	s, ok := state.(snapshot)
	if !ok {
		panic(fmt.Sprintf("reader: Restore given a snapshot of unexpected type %T", state))
	}
	r.pos = s.pos
}
