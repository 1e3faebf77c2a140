// Package text implements the character-addressed, line-indexed document
// buffer that the highlighting engine operates on, along with the UTF-8
// indexing helpers used to translate between byte and character offsets.
package text

import (
	"github.com/FinalScave/FastCodeHighlight/errors"
)

// PositionInvalid is raised when a TextRange is constructed with end before start.
const PositionInvalid = 1

// TextPosition is a zero-based (line, column) pair. Column is a count of
// Unicode scalar values, not bytes.
type TextPosition struct {
	Line, Column int
}

// NewPosition creates a TextPosition.
func NewPosition (line, column int) TextPosition {
	return TextPosition{Line: line, Column: column}
}

// Less reports whether p sorts before other in (line, column) order.
func (p TextPosition) Less (other TextPosition) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// LessEq reports whether p sorts at or before other.
func (p TextPosition) LessEq (other TextPosition) bool {
	return p == other || p.Less(other)
}

// TextRange is a span from Start to End with Start <= End, an order
// NewRange enforces.
type TextRange struct {
	Start, End TextPosition
}

// NewRange creates a TextRange, failing if end is before start.
func NewRange (start, end TextPosition) (TextRange, error) {
	if end.Less(start) {
		return TextRange{}, errors.Format(PositionInvalid, "invalid range: end %v before start %v", end, start)
	}
	return TextRange{Start: start, End: end}, nil
}

// MustRange is like NewRange but panics on failure; used for literal ranges
// built from already-validated positions (e.g. in tests).
func MustRange (start, end TextPosition) TextRange {
	r, e := NewRange(start, end)
	if e != nil {
		panic(e)
	}
	return r
}

// Contains reports whether pos lies within [r.Start, r.End], inclusive of
// the upper bound, per spec.md's containment rule.
func (r TextRange) Contains (pos TextPosition) bool {
	return r.Start.LessEq(pos) && pos.LessEq(r.End)
}

// Empty reports whether the range spans no text.
func (r TextRange) Empty () bool {
	return r.Start == r.End
}
