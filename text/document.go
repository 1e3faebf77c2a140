package text

import (
	"strings"

	"github.com/FinalScave/FastCodeHighlight/errors"
)

// Error codes for Document operations.
const (
	// LineOutOfRange means GetLine was called with an index >= line count.
	LineOutOfRange = 100 + iota
	// RangeInvalid means patch's range.Start or range.End is not a valid position.
	RangeInvalid
)

// Document is an ordered sequence of lines, each a UTF-8 string with no
// embedded newline. The logical text is lines.join("\n"). Invariant:
// len(lines) >= 1 always.
type Document struct {
	lines []string
}

// NewDocument creates a Document from initial text, splitting on '\n'.
func NewDocument (initialText string) *Document {
	d := &Document{}
	d.SetText(initialText)
	return d
}

// SetText replaces the whole document. A trailing '\n' yields a final
// empty line, so len(lines) == strings.Count(s, "\n") + 1 always.
func (d *Document) SetText (s string) {
	d.lines = strings.Split(s, "\n")
}

// GetText rejoins the lines with a single '\n' between them.
func (d *Document) GetText () string {
	return strings.Join(d.lines, "\n")
}

// GetLine returns line i, failing if i is out of range.
func (d *Document) GetLine (i int) (string, error) {
	if i < 0 || i >= len(d.lines) {
		return "", errors.Format(LineOutOfRange, "line %d out of range (have %d lines)", i, len(d.lines))
	}
	return d.lines[i], nil
}

// GetLineCount returns the number of lines.
func (d *Document) GetLineCount () int {
	return len(d.lines)
}

// isValidPosition reports whether p.Line is in range and p.Column is a
// valid character offset within that line (column == charCount is valid,
// meaning end-of-line).
func (d *Document) isValidPosition (p TextPosition) bool {
	if p.Line < 0 || p.Line >= len(d.lines) {
		return false
	}
	return p.Column >= 0 && p.Column <= CharCount(d.lines[p.Line])
}

// TextOf returns the text covered by range r, used by the patch-idempotence
// property and by callers that want to read before they write.
func (d *Document) TextOf (r TextRange) (string, error) {
	if !d.isValidPosition(r.Start) || !d.isValidPosition(r.End) {
		return "", errors.Format(RangeInvalid, "invalid range position")
	}
	if r.Start.Line == r.End.Line {
		line := d.lines[r.Start.Line]
		return Substr(line, r.Start.Column, r.End.Column-r.Start.Column), nil
	}
	var b strings.Builder
	first := d.lines[r.Start.Line]
	b.WriteString(Substr(first, r.Start.Column, CharCount(first)-r.Start.Column))
	for l := r.Start.Line + 1; l < r.End.Line; l++ {
		b.WriteByte('\n')
		b.WriteString(d.lines[l])
	}
	b.WriteByte('\n')
	b.WriteString(Substr(d.lines[r.End.Line], 0, r.End.Column))
	return b.String(), nil
}

// Patch replaces the text covered by range with newText. Per spec.md §4.2:
//   - if range.Start.Line >= len(lines), newText is appended (growing the
//     line vector if it contains newlines);
//   - otherwise newText is split on '\n' and spliced in, joining the
//     prefix of the first affected line and the suffix of the last
//     affected line onto the first/last piece of newText.
func (d *Document) Patch (r TextRange, newText string) error {
	if r.Start.Line >= len(d.lines) {
		return d.appendText(newText)
	}
	if !d.isValidPosition(r.Start) || !d.isValidPosition(r.End) {
		return errors.Format(RangeInvalid, "invalid range position")
	}

	newLines := strings.Split(newText, "\n")

	firstPrefix := Substr(d.lines[r.Start.Line], 0, r.Start.Column)
	lastLine := d.lines[r.End.Line]
	lastSuffix := Substr(lastLine, r.End.Column, CharCount(lastLine)-r.End.Column)

	replaced := make([]string, 0, len(newLines))
	replaced = append(replaced, firstPrefix+newLines[0])
	replaced = append(replaced, newLines[1:]...)
	replaced[len(replaced)-1] += lastSuffix

	head := d.lines[:r.Start.Line]
	tail := d.lines[r.End.Line+1:]
	merged := make([]string, 0, len(head)+len(replaced)+len(tail))
	merged = append(merged, head...)
	merged = append(merged, replaced...)
	merged = append(merged, tail...)
	d.lines = merged
	return nil
}

// appendText handles patch calls whose range starts at or beyond the
// current end of the document: newText is concatenated onto the last line,
// growing the line vector if newText itself contains newlines.
func (d *Document) appendText (newText string) error {
	newLines := strings.Split(newText, "\n")
	if len(d.lines) == 0 {
		d.lines = []string{""}
	}
	last := len(d.lines) - 1
	d.lines[last] += newLines[0]
	d.lines = append(d.lines, newLines[1:]...)
	return nil
}

// Insert inserts text at pos; equivalent to Patch((pos, pos), text).
func (d *Document) Insert (pos TextPosition, text string) error {
	return d.Patch(TextRange{Start: pos, End: pos}, text)
}

// Remove deletes the text covered by r; equivalent to Patch(r, "").
func (d *Document) Remove (r TextRange) error {
	return d.Patch(r, "")
}
