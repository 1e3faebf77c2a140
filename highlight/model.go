// Package highlight implements the stateful, incremental line analyzer:
// it walks a text.Document through a compiled grammar.SyntaxRule, producing
// a TokenSpan per classified run of characters and keeping enough
// per-line state to re-tokenize only the lines an edit actually touches.
package highlight

// TokenSpan is one classified run of characters within a line, in
// character (not byte) offsets.
type TokenSpan struct {
	StartColumn int
	EndColumn int
	Style string

	// MatchedText is the literal text the span covers.
	MatchedText string
	// State is the state the analyzer was in when this span matched.
	State int
	// GotoState is the state this span's rule transitions to, or
	// grammar.NoGotoState if it does not transition.
	GotoState int
}

// Len returns the number of characters the span covers.
func (s TokenSpan) Len () int {
	return s.EndColumn - s.StartColumn
}

// LineHighlight is the classification of one line: its spans in order,
// the state the line started in, and the state the tokenizer ended in
// (carried forward as the next line's starting state).
type LineHighlight struct {
	Spans []TokenSpan
	StartState int
	EndState int
}

// DocumentHighlight is the per-line classification of a whole document.
type DocumentHighlight struct {
	Lines []LineHighlight
}

// MultiLineContext records an in-progress multi-line token (e.g. an open
// block comment) that began on OpenLine in OpenState and has not yet been
// closed by a later line's matching rule.
type MultiLineContext struct {
	OpenLine int
	OpenState int
	Style string
}
