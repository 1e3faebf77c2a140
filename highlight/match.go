package highlight

import (
	"github.com/FinalScave/FastCodeHighlight/grammar"
	"github.com/FinalScave/FastCodeHighlight/text"
)

// matchResult is the outcome of attempting to match a state's merged regex
// starting at a character position within a line.
type matchResult struct {
	Matched bool

	// StartChar/EndChar is the span actually emitted for this match: the
	// whole-match span, unless a styled inner capture group narrows it
	// (see findEffectiveSpan).
	StartChar, EndChar int

	// WholeMatchEndChar is the end of the rule's full match, used to
	// detect a match that reaches end-of-line regardless of narrowing.
	WholeMatchEndChar int

	Style string
	Rule *grammar.TokenRule
}

// matchAtPosition runs state's merged regex against line starting exactly
// at character offset pos. A match only counts if it begins at pos itself
// (mirroring how the llx lexer rejects a match found further ahead in the
// remaining content) and consumes at least one character.
func matchAtPosition (line string, pos int, state *grammar.StateRule) matchResult {
	startByte := text.CharToByte(line, pos)
	content := line[startByte:]
	if content == "" {
		return matchResult{Matched: false}
	}

	m := state.Regex.FindStringSubmatchIndex(content)
	if m == nil || m[0] != 0 || m[1] <= m[0] {
		return matchResult{Matched: false}
	}

	rule := findWinningRule(state, m)
	if rule == nil {
		return matchResult{Matched: false}
	}

	wholeEndChar := text.ByteToChar(line, startByte+m[1])
	startChar, endChar, style := findEffectiveSpan(line, startByte, pos, wholeEndChar, rule, m)

	return matchResult{
		Matched: true,
		StartChar: startChar,
		EndChar: endChar,
		WholeMatchEndChar: wholeEndChar,
		Style: style,
		Rule: rule,
	}
}

// findWinningRule scans a state's rules in declaration order and returns
// the first one whose outer wrapping group participated in the match.
// Exactly one will, since the merged pattern is an alternation and each
// rule owns one outer group.
func findWinningRule (state *grammar.StateRule, m []int) *grammar.TokenRule {
	for _, tr := range state.TokenRules {
		idx := 2 * tr.GroupOffset
		if idx+1 < len(m) && m[idx] != -1 && m[idx+1] != -1 {
			return tr
		}
	}
	return nil
}

// findEffectiveSpan decides which span and style to emit for a match of
// rule: the whole match by default, styled with group 0; or, if an inner
// capture group has both an explicit style and a non-empty span, that
// group's own span and style instead. This is how a rule such as
// styles: [0, "method", 1, "operator"] can style a narrower run than its
// own match - e.g. a call-site pattern that also consumes a trailing "("
// only uses that "(" to decide the match fired, then styles just the
// identifier before it.
func findEffectiveSpan (line string, startByte, wholeStartChar, wholeEndChar int, rule *grammar.TokenRule, m []int) (int, int, string) {
	for g := 1; g <= rule.GroupCount; g++ {
		style := rule.GetGroupStyle(g)
		if style == "" {
			continue
		}
		idx := 2 * (rule.GroupOffset + g)
		if idx+1 >= len(m) || m[idx] == -1 || m[idx+1] == -1 || m[idx+1] == m[idx] {
			continue
		}
		start :=text.ByteToChar(line, startByte+m[idx])
		end := text.ByteToChar(line, startByte+m[idx+1])
		return start, end, style
	}
	return wholeStartChar, wholeEndChar, rule.GetGroupStyle(0)
}

// isPotentialMultiLine reports whether a match that already reaches the
// end of the line should open or continue a multi-line context: the match
// must actually reach end-of-line (there is nothing left on this line to
// try other rules against), and the rule must either be flagged
// multi-line or transition to another state - a same-state match that
// merely happens to end the line (an identifier at end of line, say)
// needs no special handling, the scan loop already ends naturally.
func isPotentialMultiLine (mr matchResult, lineCharCount int) bool {
	if mr.WholeMatchEndChar < lineCharCount {
		return false
	}
	return mr.Rule.IsMultiLine || mr.Rule.GotoState != grammar.NoGotoState
}
