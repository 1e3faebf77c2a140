package highlight

import (
	"strings"

	"github.com/FinalScave/FastCodeHighlight/errors"
	"github.com/FinalScave/FastCodeHighlight/grammar"
	"github.com/FinalScave/FastCodeHighlight/text"
)

// StateUnreachable is the error code LineHighlightAt and AnalyzeLine
// return for a line index outside the document. A line whose current
// state has no compiled rule in the grammar raises no error:
// analyzeLineWithState classifies the rest of that line as one unstyled
// span.
const StateUnreachable = 1

// DocumentAnalyzer holds the per-line state needed to tokenize a
// text.Document against a grammar.SyntaxRule incrementally: the state a
// line starts in carries forward from the previous line's ending state,
// so re-tokenizing after an edit only needs to walk forward from the edit
// until a line's ending state stops changing.
type DocumentAnalyzer struct {
	doc *text.Document
	syntax *grammar.SyntaxRule

	lineStates []int
	lineHighlights []LineHighlight
	contexts map[int]*MultiLineContext
}

// NewDocumentAnalyzer creates an analyzer over doc using syntax, and
// performs the initial full analysis.
func NewDocumentAnalyzer (doc *text.Document, syntax *grammar.SyntaxRule) *DocumentAnalyzer {
	a := &DocumentAnalyzer{doc: doc, syntax: syntax}
	a.AnalyzeFully()
	return a
}

// AnalyzeFully re-tokenizes every line from scratch, starting the first
// line in the default state.
func (a *DocumentAnalyzer) AnalyzeFully () *DocumentHighlight {
	n := a.doc.GetLineCount()
	a.lineStates = make([]int, n)
	a.lineHighlights = make([]LineHighlight, n)
	a.contexts = make(map[int]*MultiLineContext)

	state := grammar.DefaultStateID
	for i := 0; i < n; i++ {
		a.lineStates[i] = state
		lh := a.analyzeLineWithState(i, state)
		a.lineHighlights[i] = lh
		state = lh.EndState
	}
	return a.Highlights()
}

// Highlights returns a snapshot of the current per-line classification.
func (a *DocumentAnalyzer) Highlights () *DocumentHighlight {
	lines := make([]LineHighlight, len(a.lineHighlights))
	copy(lines, a.lineHighlights)
	return &DocumentHighlight{Lines: lines}
}

// LineHighlightAt returns the classification of line i.
func (a *DocumentAnalyzer) LineHighlightAt (i int) (LineHighlight, error) {
	if i < 0 || i >= len(a.lineHighlights) {
		return LineHighlight{}, errors.Format(StateUnreachable, "line %d out of range", i)
	}
	return a.lineHighlights[i], nil
}

// AnalyzeLine re-tokenizes line i in isolation, starting from its current
// starting state, and stores the result. Unlike UpdateHighlight it neither
// patches the document nor walks forward into later lines; callers that
// already know only line i's content changed (without affecting the state
// carried into the next line) use this instead of a full UpdateHighlight.
func (a *DocumentAnalyzer) AnalyzeLine (i int) (LineHighlight, error) {
	if i < 0 || i >= len(a.lineStates) {
		return LineHighlight{}, errors.Format(StateUnreachable, "line %d out of range", i)
	}
	delete(a.contexts, i)
	lh := a.analyzeLineWithState(i, a.lineStates[i])
	a.lineHighlights[i] = lh
	return lh, nil
}

// OpenMultiLineContexts returns a snapshot of every multi-line token
// currently open, keyed by the line it opened on - e.g. an editor gutter
// wanting to know "is this line inside an unclosed block comment, and
// where did it start" reads this instead of re-deriving it from lineStates.
func (a *DocumentAnalyzer) OpenMultiLineContexts () map[int]MultiLineContext {
	out := make(map[int]MultiLineContext, len(a.contexts))
	for line, ctx := range a.contexts {
		out[line] = *ctx
	}
	return out
}

// closeContextsForState erases every still-open multi-line context whose
// OpenState is closingState: the state being left by a gotoState
// transition can own at most one open context at a time, since a second
// span targeting the same state cannot open until the first one closes.
func (a *DocumentAnalyzer) closeContextsForState (closingState int) {
	for line, ctx := range a.contexts {
		if ctx.OpenState == closingState {
			delete(a.contexts, line)
		}
	}
}

// analyzeLineWithState tokenizes one line starting in startState. An empty
// line produces no spans and leaves the state unchanged, per the
// short-circuit every line-based analyzer needs to avoid matching against
// an empty remaining content.
func (a *DocumentAnalyzer) analyzeLineWithState (lineIdx int, startState int) LineHighlight {
	line, e := a.doc.GetLine(lineIdx)
	if e != nil {
		return LineHighlight{StartState: startState, EndState: startState}
	}
	lineCharCount := text.CharCount(line)
	if lineCharCount == 0 {
		return LineHighlight{StartState: startState, EndState: startState}
	}

	var spans []TokenSpan
	state := startState
	pos := 0

	for pos < lineCharCount {
		stateRule := a.syntax.GetStateRule(state)
		if stateRule == nil {
			spans = append(spans, TokenSpan{
				StartColumn: pos, EndColumn: lineCharCount, Style: "",
				MatchedText: text.Substr(line, pos, lineCharCount-pos),
				State: state, GotoState: grammar.NoGotoState,
			})
			pos = lineCharCount
			break
		}

		mr := matchAtPosition(line, pos, stateRule)
		if !mr.Matched {
			spans = append(spans, TokenSpan{
				StartColumn: pos, EndColumn: pos + 1, Style: "",
				MatchedText: text.Substr(line, pos, 1),
				State: state, GotoState: grammar.NoGotoState,
			})
			pos++
			continue
		}

		if isPotentialMultiLine(mr, lineCharCount) {
			spans = append(spans, TokenSpan{
				StartColumn: pos, EndColumn: lineCharCount, Style: mr.Style,
				MatchedText: text.Substr(line, pos, lineCharCount-pos),
				State: state, GotoState: mr.Rule.GotoState,
			})
			newState := state
			if mr.Rule.GotoState != grammar.NoGotoState {
				newState = mr.Rule.GotoState
			}
			if newState != state {
				a.closeContextsForState(state)
			}
			if newState != grammar.DefaultStateID {
				a.contexts[lineIdx] = &MultiLineContext{OpenLine: lineIdx, OpenState: newState, Style: mr.Style}
			}
			state = newState
			pos = lineCharCount
			break
		}

		spans = append(spans, TokenSpan{
			StartColumn: mr.StartChar, EndColumn: mr.EndChar, Style: mr.Style,
			MatchedText: text.Substr(line, mr.StartChar, mr.EndChar-mr.StartChar),
			State: state, GotoState: mr.Rule.GotoState,
		})
		if mr.Rule.GotoState != grammar.NoGotoState {
			newState := mr.Rule.GotoState
			if newState != state {
				a.closeContextsForState(state)
				if newState != grammar.DefaultStateID {
					a.contexts[lineIdx] = &MultiLineContext{OpenLine: lineIdx, OpenState: newState, Style: mr.Style}
				}
			}
			state = newState
		}
		pos = mr.EndChar
	}

	return LineHighlight{Spans: spans, StartState: startState, EndState: state}
}

// UpdateHighlight patches doc with newText over r, then re-tokenizes only
// as much of the document as the edit could have affected: starting from
// the edited line, it walks forward recomputing each line's end state.
// It never stops before the affected tail bound endLine - the last line
// the edit itself could have shifted or rewritten, computed from how many
// newlines newText introduces and how many the edit removed - since lines
// up to and including endLine have new content regardless of what their
// end state turns out to be. Past endLine, lines keep their old content
// just shifted by delta, so it stops as soon as a line's end state
// matches what the corresponding old line (index shifted by delta) ended
// in, and copies the remaining shifted old lines across unchanged.
func (a *DocumentAnalyzer) UpdateHighlight (r text.TextRange, newText string) error {
	oldLineCount := a.doc.GetLineCount()
	startLine := r.Start.Line
	if startLine >= oldLineCount {
		startLine = oldLineCount - 1
	}
	if startLine < 0 {
		startLine = 0
	}

	oldEndStates := make([]int, len(a.lineHighlights))
	for i, lh := range a.lineHighlights {
		oldEndStates[i] = lh.EndState
	}

	newNewlineCount := strings.Count(newText, "\n")

	if e := a.doc.Patch(r, newText); e != nil {
		return e
	}
	newLineCount := a.doc.GetLineCount()
	delta := newLineCount - oldLineCount
	endLine := max(r.Start.Line+newNewlineCount, r.End.Line+delta)

	for ln := range a.contexts {
		if ln >= startLine {
			delete(a.contexts, ln)
		}
	}

	prefixStates := min(startLine, len(a.lineStates))
	prefixHighlights := min(startLine, len(a.lineHighlights))

	newStates := make([]int, newLineCount)
	newHighlights := make([]LineHighlight, newLineCount)
	copy(newStates, a.lineStates[:prefixStates])
	copy(newHighlights, a.lineHighlights[:prefixHighlights])

	state := grammar.DefaultStateID
	if startLine > 0 {
		state = newHighlights[startLine-1].EndState
	}

	for i := startLine; i < newLineCount; i++ {
		newStates[i] = state
		lh := a.analyzeLineWithState(i, state)
		newHighlights[i] = lh
		state = lh.EndState

		oldIdx := i - delta
		if i > endLine && oldIdx >= 0 && oldIdx < len(oldEndStates) && lh.EndState == oldEndStates[oldIdx] {
			for j := i + 1; j < newLineCount; j++ {
				oj := j - delta
				newStates[j] = a.lineStates[oj]
				newHighlights[j] = a.lineHighlights[oj]
			}
			break
		}
	}

	a.lineStates = newStates
	a.lineHighlights = newHighlights
	return nil
}
