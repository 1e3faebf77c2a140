// Package grammar implements the declarative-grammar data model and the
// compiler that turns a generic JSON tree into one compiled regular
// expression per state, with a group-offset table identifying which token
// rule produced a given match. See CompileFromJSON / CompileFromFile.
package grammar

import (
	"regexp"
)

// DefaultStateName is the name every grammar must define; it is assigned id DefaultStateID.
const DefaultStateName = "default"

// DefaultStateID is the reserved state id for the "default" state.
const DefaultStateID = 0

// NoGotoState means a token rule does not transition to another state.
const NoGotoState = -1

// TokenRule is one entry within a state: a regex, a style mapping, and an
// optional state transition.
type TokenRule struct {
	// Pattern is the regex source after ${variable} substitution.
	Pattern string

	// Styles maps capture-group index (within this rule, 0 = whole match)
	// to a style name.
	Styles map[int]string

	// GotoStateStr is the target-state name as read from JSON, before resolution.
	GotoStateStr string

	// GotoState is the resolved target state id, or NoGotoState if there is none.
	GotoState int

	// GroupCount is the number of capture groups inside Pattern itself,
	// not counting the outer wrapping group added when this rule is merged
	// into its state's alternation.
	GroupCount int

	// GroupOffset is the index of this rule's outer wrapping group within
	// the merged regex of its owning state.
	GroupOffset int

	// IsMultiLine is true when the rule was flagged multiLine explicitly,
	// or when its pattern text was auto-detected as potentially spanning
	// multiple lines.
	IsMultiLine bool
}

// GetGroupStyle returns the style assigned to the given local group index
// (0 = whole match), or "" if no style was assigned to that group.
func (r *TokenRule) GetGroupStyle (group int) string {
	if r.Styles == nil {
		return ""
	}
	return r.Styles[group]
}

// StateRule is one named state: its ordered token rules and the single
// compiled regex formed by merging their patterns into an alternation.
type StateRule struct {
	Name string
	TokenRules []*TokenRule
	MergedPattern string
	Regex *regexp.Regexp
	GroupCount int
}

// SyntaxRule is a fully compiled grammar: its variables (already resolved),
// and its states, addressable by name or by the integer id assigned at
// compile time. State id 0 is always the "default" state.
type SyntaxRule struct {
	Name string
	FileExtensions []string
	Variables map[string]string

	stateNameToID map[string]int
	stateIDToRule map[int]*StateRule
	nextStateID int
}

// newSyntaxRule creates an empty SyntaxRule with the default state pre-registered.
func newSyntaxRule () *SyntaxRule {
	r := &SyntaxRule{
		Variables: make(map[string]string),
		stateNameToID: make(map[string]int),
		stateIDToRule: make(map[int]*StateRule),
		nextStateID: 1,
	}
	r.stateNameToID[DefaultStateName] = DefaultStateID
	return r
}

// GetOrCreateStateID returns the id for stateName, allocating a fresh one
// on first reference. "default" always maps to DefaultStateID.
func (r *SyntaxRule) GetOrCreateStateID (stateName string) int {
	if id, ok := r.stateNameToID[stateName]; ok {
		return id
	}
	id := r.nextStateID
	r.nextStateID++
	r.stateNameToID[stateName] = id
	return id
}

// LookupStateID returns the id registered for stateName and whether it exists.
func (r *SyntaxRule) LookupStateID (stateName string) (int, bool) {
	id, ok := r.stateNameToID[stateName]
	return id, ok
}

// ContainsRule reports whether stateID names a state with a compiled rule.
func (r *SyntaxRule) ContainsRule (stateID int) bool {
	_, ok := r.stateIDToRule[stateID]
	return ok
}

// GetStateRule returns the compiled StateRule for stateID, or nil if none exists.
func (r *SyntaxRule) GetStateRule (stateID int) *StateRule {
	return r.stateIDToRule[stateID]
}

// setStateRule registers the compiled rule for stateID.
func (r *SyntaxRule) setStateRule (stateID int, rule *StateRule) {
	r.stateIDToRule[stateID] = rule
}
