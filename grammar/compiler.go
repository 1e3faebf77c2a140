package grammar

import (
	"os"
	"regexp"
	"strings"

	"github.com/FinalScave/FastCodeHighlight/errors"
)

var variableRef = regexp.MustCompile(`\$\{(\w+)\}`)

// CompileFromFile reads path and compiles it as a grammar. A malformed-JSON
// failure reports path and the offending line/col.
func CompileFromFile (path string) (*SyntaxRule, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return nil, errors.Format(errors.JsonInvalid, "cannot read %s: %s", path, e)
	}
	return compileFromJSON(data, path)
}

// CompileFromJSON compiles a grammar from its JSON source. The pipeline:
// parse the name and file extensions, resolve variables to a fixed point,
// register every state name so a rule's "state" transition can reference
// states declared in any order, parse each state's token rules
// substituting variables into their patterns, resolve "state" names to
// ids, then merge each state's rules into one compiled regex.
func CompileFromJSON (data []byte) (*SyntaxRule, error) {
	return compileFromJSON(data, "")
}

// compileFromJSON is CompileFromJSON/CompileFromFile's shared body,
// parameterized on sourceName so a file-based caller's path reaches
// parseTree's position-aware JSON error.
func compileFromJSON (data []byte, sourceName string) (*SyntaxRule, error) {
	tree, e := parseTree(data, sourceName)
	if e != nil {
		return nil, e
	}

	rule := newSyntaxRule()

	rule.Name, e = getString(tree, "name")
	if e != nil {
		return nil, e
	}

	exts, e := parseFileExtensions(tree)
	if e != nil {
		return nil, e
	}
	rule.FileExtensions = normalizeExtensions(exts)

	varsTree, e := getOptObject(tree, "variables")
	if e != nil {
		return nil, e
	}
	rule.Variables, e = resolveVariables(varsTree)
	if e != nil {
		return nil, e
	}

	statesTree, e := getObject(tree, "states")
	if e != nil {
		return nil, e
	}
	if _, ok := statesTree[DefaultStateName]; !ok {
		return nil, errors.Format(errors.PropertyExpected, "states must define %q", DefaultStateName)
	}
	for name := range statesTree {
		rule.GetOrCreateStateID(name)
	}

	for name, raw := range statesTree {
		stateID := rule.GetOrCreateStateID(name)
		rulesArr, ok := raw.([]interface{})
		if !ok {
			return nil, errors.Format(errors.PropertyInvalid, "state %q must be an array of token rules", name)
		}
		stateRule, e := compileState(name, rulesArr, rule)
		if e != nil {
			return nil, e
		}
		rule.setStateRule(stateID, stateRule)
	}

	return rule, nil
}

// parseFileExtensions reads "fileExtensions" (an array of strings) or
// "fileExtension" (a single string) from tree, exactly as the original
// grammar loader's parseFileExtensions accepts either shape.
func parseFileExtensions (tree map[string]interface{}) ([]string, error) {
	if _, ok := tree["fileExtensions"]; ok {
		arr, e := getArray(tree, "fileExtensions")
		if e != nil {
			return nil, e
		}
		exts, e := asStringSlice(arr, "fileExtensions")
		if e != nil {
			return nil, e
		}
		if len(exts) == 0 {
			return nil, errors.Format(errors.PropertyInvalid, "fileExtensions must not be empty")
		}
		return exts, nil
	}
	if _, ok := tree["fileExtension"]; ok {
		ext, e := getString(tree, "fileExtension")
		if e != nil {
			return nil, e
		}
		return []string{ext}, nil
	}
	return nil, errors.Format(errors.PropertyExpected, "missing property %q or %q", "fileExtensions", "fileExtension")
}

// normalizeExtensions ensures every extension begins with a leading dot.
func normalizeExtensions (exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out[i] = e
	}
	return out
}

// resolveVariables expands ${name} references among the variables
// themselves until no variable's value still contains an unresolved
// reference, or until it is clear no further pass can make progress
// (an unknown name or a cycle).
func resolveVariables (raw map[string]interface{}) (map[string]string, error) {
	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Format(errors.PropertyInvalid, "variable %q must be a string", k)
		}
		vars[k] = s
	}

	maxPasses := len(vars) + 1
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for k, v := range vars {
			expanded, ok := substituteOnce(v, vars)
			if !ok {
				continue
			}
			if expanded != v {
				vars[k] = expanded
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for k, v := range vars {
		if variableRef.MatchString(v) {
			return nil, errors.Format(errors.PropertyInvalid, "variable %q has an unresolved or cyclic reference: %s", k, v)
		}
	}
	return vars, nil
}

// substituteOnce replaces every ${name} reference in s that resolves in
// vars. The second return value is false only when s has no references at
// all, so callers can tell "nothing to do" from "nothing changed yet".
func substituteOnce (s string, vars map[string]string) (string, bool) {
	if !variableRef.MatchString(s) {
		return s, false
	}
	out := variableRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := variableRef.FindStringSubmatch(ref)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		return ref
	})
	return out, true
}

// compileState parses a state's token rules and merges them into a single
// compiled alternation, computing each rule's groupOffset/groupCount.
func compileState (stateName string, rulesArr []interface{}, owner *SyntaxRule) (*StateRule, error) {
	state := &StateRule{Name: stateName}

	for _, rv := range rulesArr {
		robj, ok := rv.(map[string]interface{})
		if !ok {
			return nil, errors.Format(errors.PropertyInvalid, "token rule in state %q must be an object", stateName)
		}
		tr, e := compileTokenRule(robj, owner)
		if e != nil {
			return nil, e
		}
		state.TokenRules = append(state.TokenRules, tr)
	}
	if len(state.TokenRules) == 0 {
		return nil, errors.Format(errors.PropertyInvalid, "state %q has no token rules", stateName)
	}

	if e := mergeAndCompile(state); e != nil {
		return nil, e
	}
	return state, nil
}

// compileTokenRule parses one token rule object: its pattern (with
// variables substituted), its style/styles mapping, and its optional
// "state" transition, resolved against the states already registered on
// owner.
func compileTokenRule (obj map[string]interface{}, owner *SyntaxRule) (*TokenRule, error) {
	rawPattern, e := getString(obj, "pattern")
	if e != nil {
		return nil, e
	}
	pattern := rawPattern
	for {
		next, changed := substituteOnce(pattern, owner.Variables)
		if !changed || next == pattern {
			pattern = next
			break
		}
		pattern = next
	}
	if variableRef.MatchString(pattern) {
		return nil, errors.Format(errors.PropertyInvalid, "pattern %q references an undefined variable", rawPattern)
	}

	_, hasStyle := obj["style"]
	_, hasStyles := obj["styles"]
	if hasStyle && hasStyles {
		return nil, errors.Format(errors.PropertyInvalid, "token rule cannot have both style and styles")
	}

	styles := make(map[int]string)
	if hasStyle {
		s, e := getString(obj, "style")
		if e != nil {
			return nil, e
		}
		styles[0] = s
	} else if hasStyles {
		arr, e := getArray(obj, "styles")
		if e != nil {
			return nil, e
		}
		if len(arr)%2 != 0 {
			return nil, errors.Format(errors.PropertyInvalid, "styles must have an even number of elements")
		}
		for i := 0; i < len(arr); i += 2 {
			group, ok := arr[i].(float64)
			if !ok {
				return nil, errors.Format(errors.PropertyInvalid, "styles[%d] must be a group index", i)
			}
			styleName, ok := arr[i+1].(string)
			if !ok {
				return nil, errors.Format(errors.PropertyInvalid, "styles[%d] must be a style name", i+1)
			}
			styles[int(group)] = styleName
		}
	}

	gotoStateStr, e := getOptString(obj, "state", "")
	if e != nil {
		return nil, e
	}
	gotoState := NoGotoState
	if gotoStateStr != "" {
		id, ok := owner.LookupStateID(gotoStateStr)
		if !ok {
			return nil, errors.Format(errors.StateInvalid, "state %q has no matching state", gotoStateStr)
		}
		gotoState = id
	}

	explicitMultiLine := false
	if v, ok := obj["multiLine"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.Format(errors.PropertyInvalid, "multiLine must be a boolean")
		}
		explicitMultiLine = b
	}

	return &TokenRule{
		Pattern: pattern,
		Styles: styles,
		GotoStateStr: gotoStateStr,
		GotoState: gotoState,
		GroupCount: countGroups(pattern),
		IsMultiLine: explicitMultiLine || looksMultiLine(pattern),
	}, nil
}

// looksMultiLine auto-detects patterns that can plausibly span a line
// boundary even without an explicit multiLine flag: anything mentioning an
// explicit newline, an any-character class spanning whitespace and
// non-whitespace, or the (?s) dot-matches-newline flag.
func looksMultiLine (pattern string) bool {
	return strings.Contains(pattern, `\n`) ||
		strings.Contains(pattern, `\s\S`) ||
		strings.Contains(pattern, `\S\s`) ||
		strings.Contains(pattern, "(?s")
}

// countGroups counts the capture groups in pattern: every '(' not preceded
// by '\' and not beginning "(?", skipping over character classes so a '('
// inside [...] is never counted.
func countGroups (pattern string) int {
	count := 0
	inClass := false
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' {
			i++
			continue
		}
		if inClass {
			if c == ']' {
				inClass = false
			}
			continue
		}
		if c == '[' {
			inClass = true
			continue
		}
		if c == '(' {
			if i+1 < len(runes) && runes[i+1] == '?' {
				continue
			}
			count++
		}
	}
	return count
}

// mergeAndCompile merges a state's token rules into one alternation
// "(R0)|(R1)|..." and compiles it, assigning each rule's groupOffset so
// later matching can tell which rule produced a match from which outer
// group has a non-empty span.
func mergeAndCompile (state *StateRule) error {
	var parts []string
	offset := 1
	for _, tr := range state.TokenRules {
		tr.GroupOffset = offset
		parts = append(parts, "("+tr.Pattern+")")
		offset += 1 + tr.GroupCount
	}
	state.GroupCount = offset - 1
	state.MergedPattern = strings.Join(parts, "|")

	re, e := regexp.Compile(state.MergedPattern)
	if e != nil {
		return errors.Format(errors.PatternInvalid, "state %q: pattern %q failed to compile: %s", state.Name, state.MergedPattern, e)
	}
	state.Regex = re
	return nil
}
