package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempGrammar (t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "bad.grammar.json")
	if e := os.WriteFile(path, []byte(contents), 0644); e != nil {
		t.Fatalf("failed to write temp grammar: %s", e)
	}
	return path
}

const javaGrammar = `{
  "name": "java",
  "fileExtensions": ["java"],
  "variables": {
    "identifierStart": "[A-Za-z_]",
    "identifierPart": "[A-Za-z0-9_]",
    "identifier": "${identifierStart}${identifierPart}*"
  },
  "states": {
    "default": [
      {"pattern": "//.*", "style": "comment"},
      {"pattern": "/\\*", "style": "comment", "state": "longComment"},
      {"pattern": "\"[^\"]*\"", "style": "string"},
      {"pattern": "(${identifier})\\(", "styles": [0, "method", 1, "operator"]}
    ],
    "longComment": [
      {"pattern": "\\*/", "style": "comment", "state": "default"},
      {"pattern": "[\\s\\S]", "style": "comment"}
    ]
  }
}`

func TestCompileBasicShape (t *testing.T) {
	rule, e := CompileFromJSON([]byte(javaGrammar))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	if rule.Name != "java" {
		t.Fatalf("got name %q", rule.Name)
	}
	if len(rule.FileExtensions) != 1 || rule.FileExtensions[0] != ".java" {
		t.Fatalf("extensions not normalized: %v", rule.FileExtensions)
	}
	if !rule.ContainsRule(DefaultStateID) {
		t.Fatalf("missing default state rule")
	}
}

func TestSingularFileExtensionAccepted (t *testing.T) {
	src := `{"name":"x","fileExtension":"x","states":{"default":[{"pattern":"a","style":"s"}]}}`
	rule, e := CompileFromJSON([]byte(src))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	if len(rule.FileExtensions) != 1 || rule.FileExtensions[0] != ".x" {
		t.Fatalf("expected a single normalized extension, got %v", rule.FileExtensions)
	}
}

func TestMissingFileExtensionRejected (t *testing.T) {
	bad := `{"name":"x","states":{"default":[{"pattern":"a","style":"s"}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error when neither fileExtensions nor fileExtension is present")
	}
}

func TestMalformedJSONReportsLineAndCol (t *testing.T) {
	bad := "{\n  \"name\": \"x\",\n  \"states\": {,}\n}"
	_, e := CompileFromJSON([]byte(bad))
	if e == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
	if !strings.Contains(e.Error(), "line 3 col") {
		t.Fatalf("expected the error to report line 3, got %q", e.Error())
	}
}

func TestMalformedJSONFromFileReportsPath (t *testing.T) {
	path := writeTempGrammar(t, "{\n  \"name\": ,\n}")
	_, e := CompileFromFile(path)
	if e == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
	if !strings.Contains(e.Error(), path) {
		t.Fatalf("expected the error to report the file path %q, got %q", path, e.Error())
	}
}

func TestVariableResolution (t *testing.T) {
	rule, e := CompileFromJSON([]byte(javaGrammar))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	if rule.Variables["identifier"] != "[A-Za-z_][A-Za-z0-9_]*" {
		t.Fatalf("identifier not resolved, got %q", rule.Variables["identifier"])
	}
}

func TestGotoStateResolution (t *testing.T) {
	rule, e := CompileFromJSON([]byte(javaGrammar))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	def := rule.GetStateRule(DefaultStateID)
	var blockOpen *TokenRule
	for _, tr := range def.TokenRules {
		if tr.GotoStateStr == "longComment" {
			blockOpen = tr
		}
	}
	if blockOpen == nil {
		t.Fatalf("expected a rule with gotoState longComment")
	}
	longID, ok := rule.LookupStateID("longComment")
	if !ok || blockOpen.GotoState != longID {
		t.Fatalf("gotoState not resolved to longComment's id")
	}
}

func TestGroupOffsetBookkeeping (t *testing.T) {
	rule, e := CompileFromJSON([]byte(javaGrammar))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	def := rule.GetStateRule(DefaultStateID)
	offset := 1
	for i, tr := range def.TokenRules {
		if tr.GroupOffset != offset {
			t.Fatalf("rule %d: groupOffset got %d want %d", i, tr.GroupOffset, offset)
		}
		offset += 1 + tr.GroupCount
	}
}

func TestMethodCallStylesGroupCount (t *testing.T) {
	rule, e := CompileFromJSON([]byte(javaGrammar))
	if e != nil {
		t.Fatalf("compile failed: %s", e)
	}
	def := rule.GetStateRule(DefaultStateID)
	var methodRule *TokenRule
	for _, tr := range def.TokenRules {
		if tr.GetGroupStyle(1) == "operator" {
			methodRule = tr
		}
	}
	if methodRule == nil {
		t.Fatalf("expected a rule styling group 1 as operator")
	}
	if methodRule.GroupCount != 1 {
		t.Fatalf("expected 1 capture group in method-call pattern, got %d", methodRule.GroupCount)
	}
	if methodRule.GetGroupStyle(0) != "method" {
		t.Fatalf("expected group 0 styled as method, got %q", methodRule.GetGroupStyle(0))
	}
}

func TestMissingDefaultStateRejected (t *testing.T) {
	bad := `{"name":"x","fileExtensions":["x"],"states":{"other":[{"pattern":"a","style":"s"}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error for grammar without a default state")
	}
}

func TestUnknownGotoStateRejected (t *testing.T) {
	bad := `{"name":"x","fileExtensions":["x"],"states":{"default":[{"pattern":"a","style":"s","state":"nope"}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error for unresolvable gotoState")
	}
}

func TestStyleAndStylesExclusive (t *testing.T) {
	bad := `{"name":"x","fileExtensions":["x"],"states":{"default":[{"pattern":"a","style":"s","styles":[0,"t"]}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error when both style and styles are present")
	}
}

func TestInvalidPatternRejected (t *testing.T) {
	bad := `{"name":"x","fileExtensions":["x"],"states":{"default":[{"pattern":"(","style":"s"}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error for unbalanced pattern")
	}
}

func TestUndefinedVariableRejected (t *testing.T) {
	bad := `{"name":"x","fileExtensions":["x"],"states":{"default":[{"pattern":"${nope}","style":"s"}]}}`
	if _, e := CompileFromJSON([]byte(bad)); e == nil {
		t.Fatalf("expected error for undefined variable reference")
	}
}

func TestCountGroupsSkipsCharacterClasses (t *testing.T) {
	if g := countGroups(`[(a)]`); g != 0 {
		t.Fatalf("expected 0 groups inside a character class, got %d", g)
	}
	if g := countGroups(`(a)(b)`); g != 2 {
		t.Fatalf("expected 2 groups, got %d", g)
	}
	if g := countGroups(`(?:a)(b)`); g != 1 {
		t.Fatalf("non-capturing group should not count, got %d", g)
	}
	if g := countGroups(`\(a\)`); g != 0 {
		t.Fatalf("escaped parens should not count, got %d", g)
	}
}

func TestMultiLineAutoDetection (t *testing.T) {
	if !looksMultiLine(`[\s\S]`) {
		t.Fatalf("expected auto-detection of cross-line character class")
	}
	if looksMultiLine(`[a-z]+`) {
		t.Fatalf("did not expect a plain character class to be flagged multi-line")
	}
}
