// Package registry holds the set of compiled grammars known to a process,
// addressable by name or by the file extension they claim.
package registry

import (
	"github.com/FinalScave/FastCodeHighlight/grammar"
)

// SyntaxRuleManager owns every compiled grammar.SyntaxRule loaded so far.
// Re-registering a name replaces the previous rule under that name: every
// extension the new rule claims points at it, and every extension only the
// previous rule claimed is released.
type SyntaxRuleManager struct {
	byName map[string]*grammar.SyntaxRule
	byExtension map[string]*grammar.SyntaxRule
}

// NewSyntaxRuleManager creates an empty manager.
func NewSyntaxRuleManager () *SyntaxRuleManager {
	return &SyntaxRuleManager{
		byName: make(map[string]*grammar.SyntaxRule),
		byExtension: make(map[string]*grammar.SyntaxRule),
	}
}

// CompileSyntaxFromJSON compiles data and registers the result under its
// own name, returning the compiled rule.
func (m *SyntaxRuleManager) CompileSyntaxFromJSON (data []byte) (*grammar.SyntaxRule, error) {
	rule, e := grammar.CompileFromJSON(data)
	if e != nil {
		return nil, e
	}
	m.register(rule)
	return rule, nil
}

// CompileSyntaxFromFile compiles the grammar at path and registers it.
func (m *SyntaxRuleManager) CompileSyntaxFromFile (path string) (*grammar.SyntaxRule, error) {
	rule, e := grammar.CompileFromFile(path)
	if e != nil {
		return nil, e
	}
	m.register(rule)
	return rule, nil
}

// register files rule under its name and every extension it claims,
// dropping any prior rule that occupied the same name or extension slots.
func (m *SyntaxRuleManager) register (rule *grammar.SyntaxRule) {
	if old, ok := m.byName[rule.Name]; ok {
		for ext, r := range m.byExtension {
			if r == old {
				delete(m.byExtension, ext)
			}
		}
	}
	m.byName[rule.Name] = rule
	for _, ext := range rule.FileExtensions {
		m.byExtension[ext] = rule
	}
}

// GetSyntaxRuleByName returns the rule registered under name, or nil if none is.
func (m *SyntaxRuleManager) GetSyntaxRuleByName (name string) *grammar.SyntaxRule {
	return m.byName[name]
}

// GetSyntaxRuleByExtension returns the rule claiming ext (normalized to a
// leading dot), or nil if none is registered for it.
func (m *SyntaxRuleManager) GetSyntaxRuleByExtension (ext string) *grammar.SyntaxRule {
	if ext == "" {
		return nil
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	return m.byExtension[ext]
}
