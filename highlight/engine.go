package highlight

import (
	"path/filepath"

	"github.com/FinalScave/FastCodeHighlight/registry"
	"github.com/FinalScave/FastCodeHighlight/text"
)

// HighlightEngine is the top-level facade: it owns a SyntaxRuleManager and
// hands out DocumentAnalyzer instances for whichever grammar matches a
// given file name.
type HighlightEngine struct {
	manager *registry.SyntaxRuleManager
}

// NewHighlightEngine creates an engine with an empty grammar registry.
func NewHighlightEngine () *HighlightEngine {
	return &HighlightEngine{manager: registry.NewSyntaxRuleManager()}
}

// CompileSyntaxFromJSON compiles and registers a grammar from raw JSON.
func (e *HighlightEngine) CompileSyntaxFromJSON (data []byte) error {
	_, err := e.manager.CompileSyntaxFromJSON(data)
	return err
}

// CompileSyntaxFromFile compiles and registers a grammar read from path.
func (e *HighlightEngine) CompileSyntaxFromFile (path string) error {
	_, err := e.manager.CompileSyntaxFromFile(path)
	return err
}

// LoadDocument creates a DocumentAnalyzer for initialText, choosing a
// grammar by fileName's extension. It returns nil if no registered
// grammar claims that extension.
func (e *HighlightEngine) LoadDocument (fileName, initialText string) *DocumentAnalyzer {
	syntax := e.manager.GetSyntaxRuleByExtension(filepath.Ext(fileName))
	if syntax == nil {
		return nil
	}
	doc := text.NewDocument(initialText)
	return NewDocumentAnalyzer(doc, syntax)
}

// LoadDocumentWithSyntaxName is like LoadDocument but chooses the grammar
// by its registered name instead of by file extension.
func (e *HighlightEngine) LoadDocumentWithSyntaxName (syntaxName, initialText string) *DocumentAnalyzer {
	syntax := e.manager.GetSyntaxRuleByName(syntaxName)
	if syntax == nil {
		return nil
	}
	doc := text.NewDocument(initialText)
	return NewDocumentAnalyzer(doc, syntax)
}
