package languages

import (
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/smacker/go-tree-sitter/python"
)

// NewPythonParser creates the parser-backed extractor for Python source files.
// Decorated definitions span their decorators.
func NewPythonParser() *TreeSitterParser {
	return newTreeSitterParser(grammar{
		name:       "python",
		extensions: []string{".py", ".pyw"},
		language:   python.GetLanguage,
		kinds: map[string]parser.SymbolKind{
			"function_definition": parser.SymbolFunction,
			"class_definition":    parser.SymbolClass,
		},
		nameTypes: map[string]bool{"identifier": true},
		wrappers:  map[string]bool{"decorated_definition": true},
	})
}
