package languages

import (
	"github.com/morozRed/cortexact/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var scriptKinds = map[string]parser.SymbolKind{
	"function_declaration":           parser.SymbolFunction,
	"generator_function_declaration": parser.SymbolFunction,
	"method_definition":              parser.SymbolFunction,
	"class_declaration":              parser.SymbolClass,
	"abstract_class_declaration":     parser.SymbolClass,
	"interface_declaration":          parser.SymbolInterface,
	"enum_declaration":               parser.SymbolEnum,
	"internal_module":                parser.SymbolModule,
	"module":                         parser.SymbolModule,
}

var scriptNameTypes = map[string]bool{
	"identifier":          true,
	"type_identifier":     true,
	"property_identifier": true,
}

func scriptGrammar(name string, exts []string, lang func() *sitter.Language) grammar {
	return grammar{
		name:       name,
		extensions: exts,
		language:   lang,
		kinds:      scriptKinds,
		nameTypes:  scriptNameTypes,
		wrappers:   map[string]bool{"export_statement": true},
	}
}

// NewTypeScriptParser creates the parser-backed extractor for TypeScript files.
// Exported declarations span their export keyword.
func NewTypeScriptParser() *TreeSitterParser {
	return newTreeSitterParser(scriptGrammar("typescript", []string{".ts", ".mts", ".cts"}, typescript.GetLanguage))
}

// NewTSXParser handles TypeScript files containing JSX.
func NewTSXParser() *TreeSitterParser {
	return newTreeSitterParser(scriptGrammar("tsx", []string{".tsx"}, tsx.GetLanguage))
}

func NewJavaScriptParser() *TreeSitterParser {
	return newTreeSitterParser(scriptGrammar("javascript", []string{".js", ".jsx", ".mjs", ".cjs"}, javascript.GetLanguage))
}
