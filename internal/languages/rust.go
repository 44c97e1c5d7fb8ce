package languages

import (
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/smacker/go-tree-sitter/rust"
)

// NewRustParser creates the parser-backed extractor for Rust source files.
func NewRustParser() *TreeSitterParser {
	return newTreeSitterParser(grammar{
		name:       "rust",
		extensions: []string{".rs"},
		language:   rust.GetLanguage,
		kinds: map[string]parser.SymbolKind{
			"function_item": parser.SymbolFunction,
			"struct_item":   parser.SymbolStruct,
			"enum_item":     parser.SymbolEnum,
			"impl_item":     parser.SymbolImpl,
			"trait_item":    parser.SymbolTrait,
			"mod_item":      parser.SymbolModule,
		},
		nameTypes: map[string]bool{
			"identifier":      true,
			"type_identifier": true,
		},
	})
}
