package languages

import (
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/smacker/go-tree-sitter/ruby"
)

// NewRubyParser creates the parser-backed extractor for Ruby source files.
func NewRubyParser() *TreeSitterParser {
	return newTreeSitterParser(grammar{
		name:       "ruby",
		extensions: []string{".rb", ".rake", ".gemspec"},
		language:   ruby.GetLanguage,
		kinds: map[string]parser.SymbolKind{
			"method":           parser.SymbolFunction,
			"singleton_method": parser.SymbolFunction,
			"class":            parser.SymbolClass,
			"module":           parser.SymbolModule,
		},
		nameTypes: map[string]bool{
			"identifier": true,
			"constant":   true,
		},
	})
}
