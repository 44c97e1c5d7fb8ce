package languages

import "github.com/morozRed/cortexact/internal/parser"

// NewDefaultRegistry creates a registry with every tree-sitter grammar and the
// pattern heuristic as the fallback for other extensions.
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry(NewHeuristicParser())

	r.Register(NewRustParser())
	r.Register(NewGoParser())
	r.Register(NewPythonParser())
	r.Register(NewTypeScriptParser())
	r.Register(NewTSXParser())
	r.Register(NewJavaScriptParser())
	r.Register(NewRubyParser())

	return r
}
