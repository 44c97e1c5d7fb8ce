package languages

import (
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// NewGoParser creates the parser-backed extractor for Go source files.
func NewGoParser() *TreeSitterParser {
	return newTreeSitterParser(grammar{
		name:       "go",
		extensions: []string{".go"},
		language:   golang.GetLanguage,
		kinds: map[string]parser.SymbolKind{
			"function_declaration": parser.SymbolFunction,
			"method_declaration":   parser.SymbolFunction,
		},
		nameTypes: map[string]bool{
			"identifier":       true,
			"field_identifier": true,
		},
		classify: classifyGoTypeDecl,
	})
}

// classifyGoTypeDecl reports struct and interface types. A declaration holding
// a single spec covers the whole "type X struct {...}" text; grouped specs are
// reported individually.
func classifyGoTypeDecl(node *sitter.Node, content []byte) []match {
	if node.Type() != "type_declaration" {
		return nil
	}

	specs := make([]*sitter.Node, 0, 1)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "type_spec" {
			specs = append(specs, child)
		}
	}

	found := make([]match, 0, len(specs))
	for _, spec := range specs {
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}

		var kind parser.SymbolKind
		switch typeNode.Type() {
		case "struct_type":
			kind = parser.SymbolStruct
		case "interface_type":
			kind = parser.SymbolInterface
		default:
			continue
		}

		m := match{
			name:  strings.TrimSpace(nameNode.Content(content)),
			kind:  kind,
			start: spec.StartByte(),
			end:   spec.EndByte(),
		}
		if len(specs) == 1 {
			m.start, m.end = node.StartByte(), node.EndByte()
		}
		found = append(found, m)
	}
	return found
}
