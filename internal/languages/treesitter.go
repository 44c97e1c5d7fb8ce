package languages

import (
	"context"
	"fmt"
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// maxWalkDepth bounds recursion on pathological trees.
const maxWalkDepth = 1000

// match is what a grammar hook reports for one declaration node.
type match struct {
	name  string
	kind  parser.SymbolKind
	start uint32
	end   uint32
}

// grammar describes how declarations look in one tree-sitter language.
type grammar struct {
	name       string
	extensions []string
	language   func() *sitter.Language

	// kinds maps declaration node types to symbol kinds.
	kinds map[string]parser.SymbolKind
	// nameTypes lists the child node types that carry a declaration's name.
	nameTypes map[string]bool
	// wrappers are node types whose range absorbs the declaration they wrap,
	// such as export statements and decorators.
	wrappers map[string]bool
	// classify handles node types that need more than a table lookup.
	classify func(node *sitter.Node, content []byte) []match
}

// TreeSitterParser extracts symbols and validates syntax with a tree-sitter grammar.
type TreeSitterParser struct {
	g grammar
}

func newTreeSitterParser(g grammar) *TreeSitterParser {
	return &TreeSitterParser{g: g}
}

func (p *TreeSitterParser) Language() string {
	return p.g.name
}

func (p *TreeSitterParser) Extensions() []string {
	return p.g.extensions
}

// parse builds a fresh parser per call; sitter.Parser is not safe for concurrent use.
func (p *TreeSitterParser) parse(content []byte) (*sitter.Tree, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(p.g.language())

	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", p.g.name, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source: no tree", p.g.name)
	}
	return tree, nil
}

func (p *TreeSitterParser) Extract(filename string, content []byte) *parser.FileSymbols {
	result := &parser.FileSymbols{
		Path:         filename,
		Language:     p.g.name,
		Symbols:      make([]parser.Symbol, 0),
		ParserBacked: true,
	}

	tree, err := p.parse(content)
	if err != nil {
		return result
	}
	defer tree.Close()

	p.extractSymbols(tree.RootNode(), content, result, 0)
	return result
}

func (p *TreeSitterParser) extractSymbols(node *sitter.Node, content []byte, result *parser.FileSymbols, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}

	skip := p.collect(node, content, result)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || sameNode(child, skip) {
			continue
		}
		p.extractSymbols(child, content, result, depth+1)
	}
}

// collect records the declarations at node. When node wraps a declaration,
// the wrapped node is returned so its own range is not recorded a second time;
// its children are still walked.
func (p *TreeSitterParser) collect(node *sitter.Node, content []byte, result *parser.FileSymbols) *sitter.Node {
	if p.g.wrappers[node.Type()] {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			inner := node.NamedChild(i)
			found := p.declare(inner, content)
			if len(found) == 0 {
				continue
			}
			for _, m := range found {
				if len(found) == 1 {
					m.start, m.end = node.StartByte(), node.EndByte()
				}
				result.Symbols = append(result.Symbols, m.symbol())
			}
			for j := 0; j < int(inner.ChildCount()); j++ {
				p.extractSymbols(inner.Child(j), content, result, 1)
			}
			return inner
		}
		return nil
	}

	for _, m := range p.declare(node, content) {
		result.Symbols = append(result.Symbols, m.symbol())
	}
	return nil
}

func (p *TreeSitterParser) declare(node *sitter.Node, content []byte) []match {
	if p.g.classify != nil {
		if found := p.g.classify(node, content); found != nil {
			return found
		}
	}
	kind, ok := p.g.kinds[node.Type()]
	if !ok {
		return nil
	}
	name := declarationName(node, content, p.g.nameTypes)
	if name == "" {
		return nil
	}
	return []match{{name: name, kind: kind, start: node.StartByte(), end: node.EndByte()}}
}

// declarationName reads the grammar's "name" field, falling back to the first
// name-carrying child.
func declarationName(node *sitter.Node, content []byte, nameTypes map[string]bool) string {
	if named := node.ChildByFieldName("name"); named != nil {
		return strings.TrimSpace(named.Content(content))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && nameTypes[child.Type()] {
			return strings.TrimSpace(child.Content(content))
		}
	}
	return ""
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func (m match) symbol() parser.Symbol {
	return parser.Symbol{
		Name:      m.name,
		Kind:      m.kind,
		StartByte: int(m.start),
		EndByte:   int(m.end),
	}
}
