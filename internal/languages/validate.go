package languages

import (
	"fmt"
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// maxSyntaxErrors caps how many problems one validation pass reports.
	maxSyntaxErrors = 50
	// snippetLen is how much of an ERROR node's text goes into its message.
	snippetLen = 40
)

// Validate re-parses content and reports every ERROR and MISSING node.
// An empty result means the buffer is syntactically clean.
func (p *TreeSitterParser) Validate(filename string, content []byte) []parser.ValidationError {
	tree, err := p.parse(content)
	if err != nil {
		return []parser.ValidationError{{Message: err.Error(), Line: 1, Column: 1}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	errs := make([]parser.ValidationError, 0)
	collectSyntaxErrors(root, content, &errs, 0)
	if len(errs) == 0 {
		errs = append(errs, parser.ValidationError{Message: "Syntax error", Line: 1, Column: 1})
	}
	return errs
}

func collectSyntaxErrors(node *sitter.Node, content []byte, errs *[]parser.ValidationError, depth int) {
	if node == nil || depth > maxWalkDepth || len(*errs) >= maxSyntaxErrors {
		return
	}

	pos := node.StartPoint()
	switch {
	case node.IsMissing():
		*errs = append(*errs, parser.ValidationError{
			Message: fmt.Sprintf("Missing '%s'", node.Type()),
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
		})
		return
	case node.IsError():
		*errs = append(*errs, parser.ValidationError{
			Message: fmt.Sprintf("Unexpected '%s'", errorSnippet(node.Content(content))),
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
		})
	}

	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxErrors(node.Child(i), content, errs, depth+1)
	}
}

func errorSnippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetLen {
		runes = runes[:snippetLen]
	}
	return strings.TrimSpace(string(runes))
}
