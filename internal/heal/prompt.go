package heal

import (
	"fmt"
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
)

const systemPrompt = "You are an expert compiler. Fix only the reported syntax errors. " +
	"Output ONLY raw code -- no markdown, no backticks, no explanations."

func buildPrompt(source string, errs []parser.ValidationError) string {
	var b strings.Builder
	if len(errs) == 0 {
		b.WriteString("(Tree-sitter detected syntax errors but could not pinpoint them.)")
	} else {
		b.WriteString("Tree-sitter reported the following syntax errors:")
		for i, e := range errs {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, e.String())
		}
	}
	b.WriteString("\n\nFix ONLY the syntax errors listed above. Output ONLY raw code, no markdown, no backticks.")
	b.WriteString("\n\nBroken code:\n\n")
	b.WriteString(source)
	return b.String()
}
