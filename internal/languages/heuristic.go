package languages

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
)

type declPattern struct {
	re   *regexp.Regexp
	kind parser.SymbolKind
}

// declPatterns are tried in order; the first pattern to record a name wins.
var declPatterns = []declPattern{
	{regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)\n]*\))?[ \t]+)?(?:async[ \t]+)?(?:unsafe[ \t]+)?fn[ \t]+(\w+)`), parser.SymbolFunction},
	{regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)\n]*\))?[ \t]+)?struct[ \t]+(\w+)`), parser.SymbolStruct},
	{regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)\n]*\))?[ \t]+)?(?:export[ \t]+)?enum[ \t]+(\w+)`), parser.SymbolEnum},
	{regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:async[ \t]+)?function\*?[ \t]+(\w+)`), parser.SymbolFunction},
	{regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:abstract[ \t]+)?class[ \t]+(\w+)`), parser.SymbolClass},
	{regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:(?:public|internal)[ \t]+)?interface[ \t]+(\w+)`), parser.SymbolInterface},
	{regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+(\w+)`), parser.SymbolFunction},
	{regexp.MustCompile(`(?m)^func[ \t]+(?:\([^)\n]+\)[ \t]*)?(\w+)`), parser.SymbolFunction},
	{regexp.MustCompile(`(?m)^type[ \t]+(\w+)[ \t]+struct\b`), parser.SymbolStruct},
	{regexp.MustCompile(`(?m)^type[ \t]+(\w+)[ \t]+interface\b`), parser.SymbolInterface},
	{regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected)[ \t]+)?(?:static[ \t]+)?function[ \t]+(\w+)`), parser.SymbolFunction},
	{regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|internal)[ \t]+)?(?:(?:abstract|final|static|sealed|partial)[ \t]+)*class[ \t]+(\w+)`), parser.SymbolClass},
	{regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|internal)[ \t]+)?(?:(?:static|async|virtual|override|final|abstract|synchronized)[ \t]+)*[\w<>,\[\]]+[ \t]+(\w+)[ \t]*\(`), parser.SymbolFunction},
}

// controlWords never name a declaration, and a line opening with one is a
// statement rather than a method signature.
var controlWords = map[string]bool{
	"if": true, "for": true, "while": true, "return": true, "new": true,
	"this": true, "var": true, "let": true, "const": true, "switch": true,
	"catch": true, "else": true, "throw": true, "case": true, "await": true,
	"yield": true, "delete": true, "typeof": true,
}

// HeuristicParser finds declarations with line patterns for files that have no
// tree-sitter grammar. It cannot validate syntax.
type HeuristicParser struct{}

func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{}
}

func (h *HeuristicParser) Language() string {
	return "heuristic"
}

func (h *HeuristicParser) Extensions() []string {
	return nil
}

func (h *HeuristicParser) Extract(filename string, content []byte) *parser.FileSymbols {
	result := &parser.FileSymbols{
		Path:     filename,
		Language: h.Language(),
		Symbols:  make([]parser.Symbol, 0),
	}

	seen := make(map[string]bool)
	for _, pattern := range declPatterns {
		for _, loc := range pattern.re.FindAllSubmatchIndex(content, -1) {
			name := string(content[loc[2]:loc[3]])
			if seen[name] || controlWords[name] {
				continue
			}

			start := bytes.LastIndexByte(content[:loc[2]], '\n') + 1
			if controlWords[firstWord(content[start:loc[2]])] {
				continue
			}

			length := BlockExtent(content[start:])
			if length == 0 {
				continue
			}

			seen[name] = true
			result.Symbols = append(result.Symbols, parser.Symbol{
				Name:      name,
				Kind:      pattern.kind,
				StartByte: start,
				EndByte:   start + length,
			})
		}
	}
	return result
}

func firstWord(line []byte) string {
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
