package parser

import (
	"fmt"
	"strings"
)

// SymbolKind represents the type of code symbol
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolStruct
	SymbolClass
	SymbolEnum
	SymbolImpl
	SymbolTrait
	SymbolInterface
	SymbolModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolClass:
		return "class"
	case SymbolEnum:
		return "enum"
	case SymbolImpl:
		return "impl"
	case SymbolTrait:
		return "trait"
	case SymbolInterface:
		return "interface"
	case SymbolModule:
		return "module"
	default:
		return "unknown"
	}
}

// ParseSymbolKind maps a kind label (including common aliases) back to a SymbolKind.
func ParseSymbolKind(raw string) (SymbolKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "function", "func", "fn", "method", "def":
		return SymbolFunction, true
	case "struct":
		return SymbolStruct, true
	case "class":
		return SymbolClass, true
	case "enum":
		return SymbolEnum, true
	case "impl":
		return SymbolImpl, true
	case "trait":
		return SymbolTrait, true
	case "interface":
		return SymbolInterface, true
	case "module", "mod":
		return SymbolModule, true
	default:
		return 0, false
	}
}

// MarshalText renders the kind label so symbols serialize as {"kind":"function"}.
func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SymbolKind) UnmarshalText(text []byte) error {
	kind, ok := ParseSymbolKind(string(text))
	if !ok {
		return fmt.Errorf("unknown symbol kind %q", string(text))
	}
	*k = kind
	return nil
}

// Symbol is a named, byte-ranged structural unit found in a source file.
// StartByte < EndByte <= len(source).
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartByte int        `json:"start_byte"`
	EndByte   int        `json:"end_byte"`
}

// Key returns the qualified "kind:name" form accepted as an edit target.
func (s Symbol) Key() string {
	return s.Kind.String() + ":" + s.Name
}

// Valid reports whether the byte range is usable against a source of srcLen bytes.
func (s Symbol) Valid(srcLen int) bool {
	return s.Name != "" && s.StartByte >= 0 && s.StartByte < s.EndByte && s.EndByte <= srcLen
}

// ValidationError describes one syntax problem found when re-parsing a buffer.
// Line and Column are 1-based.
type ValidationError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Line, e.Column)
}

// FileSymbols holds all symbols extracted from a single file
type FileSymbols struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Symbols  []Symbol `json:"symbols"`
	// ParserBacked is true when symbols came from a concrete syntax tree
	// rather than pattern heuristics.
	ParserBacked bool `json:"parser_backed"`
}

// Find returns the first symbol matching target, preferring an exact "kind:name" match
// over a bare-name match.
func (f *FileSymbols) Find(target string) (Symbol, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Symbol{}, false
	}
	kindLabel, name, qualified := strings.Cut(target, ":")
	if qualified {
		if kind, ok := ParseSymbolKind(kindLabel); ok {
			for _, sym := range f.Symbols {
				if sym.Kind == kind && sym.Name == name {
					return sym, true
				}
			}
		}
	}
	for _, sym := range f.Symbols {
		if sym.Name == target {
			return sym, true
		}
	}
	return Symbol{}, false
}
