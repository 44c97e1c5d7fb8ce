package languages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rustSource = `pub struct Auth {
    token: String,
}

impl Auth {
    pub fn check(&self) -> bool {
        !self.token.is_empty()
    }
}

fn main() {
    let a = 1;
}

mod net {}
`

func TestRustParserExtractsDeclarations(t *testing.T) {
	file := NewRustParser().Extract("lib.rs", []byte(rustSource))
	if !file.ParserBacked {
		t.Fatalf("expected tree-sitter symbols to be parser-backed")
	}

	auth := mustFindSymbol(t, file, "struct:Auth")
	if got := rustSource[auth.StartByte:auth.EndByte]; got != "pub struct Auth {\n    token: String,\n}" {
		t.Fatalf("unexpected struct text %q", got)
	}

	impl := mustFindSymbol(t, file, "impl:Auth")
	if !strings.HasPrefix(rustSource[impl.StartByte:impl.EndByte], "impl Auth {") {
		t.Fatalf("unexpected impl text %q", rustSource[impl.StartByte:impl.EndByte])
	}

	check := mustFindSymbol(t, file, "function:check")
	if check.StartByte <= impl.StartByte || check.EndByte >= impl.EndByte {
		t.Fatalf("expected nested method inside impl range")
	}

	mustFindSymbol(t, file, "function:main")
	mustFindSymbol(t, file, "module:net")

	sym, _ := file.Find("Auth")
	if sym.Key() != "struct:Auth" {
		t.Fatalf("expected bare Auth to resolve to the first declaration, got %s", sym.Key())
	}
}

func TestRustValidatorReportsUnclosedBlock(t *testing.T) {
	errs := NewRustParser().Validate("lib.rs", []byte("fn broken() { let x = 5;"))
	if len(errs) == 0 {
		t.Fatalf("expected syntax errors for unclosed block")
	}
	for _, e := range errs {
		if !strings.HasPrefix(e.Message, "Missing '") && !strings.HasPrefix(e.Message, "Unexpected '") {
			t.Fatalf("unexpected error message %q", e.Message)
		}
		if e.Line < 1 || e.Column < 1 {
			t.Fatalf("expected 1-based position, got %d:%d", e.Line, e.Column)
		}
	}
}

func TestRustValidatorAcceptsCleanSource(t *testing.T) {
	if errs := NewRustParser().Validate("lib.rs", []byte(rustSource)); len(errs) != 0 {
		t.Fatalf("expected clean source, got %v", errs)
	}
}

func TestGoParserTypeDeclarations(t *testing.T) {
	src := `package demo

type Store struct {
	n int
}

type (
	Reader interface{ Read() int }
	Count  int
)

func (s *Store) Len() int { return s.n }

func New() *Store { return &Store{} }
`
	file := NewGoParser().Extract("demo.go", []byte(src))

	store := mustFindSymbol(t, file, "struct:Store")
	if got := src[store.StartByte:store.EndByte]; got != "type Store struct {\n\tn int\n}" {
		t.Fatalf("unexpected struct text %q", got)
	}
	reader := mustFindSymbol(t, file, "interface:Reader")
	if got := src[reader.StartByte:reader.EndByte]; got != "Reader interface{ Read() int }" {
		t.Fatalf("unexpected grouped spec text %q", got)
	}
	if _, ok := file.Find("Count"); ok {
		t.Fatalf("plain named types are not reported")
	}
	mustFindSymbol(t, file, "function:Len")
	mustFindSymbol(t, file, "function:New")
}

func TestPythonParserIncludesDecorators(t *testing.T) {
	src := "@cache\ndef load():\n    return 1\n\n\nclass Box:\n    def size(self):\n        return 2\n"
	file := NewPythonParser().Extract("app.py", []byte(src))

	load := mustFindSymbol(t, file, "function:load")
	if load.StartByte != 0 || !strings.Contains(src[load.StartByte:load.EndByte], "return 1") {
		t.Fatalf("unexpected decorated range %q", src[load.StartByte:load.EndByte])
	}
	count := 0
	for _, sym := range file.Symbols {
		if sym.Name == "load" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected decorated function once, got %d", count)
	}
	mustFindSymbol(t, file, "class:Box")
	mustFindSymbol(t, file, "function:size")
}

func TestTypeScriptParserIncludesExport(t *testing.T) {
	src := "export function greet(name: string): string {\n  return name;\n}\n\nclass Box {\n  value(): number { return 1; }\n}\n\ninterface Shape { area(): number }\n"
	file := NewTypeScriptParser().Extract("main.ts", []byte(src))

	greet := mustFindSymbol(t, file, "function:greet")
	if greet.StartByte != 0 {
		t.Fatalf("expected exported function to start at the export keyword, got %d", greet.StartByte)
	}
	mustFindSymbol(t, file, "class:Box")
	mustFindSymbol(t, file, "function:value")
	mustFindSymbol(t, file, "interface:Shape")
}

func TestDefaultRegistryFallsBackToHeuristic(t *testing.T) {
	r := NewDefaultRegistry()

	file := r.Extract("Greeter.java", []byte(javaGreeter))
	if file.ParserBacked || file.Language != "heuristic" {
		t.Fatalf("expected heuristic extraction, got %s (parser-backed=%t)", file.Language, file.ParserBacked)
	}
	if _, checked := r.Validate("Greeter.java", []byte("{")); checked {
		t.Fatalf("heuristic grammar must not validate")
	}

	if _, checked := r.Validate("lib.rs", []byte(rustSource)); !checked {
		t.Fatalf("expected rust to be validated")
	}
}

func TestGoParserEdgeCaseFixture(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "edge_cases.go"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	file := NewGoParser().Extract("edge_cases.go", src)

	var keys []string
	for _, sym := range file.Symbols {
		keys = append(keys, sym.Key())
	}
	want := []string{
		"interface:Service",
		"struct:Worker",
		"function:Run",
		"function:helper",
		"function:logStart",
		"struct:Queue",
	}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected symbols\n got: %v\nwant: %v", keys, want)
	}

	// interface methods are not declarations of their own
	run := mustFindSymbol(t, file, "function:Run")
	if !strings.HasPrefix(string(src[run.StartByte:]), "func (w *Worker) Run") {
		t.Fatalf("Run should resolve to the method body, got %q", src[run.StartByte:run.EndByte])
	}

	errs := NewGoParser().Validate("edge_cases.go", src)
	if len(errs) != 0 {
		t.Fatalf("fixture should be valid Go, got %v", errs)
	}
}
