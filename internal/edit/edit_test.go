package edit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/morozRed/cortexact/internal/errdefs"
	"github.com/morozRed/cortexact/internal/heal"
	"github.com/morozRed/cortexact/internal/languages"
	"github.com/morozRed/cortexact/internal/parser"
)

const rustMain = `fn keep() -> i32 {
    1
}

fn main() {
    println!("old");
}
`

type fixedExtractor struct {
	symbols []parser.Symbol
}

func (f fixedExtractor) Language() string {
	return "fixed"
}

func (f fixedExtractor) Extensions() []string {
	return []string{".txt"}
}

func (f fixedExtractor) Extract(filename string, content []byte) *parser.FileSymbols {
	return &parser.FileSymbols{Path: filename, Language: "fixed", Symbols: f.symbols}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestApplyBottomUpKeepsOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letters.txt")
	mustWriteFile(t, path, "AAAA BBBB CCCC")

	registry := parser.NewRegistry(nil)
	registry.Register(fixedExtractor{symbols: []parser.Symbol{
		{Name: "a", Kind: parser.SymbolFunction, StartByte: 0, EndByte: 4},
		{Name: "b", Kind: parser.SymbolFunction, StartByte: 5, EndByte: 9},
		{Name: "c", Kind: parser.SymbolFunction, StartByte: 10, EndByte: 14},
	}})

	result, err := NewEngine(registry).Apply(context.Background(), Request{
		Path: path,
		Edits: []Edit{
			{Target: "a", Action: ActionReplace, Code: "X"},
			{Target: "b", Action: ActionReplace, Code: "Y"},
			{Target: "c", Action: ActionReplace, Code: "Z"},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := mustReadFile(t, path); got != "X Y Z" {
		t.Fatalf("expected X Y Z, got %q", got)
	}
	if result.Applied != 3 || result.Healed {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestApplyReplacesRustFunction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	engine := NewEngine(languages.NewDefaultRegistry())
	result, err := engine.Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "function:main", Action: ActionReplace, Code: "fn main() {\n    println!(\"new\");\n}"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := "fn keep() -> i32 {\n    1\n}\n\nfn main() {\n    println!(\"new\");\n}\n"
	if got := mustReadFile(t, path); got != want {
		t.Fatalf("unexpected content:\n%s", got)
	}
	if result.Content != want || result.Preview != want {
		t.Fatalf("expected result to carry the committed content")
	}
}

func TestApplyIsAtomicWhenTargetMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path: path,
		Edits: []Edit{
			{Target: "keep", Action: ActionDelete},
			{Target: "missing", Action: ActionReplace, Code: "fn missing() {}"},
		},
	})
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Fatalf("expected error to name the target, got %v", err)
	}
	if got := mustReadFile(t, path); got != rustMain {
		t.Fatalf("file must be untouched after a failed transaction")
	}
}

func TestApplySuggestsCloseTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "function:mian", Action: ActionDelete}},
	})
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "did you mean function:main") {
		t.Fatalf("expected a suggestion, got %v", err)
	}
}

func TestApplyRejectsBrokenSyntaxWithoutHealer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "main", Code: "fn main() {\n    let x = 5;"}},
	})
	if !errors.Is(err, errdefs.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if got := mustReadFile(t, path); got != rustMain {
		t.Fatalf("file must be untouched after validation failure")
	}
}

func TestApplyHealsBrokenSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	var seen heal.Request
	healer := heal.Func(func(ctx context.Context, req heal.Request) (string, error) {
		seen = req
		return "fn keep() -> i32 {\n    1\n}\n\nfn main() {\n    let x = 5;\n}", nil
	})

	engine := NewEngine(languages.NewDefaultRegistry(), WithHealer(healer))
	result, err := engine.Apply(context.Background(), Request{
		Path:           path,
		Edits:          []Edit{{Target: "main", Code: "fn main() {\n    let x = 5;"}},
		RepairEndpoint: "http://oracle.local/v1",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !result.Healed {
		t.Fatalf("expected result to be marked healed")
	}
	if len(seen.Errors) == 0 || !strings.Contains(seen.Source, "let x = 5;") {
		t.Fatalf("healer did not receive the broken buffer and its errors: %#v", seen)
	}
	if seen.Endpoint != "http://oracle.local/v1" {
		t.Fatalf("expected endpoint override to reach the healer, got %q", seen.Endpoint)
	}
	if got := mustReadFile(t, path); !strings.HasSuffix(got, "let x = 5;\n}\n") {
		t.Fatalf("unexpected healed content:\n%s", got)
	}
}

func TestApplyHealStillBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	healer := heal.Func(func(ctx context.Context, req heal.Request) (string, error) {
		return req.Source, nil
	})

	_, err := NewEngine(languages.NewDefaultRegistry(), WithHealer(healer)).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "main", Code: "fn main() {"}},
	})
	if !errors.Is(err, errdefs.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if got := mustReadFile(t, path); got != rustMain {
		t.Fatalf("file must be untouched when healing fails")
	}
}

func TestApplyHealTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	healer := heal.Func(func(ctx context.Context, req heal.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	engine := NewEngine(languages.NewDefaultRegistry(), WithHealer(healer), WithHealTimeout(50*time.Millisecond))
	_, err := engine.Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "main", Code: "fn main() {"}},
	})
	if !errors.Is(err, errdefs.ErrValidationFailed) || !errors.Is(err, errdefs.ErrTimeout) {
		t.Fatalf("expected ErrValidationFailed wrapping ErrTimeout, got %v", err)
	}
}

func TestApplyHeuristicGrammarSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Greeter.java")
	mustWriteFile(t, path, "class Greeter {\n    void hi() {\n    }\n}\n")

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "hi", Code: "    void hi( {"}},
	})
	if err != nil {
		t.Fatalf("expected heuristic grammar edit to be accepted, got %v", err)
	}
	if got := mustReadFile(t, path); !strings.Contains(got, "void hi( {") {
		t.Fatalf("unexpected content:\n%s", got)
	}
}

func TestApplySingleLineReplacementKeepsNextLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.star")
	mustWriteFile(t, path, "def a():\n    return 1\ndef b():\n    return 2\n")

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "a", Code: "def a(): return 9"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := "def a(): return 9\ndef b():\n    return 2\n"
	if got := mustReadFile(t, path); got != want {
		t.Fatalf("content = %q, want %q", got, want)
	}
}

func TestApplyDeletesPythonFunction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	mustWriteFile(t, path, "def a():\n    return 1\n\n\ndef b():\n    return 2\n")

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "function:a", Action: ActionDelete}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	got := mustReadFile(t, path)
	if strings.Contains(got, "def a") || !strings.Contains(got, "def b():\n    return 2\n") {
		t.Fatalf("unexpected content:\n%s", got)
	}
}

func TestApplyRejectsOverlappingTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	mustWriteFile(t, path, "impl Auth {\n    fn check(&self) {}\n}\n")

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path: path,
		Edits: []Edit{
			{Target: "impl:Auth", Action: ActionDelete},
			{Target: "check", Action: ActionDelete},
		},
	})
	if !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Fatalf("expected overlap to be rejected as invalid input, got %v", err)
	}
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "main", Action: "rename"}},
	})
	if !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file mode bits")
	}
	path := filepath.Join(t.TempDir(), "main.rs")
	mustWriteFile(t, path, rustMain)
	if err := os.Chmod(path, 0444); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  path,
		Edits: []Edit{{Target: "main", Action: ActionDelete}},
	})
	if !errors.Is(err, errdefs.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestApplyMissingFile(t *testing.T) {
	_, err := NewEngine(languages.NewDefaultRegistry()).Apply(context.Background(), Request{
		Path:  filepath.Join(t.TempDir(), "nope.rs"),
		Edits: []Edit{{Target: "main", Action: ActionDelete}},
	})
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeparator(t *testing.T) {
	cases := []struct {
		replacement, suffix string
		atLineStart         bool
		want                string
	}{
		{"X", " rest", false, ""},
		{"X", "rest", true, "\n"},
		{"def a(): return 9", "def b():", true, "\n"},
		{"def a(): return 9", "\ndef b():", false, ""},
		{"fn a() {\n}", "fn b", false, "\n"},
		{"fn a() {\n}", "\nfn b", false, ""},
		{"fn a() {}\n", "fn b", true, "\n"},
		{"fn a() {}\n\n", "fn b", true, ""},
		{"", "fn b", true, ""},
	}
	for _, tc := range cases {
		if got := separator(tc.replacement, tc.suffix, tc.atLineStart); got != tc.want {
			t.Fatalf("separator(%q, %q, %v) = %q, want %q", tc.replacement, tc.suffix, tc.atLineStart, got, tc.want)
		}
	}
}
