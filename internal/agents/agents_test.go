package agents

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseProviders(t *testing.T) {
	got, err := ParseProviders("Claude, codex claude")
	if err != nil {
		t.Fatalf("ParseProviders failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"claude", "codex"}) {
		t.Fatalf("unexpected providers %v", got)
	}

	got, err = ParseProviders("all")
	if err != nil || !reflect.DeepEqual(got, []string{"codex", "claude", "cursor"}) {
		t.Fatalf("expected all providers, got %v (%v)", got, err)
	}

	if _, err := ParseProviders("vim"); err == nil {
		t.Fatalf("expected unknown provider to be rejected")
	}
	if got, err := ParseProviders("  "); err != nil || got != nil {
		t.Fatalf("expected empty input to yield nil, got %v (%v)", got, err)
	}
}

func TestUpsertManagedBlockKeepsUserText(t *testing.T) {
	existing := "# Project\n\nhand written\n"
	first := UpsertManagedBlock(existing, ManagedBlockStart+"\nv1\n"+ManagedBlockEnd)
	if !strings.HasPrefix(first, existing) || !strings.Contains(first, "v1") {
		t.Fatalf("expected block appended after user text, got %q", first)
	}

	second := UpsertManagedBlock(first, ManagedBlockStart+"\nv2\n"+ManagedBlockEnd)
	if strings.Contains(second, "v1") || !strings.Contains(second, "v2") {
		t.Fatalf("expected block replaced in place, got %q", second)
	}
	if strings.Count(second, ManagedBlockStart) != 1 {
		t.Fatalf("expected exactly one managed block, got %q", second)
	}
}

func TestWriteIntegrationFilesIdempotent(t *testing.T) {
	root := t.TempDir()

	updated, err := WriteIntegrationFiles(root, []string{"codex", "claude", "cursor"})
	if err != nil {
		t.Fatalf("WriteIntegrationFiles failed: %v", err)
	}
	want := []string{".cursor/rules/cortexact.mdc", "AGENTS.md", "CLAUDE.md"}
	if !reflect.DeepEqual(updated, want) {
		t.Fatalf("updated = %v, want %v", updated, want)
	}

	data, err := os.ReadFile(filepath.Join(root, "CLAUDE.md"))
	if err != nil {
		t.Fatalf("failed to read CLAUDE.md: %v", err)
	}
	if !strings.Contains(string(data), "edit_ast") || !strings.Contains(string(data), "run_async") {
		t.Fatalf("instructions should name the tools, got:\n%s", data)
	}

	updated, err = WriteIntegrationFiles(root, []string{"codex", "claude", "cursor"})
	if err != nil {
		t.Fatalf("second WriteIntegrationFiles failed: %v", err)
	}
	if len(updated) != 0 {
		t.Fatalf("expected second run to change nothing, got %v", updated)
	}

	detected := DetectIntegrations(root)
	for _, provider := range []string{"codex", "claude", "cursor"} {
		if !detected[provider] {
			t.Fatalf("expected %s integration to be detected", provider)
		}
	}
}
