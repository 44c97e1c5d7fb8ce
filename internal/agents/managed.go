// Package agents writes cortexact usage instructions into the files coding
// agents read at session start (AGENTS.md, CLAUDE.md, Cursor rules).
package agents

import (
	"fmt"
	"os"
	"strings"

	"github.com/morozRed/cortexact/internal/fileutil"
)

const (
	ManagedBlockStart = "<!-- cortexact:managed:start -->"
	ManagedBlockEnd   = "<!-- cortexact:managed:end -->"
)

// UpsertManagedMarkdownFile replaces the managed block in path with body,
// appending one if the file has none. Text outside the block is kept.
func UpsertManagedMarkdownFile(path, body string) (bool, error) {
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	managed := fmt.Sprintf("%s\n%s\n%s", ManagedBlockStart, strings.TrimSpace(body), ManagedBlockEnd)
	updated := UpsertManagedBlock(existing, managed)
	return fileutil.WriteIfChanged(path, []byte(updated))
}

func UpsertManagedBlock(existing, managedContent string) string {
	if existing == "" {
		return managedContent + "\n"
	}

	start := strings.Index(existing, ManagedBlockStart)
	end := strings.Index(existing, ManagedBlockEnd)
	if start >= 0 && end >= start {
		end += len(ManagedBlockEnd)
		return fileutil.EnsureTrailingNewline(existing[:start] + managedContent + existing[end:])
	}

	return fileutil.EnsureTrailingNewline(existing) + "\n" + managedContent + "\n"
}

func ContainsManagedBlock(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	text := string(data)
	return strings.Contains(text, ManagedBlockStart) && strings.Contains(text, ManagedBlockEnd)
}
