package agents

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/cortexact/internal/fileutil"
)

var knownProviders = []string{"codex", "claude", "cursor"}

// ParseProviders accepts a comma or space separated provider list; "all"
// expands to every known provider.
func ParseProviders(raw string) ([]string, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(knownProviders))
	add := func(value string) {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}

	for _, chunk := range strings.Split(raw, ",") {
		for _, value := range strings.Fields(chunk) {
			switch {
			case value == "all":
				for _, p := range knownProviders {
					add(p)
				}
			case isKnown(value):
				add(value)
			default:
				return nil, fmt.Errorf("unsupported agent %q (supported: %s, all)", value, strings.Join(knownProviders, ", "))
			}
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func isKnown(provider string) bool {
	for _, p := range knownProviders {
		if p == provider {
			return true
		}
	}
	return false
}

// cursorRulePath is relative to the project root.
var cursorRulePath = filepath.Join(".cursor", "rules", "cortexact.mdc")

// WriteIntegrationFiles writes instructions for each provider under rootPath
// and returns the slash-separated paths that changed.
func WriteIntegrationFiles(rootPath string, providers []string) ([]string, error) {
	updated := make([]string, 0)

	for _, provider := range providers {
		var (
			rel     string
			changed bool
			err     error
		)
		switch provider {
		case "codex":
			rel = "AGENTS.md"
			changed, err = UpsertManagedMarkdownFile(filepath.Join(rootPath, rel), BuildAdapterBlock("Codex"))
		case "claude":
			rel = "CLAUDE.md"
			changed, err = UpsertManagedMarkdownFile(filepath.Join(rootPath, rel), BuildAdapterBlock("Claude"))
		case "cursor":
			rel = cursorRulePath
			changed, err = fileutil.WriteIfChanged(filepath.Join(rootPath, rel), []byte(BuildCursorRuleContent()))
		default:
			return nil, fmt.Errorf("unsupported agent %q", provider)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", rel, err)
		}
		if changed {
			updated = append(updated, filepath.ToSlash(rel))
		}
	}

	sort.Strings(updated)
	return updated, nil
}

// DetectIntegrations reports which providers already carry instructions.
func DetectIntegrations(rootPath string) map[string]bool {
	return map[string]bool{
		"codex":  ContainsManagedBlock(filepath.Join(rootPath, "AGENTS.md")),
		"claude": ContainsManagedBlock(filepath.Join(rootPath, "CLAUDE.md")),
		"cursor": fileutil.Exists(filepath.Join(rootPath, cursorRulePath)),
	}
}
