package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/morozRed/cortexact/internal/errdefs"
	"github.com/morozRed/cortexact/internal/ignore"
)

// DefaultScanLimit caps how many files ScanDirectory extracts.
const DefaultScanLimit = 2000

// ScanIssue records a file or directory the scan could not read.
type ScanIssue struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Overview is the symbol map of a directory tree.
type Overview struct {
	Root      string        `json:"root"`
	Files     []FileSymbols `json:"files"`
	Issues    []ScanIssue   `json:"issues,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
}

// ScanDirectory extracts symbols from every file under root that has a
// dedicated grammar, skipping paths the rule set excludes; nil rules use
// the built-in defaults. Paths in the result are relative to root. At most
// limit files are read.
func (r *Registry) ScanDirectory(root string, rules *ignore.Rules, limit int) (*Overview, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %s does not exist: %w", root, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to inspect %s: %w: %w", root, err, errdefs.ErrIO)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", root, errdefs.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultScanLimit
	}

	if rules == nil {
		rules = ignore.Compile()
	}
	overview := &Overview{
		Root:  root,
		Files: make([]FileSymbols, 0),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		if err != nil {
			overview.Issues = append(overview.Issues, ScanIssue{File: relPath, Message: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if relPath == "." {
			return nil
		}
		if rules.Skip(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, err := r.Lookup(path); err != nil {
			return nil
		}
		if len(overview.Files) >= limit {
			overview.Truncated = true
			return filepath.SkipAll
		}

		symbols, err := r.ExtractFile(path)
		if err != nil {
			overview.Issues = append(overview.Issues, ScanIssue{File: relPath, Message: err.Error()})
			return nil
		}
		symbols.Path = filepath.ToSlash(relPath)
		overview.Files = append(overview.Files, *symbols)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w: %w", root, err, errdefs.ErrIO)
	}

	sort.Slice(overview.Files, func(i, j int) bool {
		return overview.Files[i].Path < overview.Files[j].Path
	})
	return overview, nil
}
