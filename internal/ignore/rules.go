// Package ignore decides which paths a directory overview skips, using
// gitignore-style rules from .gitignore and .cortexactignore.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileName is the per-project ignore file read by Load.
const FileName = ".cortexactignore"

// defaults hide dependency, build and tool directories. Project rules come
// after them, so a negation can bring a path back.
var defaults = []string{
	".git/",
	".cortexact/",
	".venv/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	"__pycache__/",
}

type rule struct {
	negated bool
	// below matches the path itself and anything beneath it.
	below *regexp.Regexp
	// self matches only the path; set for directory rules, which skip a
	// file of the same name.
	self *regexp.Regexp
}

// Rules is an ordered rule set. The last rule that matches a path decides.
type Rules struct {
	rules []rule
}

// Compile builds a rule set from the defaults followed by lines. Blank lines,
// comments and patterns that reduce to nothing are dropped.
func Compile(lines ...string) *Rules {
	all := append(append(make([]string, 0, len(defaults)+len(lines)), defaults...), lines...)
	rs := &Rules{rules: make([]rule, 0, len(all))}
	for _, line := range all {
		if r, ok := compileRule(line); ok {
			rs.rules = append(rs.rules, r)
		}
	}
	return rs
}

// Load compiles the defaults plus root/.gitignore and root/.cortexactignore,
// in that order. Missing files are skipped.
func Load(root string) (*Rules, error) {
	var lines []string
	for _, name := range []string{".gitignore", FileName} {
		fileLines, err := readLines(filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}
	return Compile(lines...), nil
}

// Skip reports whether relPath, relative to the scan root, is excluded.
func (rs *Rules) Skip(relPath string, isDir bool) bool {
	if rs == nil {
		return false
	}
	relPath = strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(relPath), "./"), "/")
	skip := false
	for _, r := range rs.rules {
		if r.below.MatchString(relPath) || (isDir && r.self != nil && r.self.MatchString(relPath)) {
			skip = !r.negated
		}
	}
	return skip
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}

// compileRule turns one gitignore line into anchored regexps. A pattern with
// an inner slash is relative to the root; otherwise it may match at any depth.
func compileRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if strings.HasPrefix(line, "!") {
		r.negated = true
		line = line[1:]
	}
	line = filepath.ToSlash(line)
	dirOnly := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return rule{}, false
	}

	prefix := "^(?:.*/)?"
	if anchored {
		prefix = "^"
	}
	body := globToRegexp(line)
	if dirOnly {
		r.below = regexp.MustCompile(prefix + body + "/")
		r.self = regexp.MustCompile(prefix + body + "$")
	} else {
		r.below = regexp.MustCompile(prefix + body + "(?:/|$)")
	}
	return r, true
}

func globToRegexp(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
