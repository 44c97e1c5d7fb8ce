package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompileDefaultsAndOverrides(t *testing.T) {
	rs := Compile(
		"vendor/**",
		"!vendor/keep/file.go",
		"*.tmp",
	)

	cases := []struct {
		path  string
		isDir bool
		skip  bool
	}{
		{path: ".git/config", skip: true},
		{path: ".cortexact/jobs/job_1.log", skip: true},
		{path: "node_modules/pkg/index.js", skip: true},
		{path: "web/node_modules", isDir: true, skip: true},
		{path: "vendor/lib/a.go", skip: true},
		{path: "vendor/keep/file.go", skip: false},
		{path: "nested/cache.tmp", skip: true},
		{path: "src/main.go", skip: false},
		{path: "src/build", isDir: false, skip: false},
		{path: "src/build", isDir: true, skip: true},
	}

	for _, tc := range cases {
		if got := rs.Skip(tc.path, tc.isDir); got != tc.skip {
			t.Fatalf("Skip(%q, %v) = %v, want %v", tc.path, tc.isDir, got, tc.skip)
		}
	}
}

func TestNegatedDirectoryRule(t *testing.T) {
	rs := Compile("build/", "!build/include/")

	if !rs.Skip("build/out/file.go", false) {
		t.Fatalf("expected build/out/file.go to be skipped")
	}
	if rs.Skip("build/include/file.go", false) {
		t.Fatalf("expected build/include/file.go to be kept")
	}
}

func TestAnchoredPatterns(t *testing.T) {
	rs := Compile("/gen", "docs/*.md", "**/fixtures/")

	cases := []struct {
		path string
		skip bool
	}{
		{"gen/a.go", true},
		{"pkg/gen/a.go", false},
		{"docs/intro.md", true},
		{"pkg/docs/intro.md", false},
		{"docs/deep/intro.md", false},
		{"a/b/fixtures/x.rs", true},
		{"fixtures/x.rs", true},
	}
	for _, tc := range cases {
		if got := rs.Skip(tc.path, false); got != tc.skip {
			t.Fatalf("Skip(%q) = %v, want %v", tc.path, got, tc.skip)
		}
	}
}

func TestLoadReadsBothFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("# build output\n*.log\n\ngen/\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("!gen/keep.go\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rs, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := len(rs.rules), len(defaults)+3; got != want {
		t.Fatalf("compiled %d rules, want %d", got, want)
	}
	if !rs.Skip("gen/other.go", false) {
		t.Fatalf("expected gen/other.go to be skipped")
	}
	if rs.Skip("gen/keep.go", false) {
		t.Fatalf("expected gen/keep.go to be re-included")
	}
	if !rs.Skip("out/run.log", false) {
		t.Fatalf("expected out/run.log to be skipped")
	}
}

func TestLoadMissingFilesKeepsDefaults(t *testing.T) {
	rs, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !rs.Skip("node_modules/x.js", false) || rs.Skip("main.go", false) {
		t.Fatalf("expected only the default rules to apply")
	}
}

func TestNilRulesSkipNothing(t *testing.T) {
	var rs *Rules
	if rs.Skip("node_modules/x.js", false) {
		t.Fatalf("nil rule set should skip nothing")
	}
}
