package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/cortexact/internal/errdefs"
)

// Extractor defines the interface each grammar strategy must implement
type Extractor interface {
	// Language returns the language name (e.g., "rust", "python")
	Language() string

	// Extensions returns file extensions this extractor handles
	Extensions() []string

	// Extract returns the symbols found in content. Implementations never fail:
	// a grammar that cannot be parsed yields an empty symbol list.
	Extract(filename string, content []byte) *FileSymbols
}

// Validator is implemented by parser-backed extractors that can judge syntax.
type Validator interface {
	Validate(filename string, content []byte) []ValidationError
}

// Registry holds all registered extractors
type Registry struct {
	extractors map[string]Extractor // language name -> extractor
	extToLang  map[string]string    // extension -> language name
	fallback   Extractor
}

// NewRegistry creates a new extractor registry. fallback handles every extension
// without a registered grammar and may be nil.
func NewRegistry(fallback Extractor) *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
		fallback:   fallback,
	}
}

// Register adds an extractor to the registry
func (r *Registry) Register(e Extractor) {
	lang := e.Language()
	r.extractors[lang] = e
	for _, ext := range e.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// Lookup returns the grammar-specific extractor for a file, or an error wrapping
// errdefs.ErrParseUnavailable when only the fallback applies.
func (r *Registry) Lookup(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, fmt.Errorf("no grammar for %q: %w", ext, errdefs.ErrParseUnavailable)
	}
	return r.extractors[lang], nil
}

// ExtractorForFile returns the extractor that will handle filename.
func (r *Registry) ExtractorForFile(filename string) (Extractor, bool) {
	if e, err := r.Lookup(filename); err == nil {
		return e, true
	}
	if r.fallback == nil {
		return nil, false
	}
	return r.fallback, true
}

// SupportedExtensions returns all extensions with a dedicated grammar
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract runs the matching extractor over content.
func (r *Registry) Extract(filename string, content []byte) *FileSymbols {
	e, ok := r.ExtractorForFile(filename)
	if !ok {
		return &FileSymbols{Path: filename, Symbols: make([]Symbol, 0)}
	}

	symbols := e.Extract(filename, content)
	if symbols == nil {
		symbols = &FileSymbols{Path: filename, Language: e.Language()}
	}
	symbols.Symbols = normalizeSymbols(symbols.Symbols, len(content))
	return symbols
}

// ExtractFile reads a file and returns its symbols
func (r *Registry) ExtractFile(path string) (*FileSymbols, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", path, err, errdefs.ErrIO)
	}
	return r.Extract(path, content), nil
}

// Validate re-parses content with the file's grammar. checked is false when the
// grammar has no parser, in which case content is accepted as-is.
func (r *Registry) Validate(filename string, content []byte) (errs []ValidationError, checked bool) {
	e, err := r.Lookup(filename)
	if err != nil {
		return nil, false
	}
	v, ok := e.(Validator)
	if !ok {
		return nil, false
	}
	return v.Validate(filename, content), true
}

// normalizeSymbols drops symbols whose byte range would break offset arithmetic.
func normalizeSymbols(values []Symbol, srcLen int) []Symbol {
	out := make([]Symbol, 0, len(values))
	for _, value := range values {
		value.Name = strings.TrimSpace(value.Name)
		if !value.Valid(srcLen) {
			continue
		}
		out = append(out, value)
	}
	return out
}
