// Package edit applies batches of symbol-targeted edits to a source file as a
// single all-or-nothing transaction.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/morozRed/cortexact/internal/errdefs"
	"github.com/morozRed/cortexact/internal/fileutil"
	"github.com/morozRed/cortexact/internal/heal"
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/morozRed/cortexact/internal/search"
)

const (
	DefaultHealTimeout = 10 * time.Second
	previewRunes       = 500
	maxSuggestions     = 3
)

// Action is what an edit does to its target.
type Action string

const (
	ActionReplace Action = "replace"
	ActionDelete  Action = "delete"
)

// ParseAction accepts the action names used on the wire. An empty name means replace.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ActionReplace):
		return ActionReplace, nil
	case string(ActionDelete):
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("unknown action %q (use replace or delete): %w", raw, errdefs.ErrInvalidInput)
	}
}

// Edit targets one symbol by "kind:name" or bare name.
type Edit struct {
	Target string `json:"target"`
	Action Action `json:"action"`
	Code   string `json:"code,omitempty"`
}

// Result describes a committed transaction.
type Result struct {
	Path    string `json:"path"`
	Applied int    `json:"applied"`
	Healed  bool   `json:"healed"`
	Content string `json:"-"`
	Preview string `json:"preview"`
}

// Engine resolves, splices, validates and commits edits.
type Engine struct {
	registry    *parser.Registry
	healer      heal.Healer
	healTimeout time.Duration
	logger      *slog.Logger
}

type Option func(*Engine)

// WithHealer enables repair of edits that fail validation.
func WithHealer(h heal.Healer) Option {
	return func(e *Engine) { e.healer = h }
}

func WithHealTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.healTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(registry *parser.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:    registry,
		healTimeout: DefaultHealTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is one transaction against one file.
type Request struct {
	Path  string
	Edits []Edit
	// RepairEndpoint overrides the repair oracle URL for this transaction.
	RepairEndpoint string
}

type resolvedEdit struct {
	start int
	end   int
	edit  Edit
	key   string
}

// Apply runs the transaction. On any error the file on disk is untouched.
func (e *Engine) Apply(ctx context.Context, req Request) (*Result, error) {
	txID := uuid.NewString()
	logger := e.logger.With("tx", txID, "path", req.Path)
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := checkWritable(req.Path); err != nil {
		return nil, err
	}

	original, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", req.Path, err, errdefs.ErrIO)
	}

	file := e.registry.Extract(req.Path, original)
	resolved, err := resolve(file, req.Edits)
	if err != nil {
		return nil, err
	}

	content := splice(original, resolved)

	healed := false
	if errs, checked := e.registry.Validate(req.Path, content); checked && len(errs) > 0 {
		logger.Info("edit produced syntax errors", "errors", len(errs))
		content, err = e.heal(ctx, req, content, errs)
		if err != nil {
			logger.Warn("edit aborted", "error", err)
			return nil, err
		}
		if len(original) > 0 && original[len(original)-1] == '\n' {
			content = []byte(fileutil.EnsureTrailingNewline(string(content)))
		}
		healed = true
	}

	if err := fileutil.WriteAtomic(req.Path, content); err != nil {
		return nil, fmt.Errorf("failed to commit edits: %w: %w", err, errdefs.ErrIO)
	}

	logger.Info("edit committed",
		"edits", len(resolved),
		"healed", healed,
		"parser_backed", file.ParserBacked,
		"duration", time.Since(start),
	)

	text := string(content)
	return &Result{
		Path:    req.Path,
		Applied: len(resolved),
		Healed:  healed,
		Content: text,
		Preview: fileutil.Truncate(text, previewRunes),
	}, nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Path) == "" {
		return fmt.Errorf("file path is required: %w", errdefs.ErrInvalidInput)
	}
	if len(req.Edits) == 0 {
		return fmt.Errorf("at least one edit is required: %w", errdefs.ErrInvalidInput)
	}
	for i, ed := range req.Edits {
		if strings.TrimSpace(ed.Target) == "" {
			return fmt.Errorf("edit %d has no target: %w", i+1, errdefs.ErrInvalidInput)
		}
		if _, err := ParseAction(string(ed.Action)); err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}
	}
	return nil
}

func checkWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s does not exist: %w", path, errdefs.ErrNotFound)
		}
		return fmt.Errorf("failed to inspect %s: %w: %w", path, err, errdefs.ErrIO)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, errdefs.ErrInvalidInput)
	}
	if err := fileutil.CheckWritable(path); err != nil {
		return fmt.Errorf("file %s is not writable: %w", path, errdefs.ErrPermissionDenied)
	}
	return nil
}

func resolve(file *parser.FileSymbols, edits []Edit) ([]resolvedEdit, error) {
	resolved := make([]resolvedEdit, 0, len(edits))
	for _, ed := range edits {
		sym, ok := file.Find(ed.Target)
		if !ok {
			if suggestions := search.Suggest(file.Symbols, ed.Target, maxSuggestions); len(suggestions) > 0 {
				return nil, fmt.Errorf("target %q not found in %s (did you mean %s?): %w",
					ed.Target, file.Path, strings.Join(suggestions, ", "), errdefs.ErrNotFound)
			}
			return nil, fmt.Errorf("target %q not found in %s (%d symbols available): %w",
				ed.Target, file.Path, len(file.Symbols), errdefs.ErrNotFound)
		}
		resolved = append(resolved, resolvedEdit{
			start: sym.StartByte,
			end:   sym.EndByte,
			edit:  ed,
			key:   sym.Key(),
		})
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].start > resolved[j].start
	})

	// resolved is descending, so each range must end at or before the start
	// of the range applied just before it.
	for i := 1; i < len(resolved); i++ {
		if resolved[i].end > resolved[i-1].start {
			return nil, fmt.Errorf("edits for %s and %s overlap: %w",
				resolved[i].key, resolved[i-1].key, errdefs.ErrInvalidInput)
		}
	}
	return resolved, nil
}

// splice applies resolved edits back to front so earlier offsets stay valid.
func splice(original []byte, resolved []resolvedEdit) []byte {
	content := string(original)
	for _, r := range resolved {
		replacement := r.edit.Code
		if action, _ := ParseAction(string(r.edit.Action)); action == ActionDelete {
			replacement = ""
		}
		prefix := content[:r.start]
		suffix := content[r.end:]
		atLineStart := r.end > 0 && original[r.end-1] == '\n'
		content = prefix + replacement + separator(replacement, suffix, atLineStart) + suffix
	}
	return []byte(content)
}

// separator keeps a replacement from running into the following line.
// atLineStart reports that the removed range ended on a line boundary; a
// single-line replacement of a range inside a line is spliced inline.
func separator(replacement, suffix string, atLineStart bool) string {
	if replacement == "" || strings.HasPrefix(suffix, "\n") {
		return ""
	}
	if !strings.HasSuffix(replacement, "\n") {
		if atLineStart || strings.Contains(replacement, "\n") {
			return "\n"
		}
		return ""
	}
	if !strings.HasSuffix(replacement, "\n\n") {
		return "\n"
	}
	return ""
}

func (e *Engine) heal(ctx context.Context, req Request, content []byte, errs []parser.ValidationError) ([]byte, error) {
	if e.healer == nil {
		return nil, fmt.Errorf("edit would break syntax in %s: %s: %w",
			req.Path, formatErrors(errs), errdefs.ErrValidationFailed)
	}

	healCtx, cancel := context.WithTimeout(ctx, e.healTimeout)
	defer cancel()

	fixed, err := e.healer.Heal(healCtx, heal.Request{
		Path:     req.Path,
		Source:   string(content),
		Errors:   errs,
		Endpoint: req.RepairEndpoint,
	})
	if err != nil {
		if errors.Is(healCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, errdefs.ErrTimeout) {
			err = fmt.Errorf("%w: %w", err, errdefs.ErrTimeout)
		}
		return nil, fmt.Errorf("edit would break syntax in %s (%s) and auto-heal failed: %w: %w",
			req.Path, formatErrors(errs), err, errdefs.ErrValidationFailed)
	}

	if remaining, _ := e.registry.Validate(req.Path, []byte(fixed)); len(remaining) > 0 {
		return nil, fmt.Errorf("auto-heal output for %s still has syntax errors: %s: %w",
			req.Path, formatErrors(remaining), errdefs.ErrValidationFailed)
	}
	return []byte(fixed), nil
}

func formatErrors(errs []parser.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
