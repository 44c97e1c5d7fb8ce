// Package heal asks an external repair oracle to fix syntax errors in an edited buffer.
package heal

import (
	"context"
	"strings"

	"github.com/morozRed/cortexact/internal/parser"
)

// Request is one repair attempt: the full broken buffer and what the validator
// found wrong with it.
type Request struct {
	Path   string
	Source string
	Errors []parser.ValidationError
	// Endpoint overrides the oracle URL for this request when set.
	Endpoint string
}

// Healer returns a repaired version of req.Source. Implementations must honor
// ctx cancellation.
type Healer interface {
	Heal(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Healer interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Heal(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Sanitize drops markdown fence lines that models wrap code in despite being
// told not to.
func Sanitize(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
