// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/morozRed/cortexact/internal/edit"
	"github.com/morozRed/cortexact/internal/jobs"
	"github.com/morozRed/cortexact/internal/parser"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Registry *parser.Registry
	Engine   *edit.Engine
	Jobs     *jobs.Manager
	Logger   *slog.Logger
}
