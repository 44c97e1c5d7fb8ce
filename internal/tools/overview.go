package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/morozRed/cortexact/internal/ignore"
)

// MapOverviewInput defines the input schema for the map_overview tool.
type MapOverviewInput struct {
	Path     string `json:"path" jsonschema:"Directory to scan"`
	MaxFiles int    `json:"max_files,omitempty" jsonschema:"Stop after this many files (default 2000)"`
}

// OverviewFile lists the edit targets in one file.
type OverviewFile struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Targets  []string `json:"targets"`
}

type MapOverviewResult struct {
	Root      string         `json:"root"`
	Files     []OverviewFile `json:"files"`
	Skipped   []string       `json:"skipped,omitempty"`
	Truncated bool           `json:"truncated,omitempty"`
}

// NewMapOverviewHandler creates the map_overview tool handler.
func NewMapOverviewHandler(deps *Dependencies) mcp.ToolHandlerFor[MapOverviewInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MapOverviewInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Path == "" {
			return ErrorResult("path is required", "Provide a directory to scan"), nil, nil
		}

		rules, err := ignore.Load(input.Path)
		if err != nil {
			deps.Logger.Warn("ignoring unreadable ignore file", "path", input.Path, "error", err)
			rules = ignore.Compile()
		}

		overview, err := deps.Registry.ScanDirectory(input.Path, rules, input.MaxFiles)
		if err != nil {
			return FromError(err), nil, nil
		}

		result := MapOverviewResult{
			Root:      overview.Root,
			Files:     make([]OverviewFile, 0, len(overview.Files)),
			Truncated: overview.Truncated,
		}
		for _, file := range overview.Files {
			if len(file.Symbols) == 0 {
				continue
			}
			targets := make([]string, 0, len(file.Symbols))
			for _, sym := range file.Symbols {
				targets = append(targets, sym.Key())
			}
			result.Files = append(result.Files, OverviewFile{
				Path:     file.Path,
				Language: file.Language,
				Targets:  targets,
			})
		}
		for _, issue := range overview.Issues {
			result.Skipped = append(result.Skipped, issue.File+": "+issue.Message)
		}
		return JSONResult(result), nil, nil
	}
}
