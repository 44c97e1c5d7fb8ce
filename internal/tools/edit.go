package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/morozRed/cortexact/internal/edit"
)

// EditInput is one edit inside an edit_ast call.
type EditInput struct {
	Target string `json:"target" jsonschema:"Symbol to edit, as kind:name (e.g. function:main) or a bare name"`
	Action string `json:"action,omitempty" jsonschema:"replace (default) or delete"`
	Code   string `json:"code,omitempty" jsonschema:"Replacement source for the whole symbol; ignored for delete"`
}

// EditASTInput defines the input schema for the edit_ast tool.
type EditASTInput struct {
	File           string      `json:"file" jsonschema:"Path of the source file to edit"`
	Edits          []EditInput `json:"edits" jsonschema:"Edits applied together; if any fails nothing is written"`
	RepairEndpoint string      `json:"repair_endpoint,omitempty" jsonschema:"OpenAI-compatible URL of the repair model used when an edit breaks syntax"`
}

// EditASTResult is the response from the edit_ast tool.
type EditASTResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Preview string `json:"preview"`
}

// NewEditASTHandler creates the edit_ast tool handler.
func NewEditASTHandler(deps *Dependencies) mcp.ToolHandlerFor[EditASTInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EditASTInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.File == "" {
			return ErrorResult("file is required", "Provide the path of the file to edit"), nil, nil
		}
		if len(input.Edits) == 0 {
			return ErrorResult("edits is empty", "Provide at least one {target, action, code} edit"), nil, nil
		}

		edits := make([]edit.Edit, 0, len(input.Edits))
		for _, in := range input.Edits {
			edits = append(edits, edit.Edit{
				Target: in.Target,
				Action: edit.Action(in.Action),
				Code:   in.Code,
			})
		}

		result, err := deps.Engine.Apply(ctx, edit.Request{
			Path:           input.File,
			Edits:          edits,
			RepairEndpoint: input.RepairEndpoint,
		})
		if err != nil {
			deps.Logger.Info("edit_ast rejected", "file", input.File, "error", err)
			return FromError(err), nil, nil
		}

		message := fmt.Sprintf("Applied %d edit(s) to %s", result.Applied, result.Path)
		if result.Healed {
			message += " (syntax repaired by auto-heal)"
		}
		return JSONResult(EditASTResult{
			Status:  "ok",
			Message: message,
			Preview: result.Preview,
		}), nil, nil
	}
}
