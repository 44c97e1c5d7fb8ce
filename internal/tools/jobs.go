package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/morozRed/cortexact/internal/jobs"
)

// RunAsyncInput defines the input schema for the run_async tool.
type RunAsyncInput struct {
	Command     string `json:"command" jsonschema:"Shell command to run"`
	Cwd         string `json:"cwd,omitempty" jsonschema:"Working directory; defaults to the server's"`
	TimeoutSecs int    `json:"timeout_secs,omitempty" jsonschema:"Kill the job after this many seconds (default 300)"`
}

// JobIDInput is shared by check_job and kill_job.
type JobIDInput struct {
	JobID string `json:"job_id" jsonschema:"Job id returned by run_async"`
}

type ListJobsInput struct{}

// NewRunAsyncHandler creates the run_async tool handler.
func NewRunAsyncHandler(deps *Dependencies) mcp.ToolHandlerFor[RunAsyncInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunAsyncInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.TimeoutSecs < 0 {
			return ErrorResult("timeout_secs must not be negative", "Omit it or pass 0 for the default"), nil, nil
		}

		result, err := deps.Jobs.Spawn(ctx, jobs.SpawnRequest{
			Command: input.Command,
			Cwd:     input.Cwd,
			Timeout: time.Duration(input.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return FromError(err), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}

// NewCheckJobHandler creates the check_job tool handler.
func NewCheckJobHandler(deps *Dependencies) mcp.ToolHandlerFor[JobIDInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input JobIDInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.JobID == "" {
			return ErrorResult("job_id is required", "Use the id returned by run_async"), nil, nil
		}
		result, err := deps.Jobs.Check(input.JobID)
		if err != nil {
			return FromError(err), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}

// NewKillJobHandler creates the kill_job tool handler.
func NewKillJobHandler(deps *Dependencies) mcp.ToolHandlerFor[JobIDInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input JobIDInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.JobID == "" {
			return ErrorResult("job_id is required", "Use the id returned by run_async"), nil, nil
		}
		msg, err := deps.Jobs.Kill(input.JobID)
		if err != nil {
			return FromError(err), nil, nil
		}
		return TextResult(msg), nil, nil
	}
}

// NewListJobsHandler creates the list_jobs tool handler.
func NewListJobsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListJobsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListJobsInput) (
		*mcp.CallToolResult, any, error,
	) {
		return JSONResult(deps.Jobs.List()), nil, nil
	}
}
