package tools

import "github.com/modelcontextprotocol/go-sdk/mcp"

// RegisterAll registers all tools with the MCP server.
// This is called after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_ast",
		Description: "Replace or delete named symbols (functions, structs, classes, ...) in one file as a single all-or-nothing transaction. The result is syntax-checked before anything is written.",
	}, NewEditASTHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_symbols",
		Description: "List the symbols in a file that edit_ast can target, with their kind:name keys and byte ranges",
	}, NewListSymbolsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "map_overview",
		Description: "Scan a directory (honoring .gitignore and .cortexactignore) and list the edit targets in each source file",
	}, NewMapOverviewHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_async",
		Description: "Run a shell command as a background job and return immediately with its job id and log path",
	}, NewRunAsyncHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_job",
		Description: "Report a background job's status, exit code, duration and the last lines of its log",
	}, NewCheckJobHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kill_job",
		Description: "Send SIGTERM to a running background job and mark it failed",
	}, NewKillJobHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_jobs",
		Description: "List all known background jobs, newest first",
	}, NewListJobsHandler(deps))
}
