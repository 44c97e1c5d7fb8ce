package agents

import "fmt"

const toolGuide = `Use the cortexact MCP server for structural edits and long-running commands.

Editing:
1. Call map_overview on the project (or list_symbols on one file) to get exact targets.
2. Call edit_ast with kind:name targets to replace or delete whole functions, classes and structs.
   All edits in one call land together or not at all, and broken syntax is rejected.
3. Prefer edit_ast over line-based edits for anything larger than a one-line change.

Commands:
1. Start builds, test suites and servers with run_async; it returns a job_id immediately.
2. Poll check_job for status and the last log lines; stop runaway jobs with kill_job.
3. Finished jobs are also listed in notifications.md under the cortexact data dir.
`

func BuildAdapterBlock(agentName string) string {
	return fmt.Sprintf("# Cortexact Integration (%s)\n\n%s", agentName, toolGuide)
}

func BuildCursorRuleContent() string {
	return "---\ndescription: Use cortexact tools for symbol edits and background jobs\nalwaysApply: true\n---\n\n" + toolGuide
}
