package cli

import (
	"fmt"

	"github.com/morozRed/cortexact/internal/edit"
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cortexact",
		Short: "Symbol-level code edits and background jobs for coding agents",
		Long: `Cortexact gives coding agents two tools over MCP: an AST edit engine that
replaces or deletes whole functions, classes and structs by name as one
syntax-checked transaction, and an async job manager that runs long shell
commands in the background and records their output under the data dir.

Run "cortexact serve" from an MCP client; the other commands expose the
same engine from a shell.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <data dir>/config.toml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for job logs, notifications and the server log")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	// Server
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd, version)
		},
	}
	serveCmd.Flags().String("repair-endpoint", "", "OpenAI-compatible endpoint used to repair broken edits")
	serveCmd.Flags().Bool("no-heal", false, "Reject edits that break syntax instead of repairing them")

	// Edit Commands
	editCmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Replace or delete one symbol in a file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunEdit,
	}
	editCmd.Flags().String("target", "", "Symbol to edit, as kind:name or a bare name")
	editCmd.Flags().String("action", string(edit.ActionReplace), "Edit action: replace|delete")
	editCmd.Flags().String("code", "", "Replacement source")
	editCmd.Flags().String("code-file", "", "Read the replacement source from a file (- for stdin)")
	editCmd.Flags().String("repair-endpoint", "", "OpenAI-compatible endpoint used to repair broken edits")
	editCmd.Flags().Bool("no-heal", false, "Reject edits that break syntax instead of repairing them")
	editCmd.Flags().Bool("json", false, "Print machine-readable result")
	_ = editCmd.MarkFlagRequired("target")

	symbolsCmd := &cobra.Command{
		Use:   "symbols <file|dir>",
		Short: "List the symbols edit can target in a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSymbols,
	}
	symbolsCmd.Flags().Bool("json", false, "Print machine-readable symbol list")
	symbolsCmd.Flags().Int("max-files", parser.DefaultScanLimit, "Stop a directory scan after this many files")

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a file for syntax errors",
		Args:  cobra.ExactArgs(1),
		RunE:  RunValidate,
	}
	validateCmd.Flags().Bool("json", false, "Print machine-readable errors")

	// Job Commands
	runCmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Run a shell command as a job and wait for it to finish",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunJob,
	}
	runCmd.Flags().String("cwd", "", "Working directory for the command")
	runCmd.Flags().String("timeout", "", "Kill the job after this long (seconds or a duration like 90s, 5m)")
	runCmd.Flags().Bool("follow", false, "Stream the job log while it runs")
	runCmd.Flags().Bool("json", false, "Print machine-readable final status")

	// Additional Commands
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write cortexact tool instructions into agent files (AGENTS.md, CLAUDE.md, Cursor rules)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}
	initCmd.Flags().String("agents", "all", "Agents to configure (comma-separated: codex,claude,cursor,all)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with the current settings if none exists",
			Args:  cobra.NoArgs,
			RunE:  RunConfigInit,
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the resolved configuration",
			Args:  cobra.NoArgs,
			RunE:  RunConfigShow,
		},
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cortexact %s\n", version)
		},
	}

	rootCmd.AddCommand(
		serveCmd,
		editCmd,
		symbolsCmd,
		validateCmd,
		runCmd,
		initCmd,
		configCmd,
		versionCmd,
	)

	return rootCmd
}
