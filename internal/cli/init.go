package cli

import (
	"fmt"
	"os"

	"github.com/morozRed/cortexact/internal/agents"
	"github.com/spf13/cobra"
)

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath := "."
	if len(args) == 1 {
		rootPath = args[0]
	}
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rootPath)
	}

	raw, err := OptionalStringFlag(cmd, "agents")
	if err != nil {
		return err
	}
	providers, err := agents.ParseProviders(raw)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		return fmt.Errorf("no agents selected (use --agents codex,claude,cursor or all)")
	}

	updated, err := agents.WriteIntegrationFiles(rootPath, providers)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "init: agent instructions already up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "init: updated %s\n", SummarizeList(updated, 8))
	return nil
}
