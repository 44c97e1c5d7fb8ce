package cli

import (
	"fmt"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/morozRed/cortexact/internal/fileutil"
	"github.com/spf13/cobra"
)

func RunConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.DefaultPath()
	}
	if err := config.WriteDefault(path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n", path)
	return nil
}

func RunConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.RepairAPIKey != "" {
		cfg.RepairAPIKey = "********"
	}
	return fileutil.PrintJSON(cmd.OutOrStdout(), map[string]any{
		"data_dir":          cfg.DataDir,
		"log_file":          cfg.LogFile,
		"log_level":         cfg.LogLevel.String(),
		"repair_endpoint":   cfg.RepairEndpoint,
		"repair_model":      cfg.RepairModel,
		"repair_api_key":    cfg.RepairAPIKey,
		"repair_timeout":    cfg.RepairTimeout.String(),
		"job_timeout":       cfg.JobTimeout.String(),
		"job_max_age":       cfg.JobMaxAge.String(),
		"job_poll_interval": cfg.PollInterval.String(),
	})
}
