package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/morozRed/cortexact/internal/edit"
	"github.com/morozRed/cortexact/internal/heal"
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/spf13/cobra"
)

// loadConfig resolves config for cmd: file and environment first, then the
// root persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	dataDir, err := OptionalStringFlag(cmd, "data-dir")
	if err != nil {
		return config.Config{}, err
	}
	if dataDir != "" {
		if cfg.LogFile == filepath.Join(cfg.DataDir, config.LogFileName) {
			cfg.LogFile = filepath.Join(dataDir, config.LogFileName)
		}
		cfg.DataDir = dataDir
	}

	level, err := OptionalStringFlag(cmd, "log-level")
	if err != nil {
		return config.Config{}, err
	}
	if level != "" {
		cfg.LogLevel = config.ParseLogLevel(level)
	}

	endpoint, err := OptionalStringFlag(cmd, "repair-endpoint")
	if err != nil {
		return config.Config{}, err
	}
	if endpoint != "" {
		cfg.RepairEndpoint = endpoint
	}
	return cfg, nil
}

// newEngine builds the edit engine shared by serve and edit.
func newEngine(cmd *cobra.Command, cfg config.Config, registry *parser.Registry, logger *slog.Logger) (*edit.Engine, error) {
	opts := []edit.Option{
		edit.WithLogger(logger),
		edit.WithHealTimeout(cfg.RepairTimeout),
	}
	noHeal, err := OptionalBoolFlag(cmd, "no-heal")
	if err != nil {
		return nil, err
	}
	if !noHeal {
		opts = append(opts, edit.WithHealer(heal.NewOracleHealer(heal.OracleConfig{
			Endpoint: cfg.RepairEndpoint,
			Model:    cfg.RepairModel,
			APIKey:   cfg.RepairAPIKey,
		}, logger)))
	}
	return edit.NewEngine(registry, opts...), nil
}
