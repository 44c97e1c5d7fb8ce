package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/morozRed/cortexact/internal/jobs"
	"github.com/morozRed/cortexact/internal/languages"
	"github.com/morozRed/cortexact/internal/server"
	"github.com/morozRed/cortexact/internal/tools"
	"github.com/spf13/cobra"
)

// jobShutdownGrace bounds how long serve waits for running jobs to record
// their final state after the client disconnects.
const jobShutdownGrace = 2 * time.Second

func RunServe(cmd *cobra.Command, version string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := languages.NewDefaultRegistry()
	engine, err := newEngine(cmd, cfg, registry, logger)
	if err != nil {
		return err
	}
	manager := jobs.NewManager(jobs.Options{
		DataDir:        cfg.DataDir,
		DefaultTimeout: cfg.JobTimeout,
		MaxAge:         cfg.JobMaxAge,
		PollInterval:   cfg.PollInterval,
		Logger:         logger,
	})

	srv := server.New(version, logger)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Registry: registry,
		Engine:   engine,
		Jobs:     manager,
		Logger:   logger,
	})

	logger.Info("server ready",
		"data_dir", cfg.DataDir,
		"repair_endpoint", cfg.RepairEndpoint,
		"languages", registry.SupportedExtensions(),
	)

	runErr := srv.Run(ctx)

	waitCtx, cancel := context.WithTimeout(context.Background(), jobShutdownGrace)
	defer cancel()
	if err := manager.Wait(waitCtx); err != nil {
		logger.Warn("jobs still running at shutdown", "notifications", manager.NotificationsPath())
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("server stopped", "error", runErr)
		return runErr
	}
	logger.Info("server stopped")
	return nil
}
