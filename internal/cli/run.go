package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/morozRed/cortexact/internal/jobs"
	"github.com/spf13/cobra"
)

// RunJob spawns the command through the job manager and waits for it. The
// manager lives in this process, so the command cannot outlive it; the log
// and the notifications entry stay behind in the data dir.
func RunJob(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cwd, err := OptionalStringFlag(cmd, "cwd")
	if err != nil {
		return err
	}
	timeout, err := OptionalDurationFlag(cmd, "timeout")
	if err != nil {
		return err
	}
	follow, err := OptionalBoolFlag(cmd, "follow")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	logger, closeLog := config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	manager := jobs.NewManager(jobs.Options{
		DataDir:        cfg.DataDir,
		DefaultTimeout: cfg.JobTimeout,
		MaxAge:         cfg.JobMaxAge,
		PollInterval:   cfg.PollInterval,
		Logger:         logger,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	spawned, err := manager.Spawn(ctx, jobs.SpawnRequest{
		Command: strings.Join(args, " "),
		Cwd:     cwd,
		Timeout: timeout,
	})
	if err != nil {
		return withHint(err)
	}
	if !asJSON {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s started (pid=%d, log=%s)\n", spawned.JobID, spawned.PID, spawned.LogPath)
	}

	result, err := followJob(ctx, manager, spawned, cfg.PollInterval, follow, asJSON, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := PrintJobResult(cmd.OutOrStdout(), result, asJSON); err != nil {
		return err
	}
	if result.Status != "done" || result.ExitCode == nil || *result.ExitCode != 0 {
		return fmt.Errorf("job %s %s", result.JobID, describeOutcome(result))
	}
	return nil
}

// followJob polls until the job is terminal. With follow set, new log lines
// are copied to out as they appear; otherwise a spinner shows the latest one.
func followJob(ctx context.Context, manager *jobs.Manager, spawned *jobs.SpawnResult, interval time.Duration, follow, asJSON bool, out io.Writer) (*jobs.CheckResult, error) {
	progress := newJobProgressReporter(spawned.JobID, asJSON || follow)
	defer progress.Done()

	var offset int64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if follow && !asJSON {
			offset = copyLogFrom(spawned.LogPath, offset, out)
		}

		result, err := manager.Check(spawned.JobID)
		if err != nil {
			return nil, err
		}
		if result.Status == "done" || result.Status == "failed" {
			if err := manager.Wait(ctx); err != nil {
				return nil, err
			}
			if follow && !asJSON {
				copyLogFrom(spawned.LogPath, offset, out)
			}
			return manager.Check(spawned.JobID)
		}

		last := ""
		if n := len(result.LogTail); n > 0 {
			last = result.LogTail[n-1]
		}
		progress.Update(last)

		select {
		case <-ctx.Done():
			if _, err := manager.Kill(spawned.JobID); err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// copyLogFrom writes the log bytes after offset to out and returns the new offset.
func copyLogFrom(path string, offset int64, out io.Writer) int64 {
	f, err := os.Open(path)
	if err != nil {
		return offset
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset
	}
	n, _ := io.Copy(out, f)
	return offset + n
}
