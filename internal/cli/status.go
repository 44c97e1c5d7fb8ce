package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/morozRed/cortexact/internal/jobs"
)

var (
	doneColor    = color.New(color.FgGreen, color.Bold)
	failedColor  = color.New(color.FgRed, color.Bold)
	runningColor = color.New(color.FgYellow, color.Bold)
)

// colorStatus renders a job status word for terminals.
func colorStatus(status string) string {
	switch status {
	case string(jobs.PhaseDone):
		return doneColor.Sprint(status)
	case string(jobs.PhaseFailed):
		return failedColor.Sprint(status)
	case string(jobs.PhaseRunning), string(jobs.PhaseQueued):
		return runningColor.Sprint(status)
	default:
		return status
	}
}

func describeOutcome(result *jobs.CheckResult) string {
	switch {
	case result.Status == string(jobs.PhaseFailed):
		return "failed: " + result.Reason
	case result.ExitCode != nil:
		return fmt.Sprintf("exited with code %d", *result.ExitCode)
	default:
		return result.Status
	}
}
