// Package jobs runs shell commands as background jobs with per-job logs,
// cooperative kill, timeouts and a completion ledger.
package jobs

import (
	"fmt"
	"time"
)

// Phase is the coarse lifecycle position of a job.
// Transitions only go queued -> running -> done|failed.
type Phase string

const (
	PhaseQueued  Phase = "queued"
	PhaseRunning Phase = "running"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

// State is a Phase plus its terminal detail.
type State struct {
	Phase    Phase  `json:"phase"`
	ExitCode int    `json:"exit_code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func Running() State {
	return State{Phase: PhaseRunning}
}

// Done records a process that exited on its own. code is -1 when the process
// was ended by a signal.
func Done(code int) State {
	return State{Phase: PhaseDone, ExitCode: code}
}

func Failed(reason string) State {
	return State{Phase: PhaseFailed, Reason: reason}
}

func (s State) Terminal() bool {
	return s.Phase == PhaseDone || s.Phase == PhaseFailed
}

func (s State) String() string {
	return string(s.Phase)
}

// Banner renders the state for the notification ledger.
func (s State) Banner() string {
	switch s.Phase {
	case PhaseDone:
		return fmt.Sprintf("DONE (exit %d)", s.ExitCode)
	case PhaseFailed:
		return "FAILED: " + s.Reason
	default:
		return "UNKNOWN"
	}
}

// Job is one spawned command. Values handed out by the Manager are snapshots.
type Job struct {
	ID         string        `json:"job_id"`
	Command    string        `json:"command"`
	Cwd        string        `json:"cwd,omitempty"`
	PID        int           `json:"pid"`
	State      State         `json:"state"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	LogPath    string        `json:"log_path"`
	Timeout    time.Duration `json:"timeout"`
}

// Duration is the wall time from start until finish, or until now while running.
func (j Job) Duration(now time.Time) time.Duration {
	end := now
	if j.FinishedAt != nil {
		end = *j.FinishedAt
	}
	if end.Before(j.StartedAt) {
		return 0
	}
	return end.Sub(j.StartedAt)
}
