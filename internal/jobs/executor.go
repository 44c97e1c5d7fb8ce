package jobs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// outputPipes carries the job's stdout and stderr. The write ends go to the
// child as plain files, so exec starts no copy goroutines and cmd.Wait
// returns as soon as the shell exits.
type outputPipes struct {
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func openOutputPipes() (*outputPipes, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, err
	}
	return &outputPipes{stdoutR: stdoutR, stdoutW: stdoutW, stderrR: stderrR, stderrW: stderrW}, nil
}

func (p *outputPipes) closeWriters() {
	_ = p.stdoutW.Close()
	_ = p.stderrW.Close()
}

// closeReaders unblocks drains still waiting on a background child.
func (p *outputPipes) closeReaders() {
	_ = p.stdoutR.Close()
	_ = p.stderrR.Close()
}

// supervise drains the job's output, enforces its timeout and records the
// terminal state once the shell exits. It owns jl and pipes.
func (m *Manager) supervise(job Job, cmd *exec.Cmd, pipes *outputPipes, jl *jobLog) {
	defer m.running.Done()
	defer jl.Close()

	var drains errgroup.Group
	drains.Go(func() error { return jl.drain(pipes.stdoutR, "stdout") })
	drains.Go(func() error { return jl.drain(pipes.stderrR, "stderr") })
	drained := make(chan error, 1)
	go func() { drained <- drains.Wait() }()

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	start := time.Now()
	timedOut := false
	var state State
	for state.Phase == "" {
		select {
		case err := <-exited:
			if timedOut {
				state = Failed(fmt.Sprintf("timeout after %ds", int64(job.Timeout.Seconds())))
			} else {
				state = exitState(err)
			}
		case <-ticker.C:
			if !timedOut && time.Since(start) > job.Timeout {
				timedOut = true
				m.logger.Warn("job timed out", "job_id", job.ID, "timeout", job.Timeout)
				if err := killGroup(job.PID); err != nil {
					m.logger.Warn("failed to kill timed out job", "job_id", job.ID, "error", err)
				}
			}
		}
	}

	finishedAt := m.now()
	final, ok := m.registry.finish(job.ID, state, finishedAt)
	if !ok {
		// swept while running; still close out the log and ledger
		final = job
		final.State = state
		final.FinishedAt = &finishedAt
	}

	m.awaitDrains(job.ID, pipes, drained)

	if err := jl.writeFooter(final); err != nil {
		m.logger.Warn("failed to write job log footer", "job_id", job.ID, "error", err)
	}
	if err := m.notifier.Append(final); err != nil {
		m.logger.Warn("failed to append notification", "job_id", job.ID, "error", err)
	}

	m.logger.Info("job finished",
		"job_id", job.ID,
		"status", final.State.String(),
		"exit_code", final.State.ExitCode,
		"reason", final.State.Reason,
		"duration", final.Duration(finishedAt),
	)
}

// awaitDrains lets buffered output reach the log, giving up after the drain
// grace when a background child still holds the pipes.
func (m *Manager) awaitDrains(id string, pipes *outputPipes, drained <-chan error) {
	timer := time.NewTimer(m.drainGrace)
	defer timer.Stop()

	var err error
	select {
	case err = <-drained:
		pipes.closeReaders()
	case <-timer.C:
		m.logger.Info("job output still open after exit, detaching", "job_id", id, "grace", m.drainGrace)
		pipes.closeReaders()
		err = <-drained
	}
	if err != nil {
		m.logger.Warn("job output drain failed", "job_id", id, "error", err)
	}
}

func exitState(err error) State {
	if err == nil {
		return Done(0)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Done(exitErr.ExitCode())
	}
	return Failed(fmt.Sprintf("wait error: %v", err))
}
