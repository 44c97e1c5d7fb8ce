package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/morozRed/cortexact/internal/errdefs"
)

const (
	DefaultTimeout      = 300 * time.Second
	DefaultMaxAge       = 24 * time.Hour
	DefaultPollInterval = 200 * time.Millisecond
	DefaultDrainGrace   = 2 * time.Second

	notificationsFile = "notifications.md"
	jobsSubdir        = "jobs"
)

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	// DataDir holds jobs/<id>.log and notifications.md.
	DataDir        string
	DefaultTimeout time.Duration
	MaxAge         time.Duration
	PollInterval   time.Duration
	// DrainGrace bounds how long output is still collected after the shell
	// exits, for background children that hold its pipes open.
	DrainGrace time.Duration
	Shell      string
	Logger     *slog.Logger
	// Clock replaces time.Now for record timestamps and retention.
	Clock func() time.Time
}

// Manager spawns and tracks background jobs.
type Manager struct {
	jobsDir        string
	defaultTimeout time.Duration
	maxAge         time.Duration
	pollInterval   time.Duration
	drainGrace     time.Duration
	shell          string
	logger         *slog.Logger
	now            func() time.Time

	registry *registry
	notifier *Notifier
	counter  atomic.Uint64
	running  sync.WaitGroup
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		jobsDir:        filepath.Join(opts.DataDir, jobsSubdir),
		defaultTimeout: opts.DefaultTimeout,
		maxAge:         opts.MaxAge,
		pollInterval:   opts.PollInterval,
		drainGrace:     opts.DrainGrace,
		shell:          opts.Shell,
		logger:         opts.Logger,
		now:            opts.Clock,
		registry:       newRegistry(),
		notifier:       NewNotifier(filepath.Join(opts.DataDir, notificationsFile)),
	}
	if m.defaultTimeout <= 0 {
		m.defaultTimeout = DefaultTimeout
	}
	if m.maxAge <= 0 {
		m.maxAge = DefaultMaxAge
	}
	if m.pollInterval <= 0 {
		m.pollInterval = DefaultPollInterval
	}
	if m.drainGrace <= 0 {
		m.drainGrace = DefaultDrainGrace
	}
	if m.shell == "" {
		m.shell = "sh"
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// NotificationsPath is the ledger finished jobs are appended to.
func (m *Manager) NotificationsPath() string {
	return m.notifier.Path()
}

type SpawnRequest struct {
	Command string
	Cwd     string
	// Timeout of zero selects the manager default.
	Timeout time.Duration
}

type SpawnResult struct {
	JobID   string `json:"job_id"`
	PID     int    `json:"pid"`
	LogPath string `json:"log_path"`
	Message string `json:"message"`
}

type CheckResult struct {
	JobID        string   `json:"job_id"`
	Status       string   `json:"status"`
	Command      string   `json:"command,omitempty"`
	PID          int      `json:"pid"`
	ExitCode     *int     `json:"exit_code,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	DurationSecs int64    `json:"duration_secs"`
	LogTail      []string `json:"log_tail,omitempty"`
	LogPath      string   `json:"log_path"`
}

// Spawn starts req.Command under the shell and returns once the job is
// registered as running. The job outlives ctx.
func (m *Manager) Spawn(ctx context.Context, req SpawnRequest) (*SpawnResult, error) {
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return nil, fmt.Errorf("command is required: %w", errdefs.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Sweep()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}

	startedAt := m.now()
	id := fmt.Sprintf("job_%x_%d", startedAt.Unix(), m.counter.Add(1))

	if err := os.MkdirAll(m.jobsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create jobs dir: %w: %w", err, errdefs.ErrIO)
	}
	logPath := filepath.Join(m.jobsDir, id+".log")
	jl, err := createJobLog(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w: %w", logPath, err, errdefs.ErrIO)
	}

	job := Job{
		ID:        id,
		Command:   command,
		Cwd:       req.Cwd,
		State:     Running(),
		StartedAt: startedAt,
		LogPath:   logPath,
		Timeout:   timeout,
	}
	if err := jl.writeHeader(job); err != nil {
		m.discardLog(jl, logPath)
		return nil, fmt.Errorf("failed to write log header: %w: %w", err, errdefs.ErrIO)
	}

	cmd := exec.Command(m.shell, "-c", command)
	cmd.Dir = req.Cwd
	setProcessGroup(cmd)

	pipes, err := openOutputPipes()
	if err != nil {
		m.discardLog(jl, logPath)
		return nil, fmt.Errorf("failed to create output pipes: %w: %w", err, errdefs.ErrSpawnFailed)
	}
	cmd.Stdout = pipes.stdoutW
	cmd.Stderr = pipes.stderrW
	if err := cmd.Start(); err != nil {
		pipes.closeWriters()
		pipes.closeReaders()
		m.discardLog(jl, logPath)
		return nil, fmt.Errorf("failed to spawn command %q: %w: %w", command, err, errdefs.ErrSpawnFailed)
	}
	// The child holds its own copies; ours must go or the drains never see EOF.
	pipes.closeWriters()

	job.PID = cmd.Process.Pid
	m.registry.insert(job)

	m.running.Add(1)
	go m.supervise(job, cmd, pipes, jl)

	m.logger.Info("job started", "job_id", id, "pid", job.PID, "command", command, "timeout", timeout)

	return &SpawnResult{
		JobID:   id,
		PID:     job.PID,
		LogPath: logPath,
		Message: fmt.Sprintf("Job %s started (pid=%d). Poll with check_job. Log: %s", id, job.PID, logPath),
	}, nil
}

func (m *Manager) discardLog(jl *jobLog, path string) {
	_ = jl.Close()
	_ = os.Remove(path)
}

// Check reports a job's state and the tail of its log.
func (m *Manager) Check(id string) (*CheckResult, error) {
	job, ok := m.registry.get(id)
	if !ok {
		return nil, m.notFound(id)
	}
	result := m.describe(job)
	result.LogTail = readTail(job.LogPath, tailLines)
	return &result, nil
}

// List reports every known job, newest first, without log tails.
func (m *Manager) List() []CheckResult {
	jobs := m.registry.list()
	out := make([]CheckResult, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, m.describe(job))
	}
	return out
}

// Kill sends SIGTERM to a running job's process group and marks it failed
// without waiting for the process to exit. Killing a finished job is not an error.
func (m *Manager) Kill(id string) (string, error) {
	pid, prev, ok := m.registry.markKilled(id, m.now())
	if !ok {
		return "", m.notFound(id)
	}
	if prev.Phase != PhaseRunning {
		return fmt.Sprintf("Job %s is not running (state: %s). Nothing to kill.", id, prev), nil
	}

	if err := terminateGroup(pid); err != nil {
		m.logger.Warn("failed to signal job", "job_id", id, "pid", pid, "error", err)
	}
	m.logger.Info("job killed", "job_id", id, "pid", pid)
	return fmt.Sprintf("Sent SIGTERM to job %s (pid=%d). Marked as failed.", id, pid), nil
}

// Wait blocks until every supervisor spawned so far has recorded its job's
// final state, or ctx ends.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) describe(job Job) CheckResult {
	result := CheckResult{
		JobID:        job.ID,
		Status:       job.State.String(),
		Command:      job.Command,
		PID:          job.PID,
		Reason:       job.State.Reason,
		DurationSecs: int64(job.Duration(m.now()).Seconds()),
		LogPath:      job.LogPath,
	}
	if job.State.Phase == PhaseDone {
		code := job.State.ExitCode
		result.ExitCode = &code
	}
	return result
}

func (m *Manager) notFound(id string) error {
	return fmt.Errorf("job %q not found; it may have been cleaned up after %s: %w", id, m.maxAge, errdefs.ErrNotFound)
}
