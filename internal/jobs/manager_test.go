package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/morozRed/cortexact/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.DataDir == "" {
		opts.DataDir = t.TempDir()
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 20 * time.Millisecond
	}
	return NewManager(opts)
}

func waitAll(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))
}

func TestSpawnIsVisibleImmediately(t *testing.T) {
	m := newTestManager(t, Options{})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "sleep 0.2; echo hi"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.JobID, "job_"))
	assert.Positive(t, res.PID)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	assert.Contains(t, []string{"running", "done", "failed"}, check.Status)

	waitAll(t, m)
}

func TestSpawnCapturesOutputAndExitCode(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, Options{DataDir: dir})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "echo out; echo err >&2; exit 3"})
	require.NoError(t, err)
	waitAll(t, m)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "done", check.Status)
	require.NotNil(t, check.ExitCode)
	assert.Equal(t, 3, *check.ExitCode)
	assert.Contains(t, check.LogTail, "[stdout] out")
	assert.Contains(t, check.LogTail, "[stderr] err")
	assert.Contains(t, check.LogTail, "[cortexact] status=done")
	assert.Contains(t, check.LogTail, "[cortexact] job_id="+res.JobID)

	ledger, err := os.ReadFile(filepath.Join(dir, "notifications.md"))
	require.NoError(t, err)
	assert.Contains(t, string(ledger), "## [DONE (exit 3)] "+res.JobID)
	assert.Contains(t, string(ledger), "- **Command:** `echo out; echo err >&2; exit 3`")
}

func TestSpawnUsesWorkingDirectory(t *testing.T) {
	cwd := t.TempDir()
	m := newTestManager(t, Options{})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "pwd", Cwd: cwd})
	require.NoError(t, err)
	waitAll(t, m)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	found := false
	for _, line := range check.LogTail {
		if line == "[stdout] "+cwd || line == "[stdout] "+resolved {
			found = true
		}
	}
	assert.True(t, found, "expected pwd output in %v", check.LogTail)
}

func TestKillIsIdempotent(t *testing.T) {
	m := newTestManager(t, Options{})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "sleep 30"})
	require.NoError(t, err)

	msg, err := m.Kill(res.JobID)
	require.NoError(t, err)
	assert.Contains(t, msg, "Sent SIGTERM")

	msg, err = m.Kill(res.JobID)
	require.NoError(t, err)
	assert.Contains(t, msg, "is not running")

	waitAll(t, m)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	assert.NotEqual(t, "running", check.Status)

	msg, err = m.Kill(res.JobID)
	require.NoError(t, err)
	assert.Contains(t, msg, "Nothing to kill")
}

func TestUnknownJob(t *testing.T) {
	m := newTestManager(t, Options{})

	_, err := m.Check("job_missing_1")
	require.ErrorIs(t, err, errdefs.ErrNotFound)

	_, err = m.Kill("job_missing_1")
	require.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestTimeoutKillsJob(t *testing.T) {
	m := newTestManager(t, Options{})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "sleep 30", Timeout: time.Second})
	require.NoError(t, err)
	waitAll(t, m)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "failed", check.Status)
	assert.Equal(t, "timeout after 1s", check.Reason)
	assert.Nil(t, check.ExitCode)

	ledger, err := os.ReadFile(m.NotificationsPath())
	require.NoError(t, err)
	assert.Contains(t, string(ledger), "## [FAILED: timeout after 1s] "+res.JobID)
}

func TestSweepRemovesStaleJobs(t *testing.T) {
	var offset atomic.Int64
	base := time.Now()
	clock := func() time.Time {
		return base.Add(time.Duration(offset.Load()))
	}
	m := newTestManager(t, Options{Clock: clock})

	old, err := m.Spawn(context.Background(), SpawnRequest{Command: "true"})
	require.NoError(t, err)
	waitAll(t, m)
	require.FileExists(t, old.LogPath)

	offset.Store(int64(25 * time.Hour))

	fresh, err := m.Spawn(context.Background(), SpawnRequest{Command: "true"})
	require.NoError(t, err)
	waitAll(t, m)

	_, err = m.Check(old.JobID)
	require.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.NoFileExists(t, old.LogPath)

	_, err = m.Check(fresh.JobID)
	require.NoError(t, err)
}

func TestSweepDropsRunningJobWithoutKillingIt(t *testing.T) {
	var offset atomic.Int64
	base := time.Now()
	clock := func() time.Time {
		return base.Add(time.Duration(offset.Load()))
	}
	m := newTestManager(t, Options{Clock: clock, MaxAge: time.Hour})

	stale, err := m.Spawn(context.Background(), SpawnRequest{Command: "sleep 5"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = killGroup(stale.PID)
		waitAll(t, m)
	})

	offset.Store(int64(2 * time.Hour))

	_, err = m.Spawn(context.Background(), SpawnRequest{Command: "true"})
	require.NoError(t, err)

	_, err = m.Check(stale.JobID)
	require.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.NoFileExists(t, stale.LogPath)
	assert.NoError(t, unix.Kill(stale.PID, 0), "swept job's process should still be running")
}

func TestExitDetectedWhileBackgroundChildHoldsOutput(t *testing.T) {
	m := newTestManager(t, Options{DrainGrace: 200 * time.Millisecond})

	res, err := m.Spawn(context.Background(), SpawnRequest{Command: "sleep 3 & echo started", Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = killGroup(res.PID) })

	require.Eventually(t, func() bool {
		check, err := m.Check(res.JobID)
		return err == nil && check.Status == "done"
	}, time.Second, 20*time.Millisecond)

	waitAll(t, m)

	check, err := m.Check(res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "done", check.Status)
	require.NotNil(t, check.ExitCode)
	assert.Equal(t, 0, *check.ExitCode)
	assert.Empty(t, check.Reason)
	assert.Contains(t, check.LogTail, "[stdout] started")
	assert.Contains(t, check.LogTail, "[cortexact] status=done")
}

func TestSpawnFailureLeavesNoRecord(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, Options{DataDir: dir})

	_, err := m.Spawn(context.Background(), SpawnRequest{Command: "true", Cwd: filepath.Join(dir, "missing")})
	require.ErrorIs(t, err, errdefs.ErrSpawnFailed)

	entries, err := os.ReadDir(filepath.Join(dir, "jobs"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, m.List())
}

func TestSpawnRejectsEmptyCommand(t *testing.T) {
	m := newTestManager(t, Options{})
	_, err := m.Spawn(context.Background(), SpawnRequest{Command: "   "})
	require.ErrorIs(t, err, errdefs.ErrInvalidInput)
}

func TestListNewestFirst(t *testing.T) {
	m := newTestManager(t, Options{})

	first, err := m.Spawn(context.Background(), SpawnRequest{Command: "true"})
	require.NoError(t, err)
	second, err := m.Spawn(context.Background(), SpawnRequest{Command: "true"})
	require.NoError(t, err)
	waitAll(t, m)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.JobID, list[0].JobID)
	assert.Equal(t, first.JobID, list[1].JobID)
	assert.Empty(t, list[0].LogTail)
}
