package jobs

import (
	"errors"
	"os"
)

// Sweep forgets every job started more than the retention window ago and
// deletes its log. Processes are left alone. Spawn calls it first.
func (m *Manager) Sweep() int {
	removed := m.registry.removeStartedBefore(m.now().Add(-m.maxAge))
	for _, job := range removed {
		if err := os.Remove(job.LogPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("failed to remove job log", "job_id", job.ID, "path", job.LogPath, "error", err)
		}
	}
	if len(removed) > 0 {
		m.logger.Info("swept stale jobs", "count", len(removed))
	}
	return len(removed)
}
