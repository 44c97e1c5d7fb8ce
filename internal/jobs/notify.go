package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Notifier appends one markdown block per finished job to a ledger file that
// is created on first use and never truncated.
type Notifier struct {
	mu   sync.Mutex
	path string
}

func NewNotifier(path string) *Notifier {
	return &Notifier{path: path}
}

func (n *Notifier) Path() string {
	return n.path
}

func (n *Notifier) Append(job Job) error {
	block := renderNotification(job)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(n.path), 0755); err != nil {
		return fmt.Errorf("failed to create notification dir: %w", err)
	}
	f, err := os.OpenFile(n.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", n.path, err)
	}
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", n.path, err)
	}
	return f.Close()
}

func renderNotification(job Job) string {
	finished := time.Now()
	if job.FinishedAt != nil {
		finished = *job.FinishedAt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n## [%s] %s — %s\n\n", job.State.Banner(), job.ID, formatTimestamp(finished))
	fmt.Fprintf(&b, "- **Command:** `%s`\n", job.Command)
	fmt.Fprintf(&b, "- **Duration:** %d s\n", int64(job.Duration(finished).Seconds()))
	fmt.Fprintf(&b, "- **Log:** `%s`\n", job.LogPath)
	b.WriteString("\n---\n")
	return b.String()
}
