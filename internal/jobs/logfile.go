package jobs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	logTag        = "[cortexact]"
	tailLines     = 20
	timestampForm = "2006-01-02 15:04:05 UTC"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampForm)
}

// jobLog is the shared per-job log. Both drains and the supervisor write
// through it; mu keeps lines from interleaving.
type jobLog struct {
	mu sync.Mutex
	f  *os.File
}

func createJobLog(path string) (*jobLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &jobLog{f: f}, nil
}

func (l *jobLog) writeLines(lines ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := l.f.WriteString(b.String())
	return err
}

func (l *jobLog) writeHeader(job Job) error {
	return l.writeLines(
		fmt.Sprintf("%s job_id=%s", logTag, job.ID),
		fmt.Sprintf("%s command=%s", logTag, job.Command),
		fmt.Sprintf("%s started=%s", logTag, formatTimestamp(job.StartedAt)),
		logTag+" ---",
	)
}

func (l *jobLog) writeFooter(job Job) error {
	finished := job.StartedAt
	if job.FinishedAt != nil {
		finished = *job.FinishedAt
	}
	return l.writeLines(
		logTag+" ---",
		fmt.Sprintf("%s finished=%s", logTag, formatTimestamp(finished)),
		fmt.Sprintf("%s duration=%ds", logTag, int64(job.Duration(finished).Seconds())),
		fmt.Sprintf("%s status=%s", logTag, job.State),
	)
}

func (l *jobLog) Close() error {
	return l.f.Close()
}

// drain copies r into the log line by line, tagging each line with stream.
// A final line without a trailing newline is still recorded.
func (l *jobLog) drain(r io.Reader, stream string) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if werr := l.writeLines("[" + stream + "] " + line); werr != nil {
				return fmt.Errorf("failed to write %s line: %w", stream, werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", stream, err)
		}
	}
}

// readTail returns up to n trailing non-empty lines of the file at path.
// A missing or unreadable file yields no lines.
func readTail(path string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{}
	}
	defer f.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	return ring
}
