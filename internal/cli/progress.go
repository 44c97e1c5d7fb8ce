package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// jobProgressReporter redraws a one-line spinner on stderr while a job runs.
// It is silent when stderr is not a terminal.
type jobProgressReporter struct {
	enabled bool
	out     io.Writer
	label   string
	start   time.Time
	spinner int
	lastLen int
}

func newJobProgressReporter(label string, asJSON bool) *jobProgressReporter {
	stat, err := os.Stderr.Stat()
	enabled := err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !asJSON
	return &jobProgressReporter{
		enabled: enabled,
		out:     os.Stderr,
		label:   label,
		start:   time.Now(),
	}
}

func (r *jobProgressReporter) Update(lastLine string) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	lastLine = strings.TrimSpace(lastLine)
	if len(lastLine) > 88 {
		lastLine = lastLine[:85] + "..."
	}

	elapsed := time.Since(r.start).Round(time.Second)
	status := fmt.Sprintf("%s %s running %s", frame, r.label, elapsed)
	if lastLine != "" {
		status = fmt.Sprintf("%s %s running %s  %s", frame, r.label, elapsed, lastLine)
	}
	r.printStatus(status)
}

func (r *jobProgressReporter) Done() {
	if !r.enabled {
		return
	}
	r.printStatus("")
	fmt.Fprint(r.out, "\r")
}

func (r *jobProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
