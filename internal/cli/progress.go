package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// passProgressReporter draws a one-line spinner on stderr while documents are
// synchronized. It is silent unless stderr is a terminal.
type passProgressReporter struct {
	enabled bool
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

func newPassProgressReporter(label string, total int, opts RunOptions) *passProgressReporter {
	enabled := term.IsTerminal(int(os.Stderr.Fd())) && !opts.JSON && !opts.Diag.Quiet && !opts.Diag.Verbose
	return &passProgressReporter{
		enabled: enabled,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func (r *passProgressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d checking %s", frame, r.label, count, file)
	if r.total > 0 {
		status = fmt.Sprintf("%s %s %d/%d checking %s", frame, r.label, count, r.total, file)
	}
	r.printStatus(status)
}

// Clear erases the status line so a diagnostic can be printed in its place.
func (r *passProgressReporter) Clear() {
	if !r.enabled || r.lastLen == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", r.lastLen))
	r.lastLen = 0
}

func (r *passProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	status := fmt.Sprintf("%s complete (%d documents in %s)", r.label, count, elapsed)
	r.printStatus(status)
	fmt.Fprintln(os.Stderr)
}

func (r *passProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(os.Stderr, "\r%s", status)
}
