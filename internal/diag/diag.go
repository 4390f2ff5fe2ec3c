// Package diag collects and prints the per-file diagnostics of a run.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one recoverable anomaly found while processing a file.
type Diagnostic struct {
	File     string   `json:"file"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Detail   []string `json:"detail,omitempty"`
}

type Options struct {
	Quiet   bool
	Verbose bool
	NoColor bool
}

// Reporter prints diagnostics and progress lines as they happen and keeps the
// diagnostics for the run summary.
type Reporter struct {
	out         io.Writer
	opts        Options
	warnStyle   lipgloss.Style
	errorStyle  lipgloss.Style
	mutedStyle  lipgloss.Style
	diagnostics []Diagnostic
}

func NewReporter(out io.Writer, opts Options) *Reporter {
	renderer := lipgloss.NewRenderer(out)
	if opts.NoColor || os.Getenv("NO_COLOR") != "" || !isTerminal(out) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{
		out:  out,
		opts: opts,
		warnStyle: renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{
			Light: "#f2ae49",
			Dark:  "#ffb454",
		}),
		errorStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
			Light: "#f07171",
			Dark:  "#f07178",
		}),
		mutedStyle: renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{
			Light: "#828c99",
			Dark:  "#6c7680",
		}),
	}
}

// Discard returns a reporter that prints nothing but still records.
func Discard() *Reporter {
	return NewReporter(io.Discard, Options{Quiet: true, NoColor: true})
}

func (r *Reporter) Warn(file, message string, detail ...string) {
	r.report(Diagnostic{File: file, Severity: SeverityWarning, Message: message, Detail: detail})
}

func (r *Reporter) Error(file, message string, detail ...string) {
	r.report(Diagnostic{File: file, Severity: SeverityError, Message: message, Detail: detail})
}

// Infof prints a progress line unless the reporter is quiet.
func (r *Reporter) Infof(format string, args ...any) {
	if r.opts.Quiet {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Debugf prints only in verbose mode.
func (r *Reporter) Debugf(format string, args ...any) {
	if !r.opts.Verbose {
		return
	}
	fmt.Fprintln(r.out, r.mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *Reporter) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

func (r *Reporter) Count(severity Severity) int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Reporter) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

func (r *Reporter) report(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)

	tag := "[" + string(d.Severity) + "]"
	switch d.Severity {
	case SeverityError:
		tag = r.errorStyle.Render(tag)
	default:
		tag = r.warnStyle.Render(tag)
	}
	if d.File != "" {
		fmt.Fprintf(r.out, "%s %s: %s\n", tag, d.File, d.Message)
	} else {
		fmt.Fprintf(r.out, "%s %s\n", tag, d.Message)
	}
	for _, line := range d.Detail {
		fmt.Fprintf(r.out, "    %s\n", line)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
