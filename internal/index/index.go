// Package index renders the summary document listing every issue with its
// state marker and a link to the issue file.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
	"github.com/SampleEnvironment/issuelist/internal/rst"
)

const tableRule = "    ===== ======="

type Options struct {
	LabelPrefix string
	// IntroIssue is the number of the issue whose body introduces the summary.
	// Zero or an unknown number leaves the summary without an introduction.
	IntroIssue  int
	SummaryFile string
}

// Render builds the summary document. The first two intro lines are replaced
// by the index title; the rest of intro is kept verbatim.
func Render(intro []string, table *issue.Table, prefix string) string {
	title := prefix + " Issues"
	lines := make([]string, 0, len(intro)+2*table.Len()+10)
	lines = append(lines, title, rst.Underline(title, '='))
	if len(intro) > 2 {
		lines = append(lines, intro[2:]...)
	}

	lines = append(lines, "Issues List", "===========", "", ".. table::", "", tableRule)
	for _, iss := range table.Issues() {
		lines = append(lines, fmt.Sprintf("    %s     %s", iss.State.Marker(), rst.Reference(iss.Label)))
	}
	lines = append(lines, tableRule, "")
	for _, iss := range table.Issues() {
		lines = append(lines, rst.TargetLine(iss.Label, rst.Quote(iss.Filename)))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// LoadIntro reads the lines of the introduction issue. It returns nil when
// the table has no such issue.
func LoadIntro(dir string, table *issue.Table, number int) ([]string, error) {
	iss, ok := table.Lookup(number)
	if !ok {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, iss.Filename))
	if os.IsNotExist(err) && iss.Original != "" {
		// Dry runs leave renamed issues under their old name.
		data, err = os.ReadFile(filepath.Join(dir, iss.Original))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read introduction %s: %w", iss.Filename, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// Write regenerates the summary document in dir. The content is always
// rebuilt from scratch; the file is only touched when it changes.
func Write(dir string, table *issue.Table, opts Options, writer *fileutil.Writer) (bool, error) {
	intro, err := LoadIntro(dir, table, opts.IntroIssue)
	if err != nil {
		return false, err
	}
	content := Render(intro, table, opts.LabelPrefix)
	path := filepath.Join(dir, opts.SummaryFile)
	changed, err := writer.WriteIfChanged(path, []byte(content))
	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return changed, nil
}
