// Package scan discovers the issue files of an issue directory, validates
// their title lines, normalizes them in place, and builds the issue table.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/diag"
	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
	"github.com/SampleEnvironment/issuelist/internal/rst"
)

// ErrRenameConflict is returned when an issue's canonical filename is already
// used by a different file.
var ErrRenameConflict = errors.New("canonical filename already taken")

type Options struct {
	Parser      *issue.Parser
	RenameFiles bool
	Writer      *fileutil.Writer
	Reporter    *diag.Reporter
}

type Result struct {
	Table     *issue.Table
	Scanned   int
	Rejected  int
	Rewritten int
}

// Scan processes every issue file in dir in filename order. Malformed files
// are reported and left out of the table; only I/O failures abort the scan.
func Scan(dir string, opts Options) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read issue directory %s: %w", dir, err)
	}

	result := &Result{}
	issues := make([]issue.Issue, 0, len(entries))
	seen := make(map[int]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		number, short, err := opts.Parser.ParseFilename(name)
		if err != nil {
			continue
		}
		result.Scanned++

		if first, dup := seen[number]; dup {
			opts.Reporter.Error(name, fmt.Sprintf("duplicate issue number %d (already used by %q)", number, first))
			result.Rejected++
			continue
		}

		iss, ok, err := scanFile(dir, name, number, short, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Rejected++
			continue
		}
		seen[number] = iss.Filename
		if iss.rewritten {
			result.Rewritten++
		}
		issues = append(issues, iss.Issue)
	}

	table, err := issue.NewTable(issues)
	if err != nil {
		return nil, err
	}
	result.Table = table
	return result, nil
}

type scanned struct {
	issue.Issue
	rewritten bool
}

func scanFile(dir, name string, number int, short string, opts Options) (scanned, bool, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return scanned{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(string(data), "\n")

	header, err := opts.Parser.ParseHeader(lines, number)
	if err != nil {
		var parseErr *issue.ParseError
		if !errors.As(err, &parseErr) {
			return scanned{}, false, err
		}
		opts.Reporter.Error(name, "non standard title: "+parseErr.Reason, headLines(lines)...)
		return scanned{}, false, nil
	}

	normalized := issue.NormalizeTitle(header.Title)
	if !issue.SameText(short, normalized) {
		opts.Reporter.Warn(name, "filename and title do not match",
			"filename: "+short,
			"title:    "+header.Title,
		)
	}

	titleLine := opts.Parser.TitleLine(number, header.Title, header.State)
	filename := name
	if opts.RenameFiles && normalized != "" {
		if canonical := opts.Parser.Filename(number, header.Title); !issue.SameText(canonical, name) {
			filename = canonical
		}
	}

	result := scanned{Issue: issue.Issue{
		Number:     number,
		Title:      header.Title,
		ShortTitle: short,
		State:      header.State,
		Label:      opts.Parser.Label(number, header.Title),
		Filename:   filename,
	}}

	if titleLine == lines[0] && filename == name {
		return result, true, nil
	}

	if titleLine != lines[0] {
		opts.Reporter.Infof("change title to: %s", titleLine)
	}
	newPath := filepath.Join(dir, filename)
	if filename != name {
		if err := checkRenameTarget(path, newPath); err != nil {
			return scanned{}, false, err
		}
		opts.Reporter.Infof("change filename to %s", filename)
		result.Original = name
	}

	lines[0] = titleLine
	lines[1] = rst.Underline(titleLine, '=')
	if err := opts.Writer.Replace(path, newPath, []byte(strings.Join(lines, "\n"))); err != nil {
		return scanned{}, false, fmt.Errorf("failed to rewrite %s: %w", path, err)
	}
	result.rewritten = true
	return result, true, nil
}

func checkRenameTarget(oldPath, newPath string) error {
	targetInfo, err := os.Stat(newPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	sourceInfo, err := os.Stat(oldPath)
	if err != nil {
		return err
	}
	if os.SameFile(sourceInfo, targetInfo) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrRenameConflict, filepath.Base(oldPath), filepath.Base(newPath))
}

func headLines(lines []string) []string {
	if len(lines) > 2 {
		return lines[:2]
	}
	return lines
}
