// Package links keeps the hyperlink targets of issue references up to date.
//
// A document that mentions `<prefix> Issue <n>: <title>`_ gets a managed block
// of link-target definitions pointing at the issue files. The block sits
// between two sentinel lines and is regenerated from the issue table on every
// run; everything outside it is preserved, except stand-alone definitions of
// issue labels, which the block supersedes.
package links

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
	"github.com/SampleEnvironment/issuelist/internal/rst"
)

var ErrUnresolved = errors.New("unresolved issue reference")

// UnresolvedError lists the references of a document whose issue numbers are
// not in the table. Labels also holds references whose number cannot be
// represented at all; those have no entry in Numbers.
type UnresolvedError struct {
	Numbers []int
	Labels  []string
}

func (e *UnresolvedError) Error() string {
	labels := make([]string, len(e.Labels))
	for i, label := range e.Labels {
		labels[i] = strconv.Quote(label)
	}
	return fmt.Sprintf("%s: %s", ErrUnresolved, strings.Join(labels, ", "))
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

type Warning struct {
	Message string
	Detail  []string
}

type Options struct {
	Parser *issue.Parser
	// BasePath is put in front of issue filenames in link targets.
	BasePath string
	ToolID   string
}

type Result struct {
	Content  string
	Changed  bool
	Warnings []Warning
	// References counts the distinct issues the document refers to.
	References int
}

// Syncer rewrites documents against one issue table.
type Syncer struct {
	table     *issue.Table
	opts      Options
	reference *regexp.Regexp
	stale     *regexp.Regexp
}

func NewSyncer(table *issue.Table, opts Options) *Syncer {
	prefix := regexp.QuoteMeta(opts.Parser.Prefix())
	return &Syncer{
		table:     table,
		opts:      opts,
		reference: regexp.MustCompile("`(" + prefix + " Issue \\d+[^\\n`]*)`_"),
		stale:     regexp.MustCompile("(?m)^[ \\t]*\\.\\. _`" + prefix + " Issue \\d+[^`\\n]*`:(?:[ \\t].*)?(?:\\n|$)"),
	}
}

// Rewrite computes the new content of a document. It does no I/O. A document
// without issue references is returned unchanged.
func (s *Syncer) Rewrite(content string) (Result, error) {
	variants, invalid := s.collect(content)
	if len(variants) == 0 && len(invalid) == 0 {
		return Result{Content: content}, nil
	}

	numbers := fileutil.SortedKeys(variants)
	result := Result{References: len(numbers) + len(invalid)}
	unresolved := &UnresolvedError{}
	var body strings.Builder
	for _, number := range numbers {
		labels := fileutil.SortedKeys(variants[number])
		iss, ok := s.table.Lookup(number)
		if !ok {
			unresolved.Numbers = append(unresolved.Numbers, number)
			unresolved.Labels = append(unresolved.Labels, labels...)
			continue
		}
		for i, label := range labels {
			if w, mismatch := compareLabel(label, iss.Label); mismatch {
				result.Warnings = append(result.Warnings, w)
			}
			url := ""
			if i == len(labels)-1 {
				url = s.opts.BasePath + rst.Quote(iss.Filename)
			}
			body.WriteString(rst.TargetLine(label, url))
			body.WriteByte('\n')
		}
	}
	unresolved.Labels = append(unresolved.Labels, invalid...)
	if len(unresolved.Labels) > 0 {
		result.Content = content
		return result, unresolved
	}

	block := SplitBlock(content)
	if block.Found {
		block.Head, _ = s.removeStale(block.Head)
		for i := range block.Tails {
			block.Tails[i], _ = s.removeStale(block.Tails[i])
		}
		if block.Unterminated {
			result.Warnings = append(result.Warnings, Warning{
				Message: "managed link block has no end marker; replacing everything after it",
			})
		}
	} else {
		cleaned, first := s.removeStale(content)
		if first < 0 {
			first = len(cleaned)
		}
		block = InsertAt(cleaned, first)
	}

	result.Content = block.Render(s.opts.ToolID, body.String())
	result.Changed = result.Content != content
	return result, nil
}

// collect groups reference labels by issue number. Labels whose number does
// not fit an int are returned separately, sorted and without duplicates.
func (s *Syncer) collect(content string) (map[int]map[string]struct{}, []string) {
	variants := make(map[int]map[string]struct{})
	invalid := make(map[string]struct{})
	for _, m := range s.reference.FindAllStringSubmatch(content, -1) {
		label := m[1]
		number, ok := s.opts.Parser.ReferenceNumber(label)
		if !ok {
			invalid[label] = struct{}{}
			continue
		}
		if variants[number] == nil {
			variants[number] = make(map[string]struct{})
		}
		variants[number][label] = struct{}{}
	}
	return variants, fileutil.SortedKeys(invalid)
}

// removeStale drops stand-alone issue label definitions and returns the
// offset in the cleaned text where the first one was, or -1.
func (s *Syncer) removeStale(text string) (string, int) {
	locs := s.stale.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, -1
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(text[prev:loc[0]])
		prev = loc[1]
	}
	b.WriteString(text[prev:])
	return b.String(), locs[0][0]
}

func compareLabel(label, canonical string) (Warning, bool) {
	switch {
	case label == canonical:
		return Warning{}, false
	case strings.EqualFold(label, canonical):
		return Warning{Message: "label case differs", Detail: labelDetail(label, canonical)}, true
	default:
		return Warning{Message: "labels do not match", Detail: labelDetail(label, canonical)}, true
	}
}

func labelDetail(label, canonical string) []string {
	return []string{strconv.Quote(label), strconv.Quote(canonical)}
}

// SyncFile rewrites the managed block of the document at path and writes it
// through writer when it changed.
func (s *Syncer) SyncFile(path string, writer *fileutil.Writer) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	result, err := s.Rewrite(string(data))
	if err != nil {
		return result, err
	}
	if !result.Changed {
		return result, nil
	}
	if _, err := writer.WriteIfChanged(path, []byte(result.Content)); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return result, nil
}
