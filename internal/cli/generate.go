package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SampleEnvironment/issuelist/internal/config"
	"github.com/SampleEnvironment/issuelist/internal/diag"
	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/ignore"
	"github.com/SampleEnvironment/issuelist/internal/index"
	"github.com/SampleEnvironment/issuelist/internal/issue"
	"github.com/SampleEnvironment/issuelist/internal/links"
	"github.com/SampleEnvironment/issuelist/internal/scan"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func RunIssueList(cmd *cobra.Command, args []string) error {
	opts, err := ParseRunOptions(cmd)
	if err != nil {
		return err
	}
	issueDir, err := resolveIssueDirectory(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(issueDir, opts.ConfigPath)
	if err != nil {
		return err
	}

	reporter := diag.NewReporter(os.Stderr, opts.Diag)
	writer := fileutil.NewWriter(opts.DryRun)
	summary, err := GenerateIndex(cfg, opts, reporter, writer)
	if err != nil {
		return err
	}
	if !opts.Diag.Quiet || opts.JSON {
		if err := PrintRunSummary(summary, opts.JSON); err != nil {
			return err
		}
	}
	if summary.Unresolved > 0 {
		return fmt.Errorf("%d document(s) left unchanged: %w", summary.Unresolved, links.ErrUnresolved)
	}
	return nil
}

// GenerateIndex runs the whole pipeline for one issue directory: scan and
// normalize the issues, regenerate the summary document, then synchronize
// the link blocks of every document selected by the configured passes.
// Per-file problems are reported through reporter; only I/O failures and
// rename conflicts abort the run.
func GenerateIndex(cfg *config.Config, opts RunOptions, reporter *diag.Reporter, writer *fileutil.Writer) (RunSummary, error) {
	start := time.Now()
	docsRoot := filepath.Dir(cfg.IssueDir)
	parser := issue.NewParser(cfg.LabelPrefix, cfg.Extension)

	reporter.Debugf("issue directory: %s", cfg.IssueDir)
	if cfg.File != "" {
		reporter.Debugf("config file: %s", cfg.File)
	}

	scanned, err := scan.Scan(cfg.IssueDir, scan.Options{
		Parser:      parser,
		RenameFiles: cfg.RenameFiles,
		Writer:      writer,
		Reporter:    reporter,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if _, err := index.Write(cfg.IssueDir, scanned.Table, index.Options{
		LabelPrefix: cfg.LabelPrefix,
		IntroIssue:  cfg.IntroIssue,
		SummaryFile: cfg.SummaryFile,
	}, writer); err != nil {
		return RunSummary{}, err
	}

	ignoreRules, err := LoadIgnoreRules(cfg.IssueDir)
	if err != nil {
		return RunSummary{}, err
	}
	matcher := ignore.NewMatcher(fileutil.DedupeStrings(append(append([]string{}, cfg.Ignore...), ignoreRules...)))

	summary := RunSummary{
		Mode:     "run",
		IssueDir: cfg.IssueDir,
		DryRun:   writer.DryRun(),
		Scanned:  scanned.Scanned,
		Accepted: scanned.Table.Len(),
		Rejected: scanned.Rejected,
		Renamed:  scanned.Rewritten,
	}

	visited := map[string]bool{cfg.SummaryPath(): true}
	for _, pass := range cfg.Passes {
		docs, err := passDocuments(cfg, pass, matcher, visited)
		if err != nil {
			return RunSummary{}, err
		}
		reporter.Debugf("pass %s: %d document(s) for %q", pass.Name, len(docs), pass.Pattern)

		syncer := links.NewSyncer(scanned.Table, links.Options{
			Parser:   parser,
			BasePath: pass.BasePath,
			ToolID:   cfg.ToolID,
		})
		progress := newPassProgressReporter(pass.Name, len(docs), opts)
		for i, doc := range docs {
			rel := displayPath(docsRoot, doc)
			progress.Update(rel, i+1)
			summary.Documents++

			result, err := syncer.SyncFile(doc, writer)
			if len(result.Warnings) > 0 {
				progress.Clear()
			}
			for _, w := range result.Warnings {
				reporter.Warn(rel, w.Message, w.Detail...)
			}
			var unresolved *links.UnresolvedError
			if errors.As(err, &unresolved) {
				progress.Clear()
				reporter.Error(rel, links.ErrUnresolved.Error(), unresolved.Labels...)
				summary.Unresolved++
				continue
			}
			if err != nil {
				progress.Clear()
				return RunSummary{}, err
			}
			if result.Changed {
				progress.Clear()
				reporter.Infof("update links in %s", rel)
				summary.Updated++
			}
		}
		progress.Done(len(docs))
	}

	for _, change := range writer.Changes() {
		summary.Written = append(summary.Written, displayPath(docsRoot, change.Path))
	}
	summary.Warnings = reporter.Count(diag.SeverityWarning)
	summary.Errors = reporter.Count(diag.SeverityError)
	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// passDocuments expands a pass pattern relative to the issue directory and
// drops the summary file, ignored paths, and documents an earlier pass
// already visited.
func passDocuments(cfg *config.Config, pass config.Pass, matcher *ignore.Matcher, visited map[string]bool) ([]string, error) {
	pattern := filepath.Join(cfg.IssueDir, filepath.FromSlash(pass.Pattern))
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q in pass %s: %w", pass.Pattern, pass.Name, err)
	}
	sort.Strings(matches)

	docsRoot := filepath.Dir(cfg.IssueDir)
	docs := make([]string, 0, len(matches))
	for _, match := range matches {
		path, err := filepath.Abs(match)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", match, err)
		}
		if visited[path] {
			continue
		}
		if pass.SkipIssueDir && filepath.Dir(path) == cfg.IssueDir {
			continue
		}
		if rel, err := filepath.Rel(docsRoot, path); err == nil && !strings.HasPrefix(rel, "..") && matcher.ShouldIgnore(rel) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		visited[path] = true
		docs = append(docs, path)
	}
	return docs, nil
}

func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
