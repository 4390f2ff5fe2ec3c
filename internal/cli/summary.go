package cli

import (
	"fmt"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
)

type RunSummary struct {
	Mode       string   `json:"mode"`
	IssueDir   string   `json:"issue_dir"`
	DryRun     bool     `json:"dry_run"`
	Scanned    int      `json:"scanned"`
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	Renamed    int      `json:"renamed"`
	Documents  int      `json:"documents"`
	Updated    int      `json:"updated"`
	Unresolved int      `json:"unresolved"`
	Warnings   int      `json:"warnings"`
	Errors     int      `json:"errors"`
	DurationMS int64    `json:"duration_ms"`
	Written    []string `json:"written,omitempty"`
}

func PrintRunSummary(summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(summary)
	}

	mode := summary.Mode
	if summary.DryRun {
		mode += " (dry-run)"
	}
	fmt.Printf("%s complete in %dms\n", mode, summary.DurationMS)
	fmt.Printf("issues: scanned=%d accepted=%d rejected=%d renamed=%d\n", summary.Scanned, summary.Accepted, summary.Rejected, summary.Renamed)
	fmt.Printf("documents: visited=%d updated=%d unresolved=%d\n", summary.Documents, summary.Updated, summary.Unresolved)
	fmt.Printf("diagnostics: warnings=%d errors=%d\n", summary.Warnings, summary.Errors)
	if len(summary.Written) > 0 {
		label := "written files"
		if summary.DryRun {
			label = "pending writes"
		}
		fmt.Printf("%s (%d): %s\n", label, len(summary.Written), SummarizePaths(summary.Written, 8))
	}
	return nil
}

func PrintIssueList(issues []issue.Issue, asJSON bool) error {
	if asJSON {
		if issues == nil {
			issues = []issue.Issue{}
		}
		return fileutil.PrintJSON(issues)
	}

	for _, iss := range issues {
		fmt.Printf("%03d  %s  %-16s  %s\n", iss.Number, iss.State.Marker(), iss.State, iss.Title)
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
