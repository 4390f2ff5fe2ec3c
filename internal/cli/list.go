package cli

import (
	"os"

	"github.com/SampleEnvironment/issuelist/internal/config"
	"github.com/SampleEnvironment/issuelist/internal/diag"
	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
	"github.com/SampleEnvironment/issuelist/internal/scan"
	"github.com/spf13/cobra"
)

// RunList prints the issue table a run would build. Nothing is written; the
// listed filenames are the canonical ones.
func RunList(cmd *cobra.Command, args []string) error {
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

	// Scanner notices about pending renames are noise here.
	diagOpts := opts.Diag
	diagOpts.Quiet = true
	result, err := scan.Scan(cfg.IssueDir, scan.Options{
		Parser:      issue.NewParser(cfg.LabelPrefix, cfg.Extension),
		RenameFiles: cfg.RenameFiles,
		Writer:      fileutil.NewWriter(true),
		Reporter:    diag.NewReporter(os.Stderr, diagOpts),
	})
	if err != nil {
		return err
	}
	return PrintIssueList(result.Table.Issues(), opts.JSON)
}
