package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/SampleEnvironment/issuelist/internal/config"
	"github.com/SampleEnvironment/issuelist/internal/diag"
	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/spf13/cobra"
)

// ErrOutOfDate is returned by check when a run would modify the tree.
var ErrOutOfDate = errors.New("issue list is out of date")

func RunCheck(cmd *cobra.Command, args []string) error {
	opts, err := ParseRunOptions(cmd)
	if err != nil {
		return err
	}
	opts.DryRun = true

	issueDir, err := resolveIssueDirectory(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(issueDir, opts.ConfigPath)
	if err != nil {
		return err
	}

	reporter := diag.NewReporter(os.Stderr, opts.Diag)
	summary, err := GenerateIndex(cfg, opts, reporter, fileutil.NewWriter(true))
	if err != nil {
		return err
	}
	summary.Mode = "check"
	if !opts.Diag.Quiet || opts.JSON {
		if err := PrintRunSummary(summary, opts.JSON); err != nil {
			return err
		}
	}
	return CheckResult(summary)
}

// CheckResult turns a dry-run summary into the exit status of check.
func CheckResult(summary RunSummary) error {
	var errs []error
	if len(summary.Written) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d pending write(s): %s", ErrOutOfDate, len(summary.Written), SummarizePaths(summary.Written, 8)))
	}
	if summary.Errors > 0 {
		errs = append(errs, fmt.Errorf("%d error(s) reported", summary.Errors))
	}
	return errors.Join(errs...)
}
