package cli

import (
	"fmt"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/diag"
	"github.com/spf13/cobra"
)

// RunOptions are the command-line settings shared by the commands that run
// the pipeline.
type RunOptions struct {
	ConfigPath string
	DryRun     bool
	JSON       bool
	Diag       diag.Options
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseRunOptions reads the flags a command registered; missing flags keep
// their zero value.
func ParseRunOptions(cmd *cobra.Command) (RunOptions, error) {
	var opts RunOptions
	var err error
	if opts.ConfigPath, err = OptionalStringFlag(cmd, "config"); err != nil {
		return opts, err
	}
	if opts.DryRun, err = OptionalBoolFlag(cmd, "dry-run", false); err != nil {
		return opts, err
	}
	if opts.JSON, err = OptionalBoolFlag(cmd, "json", false); err != nil {
		return opts, err
	}
	if opts.Diag.Quiet, err = OptionalBoolFlag(cmd, "quiet", false); err != nil {
		return opts, err
	}
	if opts.Diag.Verbose, err = OptionalBoolFlag(cmd, "verbose", false); err != nil {
		return opts, err
	}
	if opts.Diag.NoColor, err = OptionalBoolFlag(cmd, "no-color", false); err != nil {
		return opts, err
	}
	if opts.Diag.Quiet && opts.Diag.Verbose {
		return opts, fmt.Errorf("--quiet and --verbose cannot be combined")
	}
	return opts, nil
}
