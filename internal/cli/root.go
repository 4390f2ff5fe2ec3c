package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "issuelist [dir]",
		Short: "Maintain the SECoP issue index and issue cross-references",
		Long: `issuelist scans the numbered issue documents of a reStructuredText
documentation tree, normalizes their title lines and filenames, regenerates
the README.rst issue index, and refreshes the managed link-target block of
every document that references an issue.

Run it without arguments inside the issue directory, or pass the directory.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         RunIssueList,
		SilenceUsage: true,
	}
	addRunFlags(rootCmd)

	// Core Commands
	runCmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Normalize issues, regenerate the index, and update links",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunIssueList,
	}
	addRunFlags(runCmd)

	checkCmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Fail if a run would change any file or finds errors",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	addCommonFlags(checkCmd)
	checkCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	// Inspect Commands
	listCmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the accepted issues with their states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunList,
	}
	addCommonFlags(listCmd)
	listCmd.Flags().Bool("json", false, "Print machine-readable issue list")

	configCmd := &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunConfig,
	}
	configCmd.Flags().String("config", "", "Path to a config file (default: <dir>/.issuelist.yaml)")

	// Additional Commands
	installHookCmd := &cobra.Command{
		Use:   "install-hook [dir]",
		Short: "Install git pre-commit hook that runs issuelist check",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("issuelist %s\n", version)
		},
	}

	rootCmd.AddCommand(
		runCmd,
		checkCmd,
		listCmd,
		configCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a config file (default: <dir>/.issuelist.yaml)")
	cmd.Flags().BoolP("quiet", "q", false, "Only print warnings and errors")
	cmd.Flags().BoolP("verbose", "v", false, "Print debug details")
	cmd.Flags().Bool("no-color", false, "Disable colored diagnostics")
}

func addRunFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().BoolP("dry-run", "n", false, "Report planned changes without writing")
	cmd.Flags().Bool("json", false, "Print machine-readable run summary")
}
