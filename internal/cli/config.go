package cli

import (
	"fmt"
	"os"

	"github.com/SampleEnvironment/issuelist/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func RunConfig(cmd *cobra.Command, args []string) error {
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return err
	}
	issueDir, err := resolveIssueDirectory(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(issueDir, configPath)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}
