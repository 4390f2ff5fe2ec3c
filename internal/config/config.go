// Package config resolves the settings of an issuelist run. Every setting has
// a default reproducing the conventional SECoP documentation layout, so a
// config file is only needed for trees that deviate from it.
//
// Sources, lowest precedence first: defaults, .issuelist.yaml in the issue
// directory (or the file given with --config), ISSUELIST_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	FileName  = ".issuelist.yaml"
	EnvPrefix = "ISSUELIST"

	// DirPlaceholder in a pass base path expands to the issue directory's name.
	DirPlaceholder = "{dir}"
)

// Pass selects documents whose reference blocks are synchronized and the
// prefix put in front of issue filenames in their link targets.
type Pass struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Pattern      string `mapstructure:"pattern" yaml:"pattern"`
	BasePath     string `mapstructure:"base_path" yaml:"base_path"`
	SkipIssueDir bool   `mapstructure:"skip_issue_dir" yaml:"skip_issue_dir,omitempty"`
}

type Config struct {
	IssueDir    string   `mapstructure:"-" yaml:"issue_dir"`
	File        string   `mapstructure:"-" yaml:"config_file,omitempty"`
	LabelPrefix string   `mapstructure:"label_prefix" yaml:"label_prefix"`
	Extension   string   `mapstructure:"extension" yaml:"extension"`
	SummaryFile string   `mapstructure:"summary_file" yaml:"summary_file"`
	IntroIssue  int      `mapstructure:"intro_issue" yaml:"intro_issue"`
	RenameFiles bool     `mapstructure:"rename_files" yaml:"rename_files"`
	ToolID      string   `mapstructure:"tool_id" yaml:"tool_id"`
	Passes      []Pass   `mapstructure:"passes" yaml:"passes"`
	Ignore      []string `mapstructure:"ignore" yaml:"ignore,omitempty"`
}

var defaults = map[string]any{
	"label_prefix": "SECoP",
	"extension":    ".rst",
	"summary_file": "README.rst",
	"intro_issue":  1,
	"rename_files": true,
	"tool_id":      "issuelist",
}

// DefaultPasses returns the three synchronization passes: documents directly
// above the issue directory, documents in sibling directories, and documents
// inside the issue directory.
func DefaultPasses(ext string) []Pass {
	return []Pass{
		{Name: "parent", Pattern: "../*" + ext, BasePath: DirPlaceholder + "/"},
		{Name: "siblings", Pattern: "../*/*" + ext, BasePath: "../" + DirPlaceholder + "/", SkipIssueDir: true},
		{Name: "issues", Pattern: "*" + ext, BasePath: ""},
	}
}

// Default returns the configuration used when nothing overrides it.
func Default(issueDir string) *Config {
	cfg := &Config{
		IssueDir:    issueDir,
		LabelPrefix: defaults["label_prefix"].(string),
		Extension:   defaults["extension"].(string),
		SummaryFile: defaults["summary_file"].(string),
		IntroIssue:  defaults["intro_issue"].(int),
		RenameFiles: defaults["rename_files"].(bool),
		ToolID:      defaults["tool_id"].(string),
	}
	cfg.finish()
	return cfg
}

// Load resolves the configuration for issueDir. configPath may be empty, in
// which case an .issuelist.yaml next to the issues is used when present.
func Load(issueDir, configPath string) (*Config, error) {
	absDir, err := filepath.Abs(issueDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve issue directory %q: %w", issueDir, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := configPath
	if file == "" {
		candidate := filepath.Join(absDir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			file = candidate
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.IssueDir = absDir
	cfg.File = file
	cfg.finish()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() {
	if len(c.Passes) == 0 {
		c.Passes = DefaultPasses(c.Extension)
	}
	dirName := filepath.Base(c.IssueDir)
	for i := range c.Passes {
		c.Passes[i].BasePath = strings.ReplaceAll(c.Passes[i].BasePath, DirPlaceholder, dirName)
		if c.Passes[i].Name == "" {
			c.Passes[i].Name = fmt.Sprintf("pass-%d", i+1)
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LabelPrefix) == "" {
		errs = append(errs, errors.New("label_prefix must not be empty"))
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		errs = append(errs, fmt.Errorf("extension %q must start with a dot", c.Extension))
	}
	if c.SummaryFile == "" || strings.ContainsRune(c.SummaryFile, filepath.Separator) {
		errs = append(errs, fmt.Errorf("summary_file %q must be a plain filename", c.SummaryFile))
	}
	if strings.TrimSpace(c.ToolID) == "" || strings.ContainsAny(c.ToolID, "\r\n") {
		errs = append(errs, fmt.Errorf("tool_id %q must be a single non-empty line", c.ToolID))
	}
	for i, pass := range c.Passes {
		if strings.TrimSpace(pass.Pattern) == "" {
			errs = append(errs, fmt.Errorf("passes[%d] (%s): pattern must not be empty", i, pass.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// SummaryPath is the absolute path of the generated summary document.
func (c *Config) SummaryPath() string {
	return filepath.Join(c.IssueDir, c.SummaryFile)
}
