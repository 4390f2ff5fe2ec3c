package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const IgnoreFile = ".issuelistignore"

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveIssueDirectory returns the absolute issue directory named by the
// optional positional argument, or the working directory.
func resolveIssueDirectory(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return resolveWorkingDirectory()
	}
	path := args[0]
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", dir)
	}
	return dir, nil
}

// LoadIgnoreRules reads .issuelistignore from the issue directory. Rules are
// doublestar patterns relative to the documentation root.
func LoadIgnoreRules(issueDir string) ([]string, error) {
	ignorePath := filepath.Join(issueDir, IgnoreFile)
	f, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IgnoreFile, err)
	}

	return rules, nil
}
