package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/spf13/cobra"
)

const (
	HookStart = "# >>> issuelist check hook >>>"
	HookEnd   = "# <<< issuelist check hook <<<"
)

func RunInstallHook(cmd *cobra.Command, args []string) error {
	issueDir, err := resolveIssueDirectory(args)
	if err != nil {
		return err
	}

	repoRoot, gitDir, err := ResolveGitPaths(issueDir)
	if err != nil {
		return err
	}
	relDir, err := RelativeIssueDir(repoRoot, issueDir)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
		return fmt.Errorf("failed to create hook directory: %w", err)
	}

	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing hook: %w", err)
	}

	updated := UpsertCheckHook(existing, repoRoot, relDir)
	if err := os.WriteFile(hookPath, []byte(updated), 0755); err != nil {
		return fmt.Errorf("failed to write hook: %w", err)
	}

	fmt.Printf("Installed pre-commit hook at %s\n", hookPath)
	return nil
}

func ResolveGitPaths(workingDir string) (repoRoot string, gitDir string, err error) {
	repoRootOut, err := exec.Command("git", "-C", workingDir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", "", fmt.Errorf("not inside a git repository")
	}

	gitDirOut, err := exec.Command("git", "-C", workingDir, "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve git directory: %w", err)
	}

	repoRoot = strings.TrimSpace(string(repoRootOut))
	gitDir = strings.TrimSpace(string(gitDirOut))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(workingDir, gitDir)
	}
	return repoRoot, gitDir, nil
}

// RelativeIssueDir returns issueDir relative to the repository root, in
// slash form. git reports the root with symlinks resolved, so issueDir is
// resolved the same way first.
func RelativeIssueDir(repoRoot, issueDir string) (string, error) {
	resolvedRoot, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", repoRoot, err)
	}
	resolvedDir, err := filepath.EvalSymlinks(issueDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", issueDir, err)
	}
	relDir, err := filepath.Rel(resolvedRoot, resolvedDir)
	if err != nil {
		return "", fmt.Errorf("failed to locate %s in %s: %w", issueDir, repoRoot, err)
	}
	if relDir == ".." || strings.HasPrefix(relDir, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository %s", issueDir, repoRoot)
	}
	return filepath.ToSlash(relDir), nil
}

// UpsertCheckHook adds or replaces the issuelist block of a pre-commit hook,
// leaving the rest of the script alone.
func UpsertCheckHook(existingHook, repoRoot, issueDir string) string {
	block := BuildCheckHookBlock(repoRoot, issueDir)

	if existingHook == "" {
		return "#!/bin/sh\n\n" + block + "\n"
	}

	start := strings.Index(existingHook, HookStart)
	end := strings.Index(existingHook, HookEnd)
	if start >= 0 && end >= start {
		end += len(HookEnd)
		updated := existingHook[:start] + block + existingHook[end:]
		return fileutil.EnsureTrailingNewline(updated)
	}

	base := fileutil.EnsureTrailingNewline(existingHook)
	if !strings.HasPrefix(base, "#!") {
		base = "#!/bin/sh\n" + base
	}
	return base + "\n" + block + "\n"
}

func BuildCheckHookBlock(repoRoot, issueDir string) string {
	return fmt.Sprintf(
		"%s\nrepo_root=%q\nissue_dir=\"$repo_root/%s\"\nif command -v issuelist >/dev/null 2>&1; then\n  if ! issuelist check --quiet \"$issue_dir\"; then\n    echo \"issuelist: run 'issuelist $issue_dir' and stage the result\" >&2\n    exit 1\n  fi\nfi\n%s",
		HookStart,
		repoRoot,
		issueDir,
		HookEnd,
	)
}
