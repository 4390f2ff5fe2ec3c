package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildCheckHookBlockRunsCheck(t *testing.T) {
	block := BuildCheckHookBlock("/repo/path", "doc/issues")

	for _, expected := range []string{
		"repo_root=\"/repo/path\"",
		"issue_dir=\"$repo_root/doc/issues\"",
		"command -v issuelist",
		"issuelist check --quiet \"$issue_dir\"",
		"exit 1",
	} {
		if !strings.Contains(block, expected) {
			t.Fatalf("expected hook block to contain %q, got:\n%s", expected, block)
		}
	}
	if !strings.HasPrefix(block, HookStart) || !strings.HasSuffix(block, HookEnd) {
		t.Fatalf("expected hook block to be wrapped in markers, got:\n%s", block)
	}
}

func TestUpsertCheckHookCreatesScript(t *testing.T) {
	updated := UpsertCheckHook("", "/repo/path", "issues")
	if !strings.HasPrefix(updated, "#!/bin/sh\n\n"+HookStart) {
		t.Fatalf("expected new hook to start with shebang and block, got:\n%s", updated)
	}
}

func TestUpsertCheckHookReplacesExistingBlock(t *testing.T) {
	existing := "#!/bin/sh\n\necho before\n" + HookStart + "\nold block\n" + HookEnd + "\n\necho after\n"
	updated := UpsertCheckHook(existing, "/repo/path", "issues")

	if strings.Contains(updated, "old block") {
		t.Fatalf("expected old hook block to be replaced, got:\n%s", updated)
	}
	if strings.Count(updated, HookStart) != 1 || strings.Count(updated, HookEnd) != 1 {
		t.Fatalf("expected exactly one hook block after update, got:\n%s", updated)
	}
	if !strings.Contains(updated, "echo before") || !strings.Contains(updated, "echo after") {
		t.Fatalf("expected non-issuelist hook content to be preserved, got:\n%s", updated)
	}
	if again := UpsertCheckHook(updated, "/repo/path", "issues"); again != updated {
		t.Fatalf("expected idempotent upsert, got:\n%s", again)
	}
}

func TestUpsertCheckHookAppendsToForeignScript(t *testing.T) {
	updated := UpsertCheckHook("echo lint", "/repo/path", "issues")
	if !strings.HasPrefix(updated, "#!/bin/sh\necho lint\n\n"+HookStart) {
		t.Fatalf("expected block appended after existing script, got:\n%s", updated)
	}
}

func TestRelativeIssueDirResolvesSymlinks(t *testing.T) {
	base := t.TempDir()
	repo := filepath.Join(base, "repo")
	if err := os.MkdirAll(filepath.Join(repo, "doc", "issues"), 0755); err != nil {
		t.Fatalf("failed to create repo tree: %v", err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(repo, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	resolvedRepo, err := filepath.EvalSymlinks(repo)
	if err != nil {
		t.Fatalf("failed to resolve repo: %v", err)
	}

	rel, err := RelativeIssueDir(resolvedRepo, filepath.Join(link, "doc", "issues"))
	if err != nil {
		t.Fatalf("RelativeIssueDir failed: %v", err)
	}
	if rel != "doc/issues" {
		t.Fatalf("expected doc/issues, got %q", rel)
	}

	if _, err := RelativeIssueDir(filepath.Join(resolvedRepo, "doc"), base); err == nil {
		t.Fatalf("expected error for directory outside the repository")
	}
}
