package links

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
	"github.com/SampleEnvironment/issuelist/internal/issue"
)

const (
	begin = ".. DO NOT TOUCH --- following links are automatically updated by issuelist\n"
	end   = ".. DO NOT TOUCH --- above links are automatically updated by issuelist\n"
)

func newTestSyncer(t *testing.T, basePath string) *Syncer {
	t.Helper()
	table, err := issue.NewTable([]issue.Issue{
		{Number: 3, Title: "Foo Bar", State: issue.StateProposed, Label: "SECoP Issue 3: Foo Bar", Filename: "003 Foo Bar.rst"},
		{Number: 12, Title: "Größe", State: issue.StateClosed, Label: "SECoP Issue 12: Größe", Filename: "012 Größe.rst"},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return NewSyncer(table, Options{
		Parser:   issue.NewParser("SECoP", ".rst"),
		BasePath: basePath,
		ToolID:   "issuelist",
	})
}

func mustRewrite(t *testing.T, s *Syncer, content string) Result {
	t.Helper()
	result, err := s.Rewrite(content)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	return result
}

func TestRewriteInsertsBlockAtEnd(t *testing.T) {
	s := newTestSyncer(t, "issues/")
	result := mustRewrite(t, s, "See `SECoP Issue 3: Foo Bar`_.")

	want := "See `SECoP Issue 3: Foo Bar`_.\n\n" +
		begin +
		".. _`SECoP Issue 3: Foo Bar`: issues/003%20Foo%20Bar.rst\n" +
		end
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
	if !result.Changed || result.References != 1 || len(result.Warnings) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	again := mustRewrite(t, s, result.Content)
	if again.Changed || again.Content != result.Content {
		t.Fatalf("expected second rewrite to be a no-op, got:\n%q", again.Content)
	}
}

func TestRewriteQuotesNonASCIIFilenames(t *testing.T) {
	s := newTestSyncer(t, "../issues/")
	result := mustRewrite(t, s, "`SECoP Issue 12: Größe`_\n")
	if !strings.Contains(result.Content, ".. _`SECoP Issue 12: Größe`: ../issues/012%20Gr%C3%B6%C3%9Fe.rst\n") {
		t.Fatalf("expected quoted target, got:\n%s", result.Content)
	}
}

func TestRewriteLeavesDocumentsWithoutReferences(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "Nothing here.\n" + begin + ".. _`SECoP Issue 3: Old`: x.rst\n" + end
	result := mustRewrite(t, s, content)
	if result.Changed || result.Content != content {
		t.Fatalf("expected document untouched, got %+v", result)
	}
}

func TestRewriteReportsUnresolvedReference(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "`SECoP Issue 3: Foo Bar`_ and `SECoP Issue 999: Nope`_\n"

	result, err := s.Rewrite(content)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected *UnresolvedError, got %T", err)
	}
	if len(unresolved.Numbers) != 1 || unresolved.Numbers[0] != 999 {
		t.Fatalf("unexpected unresolved numbers %v", unresolved.Numbers)
	}
	if len(unresolved.Labels) != 1 || unresolved.Labels[0] != "SECoP Issue 999: Nope" {
		t.Fatalf("unexpected unresolved labels %v", unresolved.Labels)
	}
	if result.Changed || result.Content != content {
		t.Fatalf("expected content to be left alone, got %+v", result)
	}
	if !strings.Contains(err.Error(), "999") {
		t.Fatalf("expected error to name the issue, got %q", err.Error())
	}
}

func TestRewriteVariantsAndWarnings(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "`SECoP Issue 3: foo bar`_ `SECoP Issue 3: Foo Bar`_ `SECoP Issue 3: Something`_\n"
	result := mustRewrite(t, s, content)

	want := content + "\n" + begin +
		".. _`SECoP Issue 3: Foo Bar`:\n" +
		".. _`SECoP Issue 3: Something`:\n" +
		".. _`SECoP Issue 3: foo bar`: 003%20Foo%20Bar.rst\n" +
		end
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", result.Warnings)
	}
	if result.Warnings[0].Message != "labels do not match" || result.Warnings[1].Message != "label case differs" {
		t.Fatalf("unexpected warnings %+v", result.Warnings)
	}
}

func TestRewriteOrdersIssuesByNumber(t *testing.T) {
	s := newTestSyncer(t, "")
	result := mustRewrite(t, s, "`SECoP Issue 12: Größe`_ then `SECoP Issue 3: Foo Bar`_\n")
	i3 := strings.Index(result.Content, ".. _`SECoP Issue 3")
	i12 := strings.Index(result.Content, ".. _`SECoP Issue 12")
	if i3 < 0 || i12 < 0 || i3 > i12 {
		t.Fatalf("expected issue 3 before issue 12, got:\n%s", result.Content)
	}
}

func TestRewriteReplacesBlockOfOtherTool(t *testing.T) {
	s := newTestSyncer(t, "issues/")
	content := "Text `SECoP Issue 3: Foo Bar`_\n\n" +
		".. DO NOT TOUCH --- following links are automatically updated by issue/makeissuelist.py\n" +
		".. _`SECoP Issue 3: Old`: issues/003%20Old.rst\n" +
		".. DO NOT TOUCH --- above links are automatically updated by issue/makeissuelist.py\n" +
		"Trailer\n"
	result := mustRewrite(t, s, content)

	want := "Text `SECoP Issue 3: Foo Bar`_\n\n" + begin +
		".. _`SECoP Issue 3: Foo Bar`: issues/003%20Foo%20Bar.rst\n" +
		end + "Trailer\n"
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
}

func TestRewriteReplacesStaleDefinitionInPlace(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "Intro `SECoP Issue 3: Foo Bar`_\n\n" +
		".. _`SECoP Issue 3: Foo Bar`: old.rst\n" +
		"\nMore text\n"
	result := mustRewrite(t, s, content)

	want := "Intro `SECoP Issue 3: Foo Bar`_\n\n" + begin +
		".. _`SECoP Issue 3: Foo Bar`: 003%20Foo%20Bar.rst\n" +
		end + "\nMore text\n"
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
	if again := mustRewrite(t, s, result.Content); again.Changed {
		t.Fatalf("expected idempotent rewrite, got:\n%q", again.Content)
	}
}

func TestRewriteUnterminatedBlock(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "A `SECoP Issue 3: Foo Bar`_\n" + begin + "leftover\n"
	result := mustRewrite(t, s, content)

	want := "A `SECoP Issue 3: Foo Bar`_\n" + begin +
		".. _`SECoP Issue 3: Foo Bar`: 003%20Foo%20Bar.rst\n" + end
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "no end marker") {
		t.Fatalf("expected unterminated block warning, got %+v", result.Warnings)
	}
	if again := mustRewrite(t, s, result.Content); len(again.Warnings) != 0 || again.Changed {
		t.Fatalf("expected clean second run, got %+v", again)
	}
}

func TestSplitBlockKeepsEveryTail(t *testing.T) {
	content := "head\n" + begin + "x\n" + end + "middle\n" + begin + "y\n" + end + "tail\n"
	block := SplitBlock(content)
	if !block.Found || block.Unterminated {
		t.Fatalf("unexpected block flags %+v", block)
	}
	if block.Head != "head\n" || len(block.Tails) != 2 || block.Tails[0] != "middle\n" || block.Tails[1] != "tail\n" {
		t.Fatalf("unexpected split %+v", block)
	}
}

func TestSyncFileDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.rst")
	original := "See `SECoP Issue 3: Foo Bar`_\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("failed to write doc: %v", err)
	}
	s := newTestSyncer(t, "")

	writer := fileutil.NewWriter(true)
	result, err := s.SyncFile(path, writer)
	if err != nil {
		t.Fatalf("SyncFile failed: %v", err)
	}
	if !result.Changed || len(writer.Changes()) != 1 {
		t.Fatalf("expected one planned write, got %+v / %+v", result, writer.Changes())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read doc: %v", err)
	}
	if string(data) != original {
		t.Fatalf("expected dry run to leave the file alone, got %q", data)
	}

	applied := fileutil.NewWriter(false)
	if _, err := s.SyncFile(path, applied); err != nil {
		t.Fatalf("SyncFile failed: %v", err)
	}
	second := fileutil.NewWriter(false)
	result, err = s.SyncFile(path, second)
	if err != nil {
		t.Fatalf("SyncFile failed: %v", err)
	}
	if result.Changed || len(second.Changes()) != 0 {
		t.Fatalf("expected second sync to write nothing, got %+v", second.Changes())
	}
}

func TestRewriteReportsReferenceWithOversizedNumber(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "See `SECoP Issue 99999999999999999999: Huge`_\n"

	result, err := s.Rewrite(content)
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected *UnresolvedError, got %v", err)
	}
	if len(unresolved.Numbers) != 0 || len(unresolved.Labels) != 1 || unresolved.Labels[0] != "SECoP Issue 99999999999999999999: Huge" {
		t.Fatalf("unexpected unresolved error %+v", unresolved)
	}
	if result.References != 1 || result.Changed || result.Content != content {
		t.Fatalf("expected content untouched with one reference, got %+v", result)
	}
}

func TestRewriteKeepsWarningsWhenUnresolved(t *testing.T) {
	s := newTestSyncer(t, "")
	result, err := s.Rewrite("`SECoP Issue 3: foo bar`_ and `SECoP Issue 999: Nope`_\n")
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Message != "label case differs" {
		t.Fatalf("expected case warning to survive, got %+v", result.Warnings)
	}
}

func TestRewriteRemovesStaleDefinitionsWithoutTarget(t *testing.T) {
	s := newTestSyncer(t, "")
	content := "Intro `SECoP Issue 3: Foo Bar`_ and `SECoP Issue 3: foo bar`_\n\n" +
		".. _`SECoP Issue 3: Foo Bar`:\n" +
		".. _`SECoP Issue 3: foo bar`: old.rst\n" +
		"\nMore text\n"
	result := mustRewrite(t, s, content)

	want := "Intro `SECoP Issue 3: Foo Bar`_ and `SECoP Issue 3: foo bar`_\n\n" + begin +
		".. _`SECoP Issue 3: Foo Bar`:\n" +
		".. _`SECoP Issue 3: foo bar`: 003%20Foo%20Bar.rst\n" +
		end + "\nMore text\n"
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nexpected:\n%q", result.Content, want)
	}
	if strings.Count(result.Content, ".. _`SECoP Issue 3: Foo Bar`:") != 1 {
		t.Fatalf("expected a single definition of the label, got:\n%s", result.Content)
	}
	if again := mustRewrite(t, s, result.Content); again.Changed {
		t.Fatalf("expected idempotent rewrite, got:\n%q", again.Content)
	}
}
