package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFilename(t *testing.T) {
	p := NewParser("SECoP", ".rst")

	cases := []struct {
		name   string
		number int
		short  string
		err    error
	}{
		{name: "003 Foo Bar.rst", number: 3, short: "Foo Bar"},
		{name: "120 a-b_c.rst", number: 120, short: "a-b_c"},
		{name: "README.rst", err: ErrNotIssueFile},
		{name: "03 Short.rst", err: ErrNotIssueFile},
		{name: "0003 Long.rst", err: ErrNotIssueFile},
		{name: "003 Foo.txt", err: ErrNotIssueFile},
		{name: "003 .rst", err: ErrNotIssueFile},
	}
	for _, tc := range cases {
		number, short, err := p.ParseFilename(tc.name)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if number != tc.number || short != tc.short {
			t.Fatalf("%s: expected (%d, %q), got (%d, %q)", tc.name, tc.number, tc.short, number, short)
		}
	}
}

func TestParseTitle(t *testing.T) {
	p := NewParser("SECoP", ".rst")

	header, err := p.ParseTitle("SECoP Issue 3: Foo Bar (proposed)")
	if err != nil {
		t.Fatalf("ParseTitle failed: %v", err)
	}
	if header.Number != 3 || header.Title != "Foo Bar" || header.State != StateProposed {
		t.Fatalf("unexpected header %+v", header)
	}

	header, err = p.ParseTitle("SECoP Issue 12: use (of) parens (under discussion)  ")
	if err != nil {
		t.Fatalf("ParseTitle with inner parens failed: %v", err)
	}
	if header.Title != "use (of) parens" || header.State != StateUnderDiscussion {
		t.Fatalf("unexpected header %+v", header)
	}

	for _, line := range []string{
		"SECoP Issue 3: Foo Bar",
		"SECoP Issue 3: Foo Bar (Proposed)",
		"SECoP Issue x: Foo (closed)",
		"Other Issue 3: Foo (closed)",
	} {
		_, err := p.ParseTitle(line)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%q: expected *ParseError, got %v", line, err)
		}
	}
}

func TestParseHeaderValidatesNumberAndUnderline(t *testing.T) {
	p := NewParser("SECoP", ".rst")

	if _, err := p.ParseHeader([]string{"SECoP Issue 4: Baz (closed)", "===="}, 4); err != nil {
		t.Fatalf("expected valid header, got %v", err)
	}

	_, err := p.ParseHeader([]string{"SECoP Issue 5: Baz (closed)", "===="}, 4)
	if err == nil || !strings.Contains(err.Error(), "does not match filename number") {
		t.Fatalf("expected number mismatch, got %v", err)
	}

	_, err = p.ParseHeader([]string{"SECoP Issue 4: Baz (closed)", "----"}, 4)
	if err == nil || !strings.Contains(err.Error(), "underlined") {
		t.Fatalf("expected missing underline, got %v", err)
	}

	_, err = p.ParseHeader([]string{"SECoP Issue 4: Baz (closed)"}, 4)
	if err == nil || !strings.Contains(err.Error(), "fewer than two lines") {
		t.Fatalf("expected short file error, got %v", err)
	}
}

func TestTitleLineRoundTrip(t *testing.T) {
	p := NewParser("SECoP", ".rst")

	for _, name := range StateNames() {
		state, ok := ParseState(name)
		if !ok {
			t.Fatalf("state %q not recognized", name)
		}
		line := p.TitleLine(42, "Round (trip) title", state)
		header, err := p.ParseTitle(line)
		if err != nil {
			t.Fatalf("re-parsing %q failed: %v", line, err)
		}
		want := Header{Number: 42, Title: "Round (trip) title", State: state}
		if header != want {
			t.Fatalf("expected %+v, got %+v", want, header)
		}
	}
}

func TestStateMarkers(t *testing.T) {
	want := map[State]string{
		StateClosed:          `\`,
		StateUnderDiscussion: "d",
		StateUnspecified:     "u",
		StateProposed:        "p",
		StateFinalizing:      "f",
	}
	for state, marker := range want {
		if state.Marker() != marker {
			t.Fatalf("%s: expected marker %q, got %q", state, marker, state.Marker())
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"Foo Bar":                  "Foo Bar",
		"Foo: Bar / Baz":           "Foo Bar Baz",
		"  spaced   out  ":         "spaced out",
		"keep-dash_and_underscore": "keep-dash_and_underscore",
		"Größe (Einheit)":          "Größe Einheit",
	}
	for in, want := range cases {
		if got := NormalizeTitle(in); got != want {
			t.Fatalf("NormalizeTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSameTextIgnoresNormalizationForm(t *testing.T) {
	if !SameText("Gr\u00f6\u00dfe", "Gro\u0308\u00dfe") {
		t.Fatalf("expected composed and decomposed forms to compare equal")
	}
}

func TestReferenceNumber(t *testing.T) {
	p := NewParser("SECoP", ".rst")
	if n, ok := p.ReferenceNumber("SECoP Issue 17: anything"); !ok || n != 17 {
		t.Fatalf("expected 17, got %d (%v)", n, ok)
	}
	if _, ok := p.ReferenceNumber("Issue 17"); ok {
		t.Fatalf("expected no number for label without prefix")
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Issue{{Number: 1, Filename: "001 A.rst"}, {Number: 1, Filename: "001 B.rst"}})
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	table, err := NewTable([]Issue{{Number: 2, Filename: "002 B.rst"}, {Number: 1, Filename: "001 A.rst"}})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 issues, got %d", table.Len())
	}
	if got := table.Issues()[0].Number; got != 2 {
		t.Fatalf("expected insertion order to be kept, got first number %d", got)
	}
	if _, ok := table.Lookup(3); ok {
		t.Fatalf("expected lookup of unknown number to fail")
	}
}
