package rst

import "testing"

func TestQuote(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "003 Foo Bar.rst", want: "003%20Foo%20Bar.rst"},
		{in: "issues/001 About.rst", want: "issues/001%20About.rst"},
		{in: "007 a_b-c~d.rst", want: "007%20a_b-c~d.rst"},
		{in: "010 Zürich:&=.rst", want: "010%20Z%C3%BCrich%3A%26%3D.rst"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := Quote(tc.in); got != tc.want {
			t.Fatalf("Quote(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestUnderlineCountsRunes(t *testing.T) {
	if got := Underline("Zürich", '='); got != "======" {
		t.Fatalf("expected 6 underline characters, got %q", got)
	}
}

func TestTargetLine(t *testing.T) {
	if got := TargetLine("SECoP Issue 3: Foo", "issues/003%20Foo.rst"); got != ".. _`SECoP Issue 3: Foo`: issues/003%20Foo.rst" {
		t.Fatalf("unexpected target line %q", got)
	}
	if got := TargetLine("SECoP Issue 3", ""); got != ".. _`SECoP Issue 3`:" {
		t.Fatalf("unexpected chained target line %q", got)
	}
}
