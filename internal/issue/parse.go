package issue

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/rst"
	"golang.org/x/text/unicode/norm"
)

// ErrNotIssueFile is returned by ParseFilename for names outside the
// "<3-digit number> <title><ext>" convention.
var ErrNotIssueFile = errors.New("not an issue file")

// ParseError describes why an issue file's header was rejected.
type ParseError struct {
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

// Header is the structured content of an issue's title line.
type Header struct {
	Number int
	Title  string
	State  State
}

var properName = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_ \-]+`)

// Parser recognizes issue filenames and title lines for one label prefix
// and file extension.
type Parser struct {
	prefix    string
	ext       string
	filename  *regexp.Regexp
	title     *regexp.Regexp
	reference *regexp.Regexp
}

func NewParser(prefix, ext string) *Parser {
	quoted := regexp.QuoteMeta(prefix)
	return &Parser{
		prefix:    prefix,
		ext:       ext,
		filename:  regexp.MustCompile(`^(\d{3}) (.+)` + regexp.QuoteMeta(ext) + `$`),
		title:     regexp.MustCompile(`^` + quoted + ` Issue (\d+): (.*)\(([^)]*)\)$`),
		reference: regexp.MustCompile(`^` + quoted + ` Issue (\d+)`),
	}
}

func (p *Parser) Prefix() string    { return p.prefix }
func (p *Parser) Extension() string { return p.ext }

// ParseFilename extracts the issue number and free-text title from name.
func (p *Parser) ParseFilename(name string) (int, string, error) {
	m := p.filename.FindStringSubmatch(name)
	if m == nil {
		return 0, "", ErrNotIssueFile
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", ErrNotIssueFile
	}
	return number, m[2], nil
}

// ParseTitle parses "<prefix> Issue <n>: <title> (<state>)".
func (p *Parser) ParseTitle(line string) (Header, error) {
	trimmed := strings.TrimSpace(line)
	m := p.title.FindStringSubmatch(trimmed)
	if m == nil {
		return Header{}, &ParseError{Reason: "title does not match \"" + p.prefix + " Issue <number>: <title> (<state>)\"", Line: line}
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return Header{}, &ParseError{Reason: "invalid issue number", Line: line}
	}
	state, ok := ParseState(m[3])
	if !ok {
		return Header{}, &ParseError{
			Reason: fmt.Sprintf("unrecognized state %q (expected one of: %s)", m[3], describeStates()),
			Line:   line,
		}
	}
	return Header{Number: number, Title: strings.TrimSpace(m[2]), State: state}, nil
}

// ParseHeader validates the first two lines of an issue file whose filename
// carries number.
func (p *Parser) ParseHeader(lines []string, number int) (Header, error) {
	if len(lines) < 2 {
		return Header{}, &ParseError{Reason: "file has fewer than two lines"}
	}
	header, err := p.ParseTitle(lines[0])
	if err != nil {
		return Header{}, err
	}
	if header.Number != number {
		return Header{}, &ParseError{
			Reason: fmt.Sprintf("title number %d does not match filename number %d", header.Number, number),
			Line:   lines[0],
		}
	}
	if !rst.IsUnderline(lines[1]) {
		return Header{}, &ParseError{Reason: "title is not underlined with \"=\"", Line: lines[1]}
	}
	return header, nil
}

// Label returns the canonical cross-reference label of an issue.
func (p *Parser) Label(number int, title string) string {
	return fmt.Sprintf("%s Issue %d: %s", p.prefix, number, title)
}

// TitleLine returns the canonical first line of an issue file.
func (p *Parser) TitleLine(number int, title string, state State) string {
	return fmt.Sprintf("%s (%s)", p.Label(number, title), state)
}

// Filename returns the canonical filename of an issue.
func (p *Parser) Filename(number int, title string) string {
	return fmt.Sprintf("%03d %s%s", number, NormalizeTitle(title), p.ext)
}

// ReferenceNumber returns the issue number a reference label points at.
func (p *Parser) ReferenceNumber(label string) (int, bool) {
	m := p.reference.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return number, true
}

// NormalizeTitle reduces a title to the characters allowed in filenames.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(properName.ReplaceAllString(title, " ")), " ")
}

// SameText compares two strings after NFC normalization. Filenames read from
// some filesystems come back decomposed.
func SameText(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}
