// Package rst holds the small reStructuredText building blocks shared by the
// index builder and the link synchronizer.
package rst

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes s for use as a link target. Every byte outside
// A-Z a-z 0-9 and "_.-~/" is escaped, so spaces and non-ASCII titles in
// filenames survive the trip through a reST hyperlink target.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}

// Underline returns a section underline of ch as wide as title.
func Underline(title string, ch rune) string {
	return strings.Repeat(string(ch), utf8.RuneCountInString(title))
}

// IsUnderline reports whether line starts like a "=" section underline.
func IsUnderline(line string) bool {
	return strings.HasPrefix(line, "===")
}

// TargetLine renders a hyperlink target definition: .. _`label`: url
func TargetLine(label, url string) string {
	if url == "" {
		return fmt.Sprintf(".. _`%s`:", label)
	}
	return fmt.Sprintf(".. _`%s`: %s", label, url)
}

// Reference renders a hyperlink reference to label: `label`_
func Reference(label string) string {
	return "`" + label + "`_"
}
