package links

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SampleEnvironment/issuelist/internal/fileutil"
)

const (
	beginWord = "following"
	endWord   = "above"
)

// markerLine matches sentinel lines written by any tool, so blocks left by
// older generators are taken over rather than duplicated.
var markerLine = regexp.MustCompile(`(?m)^\.\. DO NOT TOUCH --- \w* links are automatically updated by [^\n]*(?:\n|$)`)

// Marker returns the sentinel line that opens (begin) or closes the managed
// block.
func Marker(toolID string, begin bool) string {
	word := endWord
	if begin {
		word = beginWord
	}
	return fmt.Sprintf(".. DO NOT TOUCH --- %s links are automatically updated by %s\n", word, toolID)
}

// Block is a document split around its managed regions. Body content between
// markers is never kept; it is regenerated on every run.
type Block struct {
	Head string
	// Tails are the stretches of document following each closed region.
	Tails []string
	// Found is false when the document carries no marker at all.
	Found bool
	// Unterminated is set when the last region has no end marker.
	Unterminated bool
}

// SplitBlock separates content into the part before the first marker and the
// parts following each end marker.
func SplitBlock(content string) Block {
	parts := splitOnMarkers(content)
	if len(parts) == 1 {
		return Block{Head: parts[0]}
	}
	block := Block{Head: parts[0], Found: true}
	if len(parts)%2 == 0 {
		block.Unterminated = true
	}
	for i := 2; i < len(parts); i += 2 {
		block.Tails = append(block.Tails, parts[i])
	}
	return block
}

func splitOnMarkers(content string) []string {
	locs := markerLine.FindAllStringIndex(content, -1)
	parts := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		parts = append(parts, content[prev:loc[0]])
		prev = loc[1]
	}
	return append(parts, content[prev:])
}

// Render joins head, the managed block and the tails back into a document.
func (b Block) Render(toolID, body string) string {
	var sb strings.Builder
	sb.WriteString(b.Head)
	sb.WriteString(Marker(toolID, true))
	sb.WriteString(body)
	sb.WriteString(Marker(toolID, false))
	for _, tail := range b.Tails {
		sb.WriteString(tail)
	}
	return sb.String()
}

// InsertAt places a new managed region at offset pos of a document that has
// none. At the end of a non-empty document the region is separated from the
// text by a blank line.
func InsertAt(content string, pos int) Block {
	if pos < len(content) {
		return Block{Head: content[:pos], Tails: []string{content[pos:]}}
	}
	head := content
	if strings.TrimSpace(head) != "" {
		head = fileutil.EnsureTrailingNewline(head)
		if !strings.HasSuffix(head, "\n\n") {
			head += "\n"
		}
	}
	return Block{Head: head}
}
