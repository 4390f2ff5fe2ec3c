// Package issue models issue documents: their states, the filename and
// title-line conventions, and the lookup table shared by the index builder
// and the link synchronizer.
package issue

import (
	"errors"
	"fmt"
)

// ErrDuplicateNumber is returned when two issues claim the same number.
var ErrDuplicateNumber = errors.New("duplicate issue number")

// Issue is one accepted issue document.
type Issue struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	ShortTitle string `json:"short_title"`
	State      State  `json:"state"`
	Label      string `json:"label"`
	Filename   string `json:"filename"`
	// Original is the name the file had on disk before the run, when it differs.
	Original string `json:"original,omitempty"`
}

// Table is the read-only result of a scan: accepted issues in filename order,
// indexed by number.
type Table struct {
	issues   []Issue
	byNumber map[int]int
}

func NewTable(issues []Issue) (*Table, error) {
	t := &Table{
		issues:   make([]Issue, 0, len(issues)),
		byNumber: make(map[int]int, len(issues)),
	}
	for _, iss := range issues {
		if _, ok := t.byNumber[iss.Number]; ok {
			return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateNumber, iss.Number, iss.Filename)
		}
		t.byNumber[iss.Number] = len(t.issues)
		t.issues = append(t.issues, iss)
	}
	return t, nil
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.issues)
}

// Issues returns a copy of the accepted issues in filename order.
func (t *Table) Issues() []Issue {
	if t == nil {
		return nil
	}
	out := make([]Issue, len(t.issues))
	copy(out, t.issues)
	return out
}

func (t *Table) Lookup(number int) (Issue, bool) {
	if t == nil {
		return Issue{}, false
	}
	i, ok := t.byNumber[number]
	if !ok {
		return Issue{}, false
	}
	return t.issues[i], true
}
