package issue

import (
	"fmt"
	"strings"
)

// State is the lifecycle state declared in an issue's title line.
type State int

const (
	StateClosed State = iota
	StateUnderDiscussion
	StateUnspecified
	StateProposed
	StateFinalizing
)

var stateNames = map[State]string{
	StateClosed:          "closed",
	StateUnderDiscussion: "under discussion",
	StateUnspecified:     "unspecified",
	StateProposed:        "proposed",
	StateFinalizing:      "finalizing",
}

var stateMarkers = map[State]string{
	StateClosed:          `\`,
	StateUnderDiscussion: "d",
	StateUnspecified:     "u",
	StateProposed:        "p",
	StateFinalizing:      "f",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Marker returns the single character shown for s in the summary table.
func (s State) Marker() string {
	if marker, ok := stateMarkers[s]; ok {
		return marker
	}
	return "?"
}

func (s State) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("unknown issue state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, ok := ParseState(string(text))
	if !ok {
		return fmt.Errorf("unknown issue state %q", string(text))
	}
	*s = parsed
	return nil
}

// ParseState maps a state name as written in a title line to a State.
// Matching is exact: "Proposed" is not a recognized state.
func ParseState(name string) (State, bool) {
	for state, stateName := range stateNames {
		if stateName == name {
			return state, true
		}
	}
	return 0, false
}

// StateNames lists the recognized state names in declaration order.
func StateNames() []string {
	names := make([]string, 0, len(stateNames))
	for s := StateClosed; s <= StateFinalizing; s++ {
		names = append(names, stateNames[s])
	}
	return names
}

func describeStates() string {
	return strings.Join(StateNames(), ", ")
}
