package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a resting position of the panel. States are ordered by increasing
// offset: Full < Half < Collapsed.
type State int

const (
	Full State = iota
	Half
	Collapsed
)

// States lists every state in order, most open first.
var States = [...]State{Full, Half, Collapsed}

var stateNames = [...]string{"full", "half", "collapsed"}

func (s State) String() string {
	if !s.Valid() {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// Valid reports whether s is one of the three known states.
func (s State) Valid() bool {
	return s >= Full && s <= Collapsed
}

// Next returns the next more-collapsed state. Collapsed has no successor and
// returns itself.
func (s State) Next() State {
	if s >= Collapsed {
		return Collapsed
	}
	return s + 1
}

// Prev returns the next more-open state. Full has no predecessor and returns
// itself.
func (s State) Prev() State {
	if s <= Full {
		return Full
	}
	return s - 1
}

// Step moves one state in the direction of dir: positive collapses, negative
// opens, zero stays.
func (s State) Step(dir float64) State {
	switch {
	case dir > 0:
		return s.Next()
	case dir < 0:
		return s.Prev()
	}
	return s
}

// distance is the number of steps between two states.
func (s State) distance(o State) int {
	d := int(s) - int(o)
	if d < 0 {
		return -d
	}
	return d
}

// ParseState parses a state name, case-insensitively.
func ParseState(v string) (State, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Full, fmt.Errorf("unknown panel state %q", v)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid panel state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
