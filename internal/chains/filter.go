package chains

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filter narrows a location list by visit status.
type Filter int

const (
	FilterAll Filter = iota
	FilterVisited
	FilterRemaining
)

// Filters lists every filter in tab order.
var Filters = []Filter{FilterAll, FilterVisited, FilterRemaining}

func (f Filter) String() string {
	switch f {
	case FilterVisited:
		return "Visited"
	case FilterRemaining:
		return "Remaining"
	}
	return "All"
}

// Next cycles to the following tab, wrapping around.
func (f Filter) Next() Filter {
	return Filters[(int(f)+1)%len(Filters)]
}

// Visited is the set of visited location ids.
type Visited map[string]bool

// Count returns how many of locs are in v.
func (v Visited) Count(locs []Location) int {
	n := 0
	for _, l := range locs {
		if v[l.ID] {
			n++
		}
	}
	return n
}

// Clone copies v.
func (v Visited) Clone() Visited {
	out := make(Visited, len(v))
	for id, ok := range v {
		if ok {
			out[id] = true
		}
	}
	return out
}

// Match is a location kept by Select, with the rune positions of the query
// within its search text.
type Match struct {
	Location
	Highlights []int
}

// searchSource adapts a location list to fuzzy.Source.
type searchSource []Location

func (s searchSource) String(i int) string { return searchText(s[i]) }
func (s searchSource) Len() int            { return len(s) }

func searchText(l Location) string {
	return l.Name + " " + l.City + " " + l.Address
}

// Select applies the status filter, then fuzzy-matches query against name,
// city and address. With an empty query the chain order is kept; otherwise
// the best matches come first.
func Select(locs []Location, visited Visited, f Filter, query string) []Match {
	kept := make(searchSource, 0, len(locs))
	for _, l := range locs {
		switch f {
		case FilterVisited:
			if !visited[l.ID] {
				continue
			}
		case FilterRemaining:
			if visited[l.ID] {
				continue
			}
		}
		kept = append(kept, l)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(kept))
		for i, l := range kept {
			out[i] = Match{Location: l}
		}
		return out
	}

	found := fuzzy.FindFrom(query, kept)
	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{Location: kept[m.Index], Highlights: m.MatchedIndexes}
	}
	return out
}
