// Package chains loads store chains and their locations, and tracks which
// locations have been visited.
package chains

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidChain is returned for chain files that cannot be used.
var ErrInvalidChain = errors.New("chains: invalid chain")

//go:embed sample.yaml
var sampleChain []byte

// Location is a single store of a chain.
type Location struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Address string  `yaml:"address"`
	City    string  `yaml:"city"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
}

// Point returns the location's coordinates.
func (l Location) Point() Point {
	return Point{Lat: l.Lat, Lng: l.Lng}
}

// Chain is a named set of locations to collect.
type Chain struct {
	Slug        string     `yaml:"slug,omitempty"`
	Name        string     `yaml:"chain"`
	Description string     `yaml:"description,omitempty"`
	Website     string     `yaml:"website,omitempty"`
	Locations   []Location `yaml:"locations"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Parse decodes a chain document. A missing slug is derived from the name.
func Parse(data []byte) (*Chain, error) {
	var c Chain
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse chain: %w", err)
	}
	if c.Slug == "" {
		c.Slug = whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(c.Name)), "-")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and parses the chain file at path.
func LoadFile(path string) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Sample returns the built-in demo chain.
func Sample() *Chain {
	c, err := Parse(sampleChain)
	if err != nil {
		panic(fmt.Sprintf("chains: embedded sample is broken: %v", err))
	}
	return c
}

// Validate checks that the chain is named and that every location has a
// unique id and sane coordinates.
func (c *Chain) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing chain name", ErrInvalidChain)
	}
	seen := make(map[string]struct{}, len(c.Locations))
	for i, l := range c.Locations {
		if l.ID == "" {
			return fmt.Errorf("%w: location %d has no id", ErrInvalidChain, i)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate location id %q", ErrInvalidChain, l.ID)
		}
		seen[l.ID] = struct{}{}
		if math.Abs(l.Lat) > 90 || math.Abs(l.Lng) > 180 {
			return fmt.Errorf("%w: location %q is off the map", ErrInvalidChain, l.ID)
		}
	}
	return nil
}

// Location looks up a location by id.
func (c *Chain) Location(id string) (Location, bool) {
	for _, l := range c.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// Progress summarises how much of a chain has been collected.
type Progress struct {
	Visited  int
	Total    int
	Percent  int
	Complete bool
}

// NewProgress rounds visited/total to a whole percentage. An empty chain is
// at zero and never complete.
func NewProgress(visited, total int) Progress {
	p := Progress{Visited: visited, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(visited) / float64(total) * 100))
		p.Complete = visited == total
	}
	return p
}

// Remaining is the number of locations still to visit.
func (p Progress) Remaining() int {
	if p.Visited > p.Total {
		return 0
	}
	return p.Total - p.Visited
}

// Ratio is Percent as a fraction, for progress bars.
func (p Progress) Ratio() float64 {
	return float64(p.Percent) / 100
}
