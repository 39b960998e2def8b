package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/sheet"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all chaser configuration.
type Config struct {
	Sheet   SheetConfig   `yaml:"sheet"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// SheetConfig configures the bottom sheet. Distances are pixels.
type SheetConfig struct {
	// ReservedTop defaults to one row, the nav bar. Anything taller leaves
	// backdrop rows between the bar and a fully open sheet.
	ReservedTop       float64     `yaml:"reserved_top"`
	CollapsedVisible  float64     `yaml:"collapsed_visible"`
	VelocityThreshold float64     `yaml:"velocity_threshold"` // px per ms
	HalfFraction      float64     `yaml:"half_fraction"`
	SettleDuration    string      `yaml:"settle_duration"`
	Easing            string      `yaml:"easing"` // cubic-bezier, spring
	Bezier            [4]float64  `yaml:"bezier,flow"`
	SpringFrequency   float64     `yaml:"spring_frequency"`
	SpringDamping     float64     `yaml:"spring_damping"`
	FrameRate         int         `yaml:"frame_rate"`
	Initial           sheet.State `yaml:"initial"`

	// CellHeight is how many pixels one terminal row stands for.
	CellHeight float64 `yaml:"cell_height"`
}

// DataConfig configures where chains and visits come from.
type DataConfig struct {
	// Chain is a chain YAML file; empty uses the built-in sample.
	Chain    string `yaml:"chain"`
	Database string `yaml:"database"`
	Watch    bool   `yaml:"watch"`
	// Home is the origin for distances; unset uses the chain's first location.
	Home chains.Point `yaml:"home,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// defaultCellHeight is the pixel height of one terminal row.
const defaultCellHeight = 16

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	o := sheet.DefaultOptions()
	return &Config{
		Sheet: SheetConfig{
			ReservedTop:       defaultCellHeight,
			CollapsedVisible:  o.CollapsedVisible,
			VelocityThreshold: o.VelocityThreshold,
			HalfFraction:      o.HalfFraction,
			SettleDuration:    o.SettleDuration.String(),
			Easing:            string(o.Easing),
			Bezier:            [4]float64{o.Bezier.X1, o.Bezier.Y1, o.Bezier.X2, o.Bezier.Y2},
			SpringFrequency:   o.SpringFrequency,
			SpringDamping:     o.SpringDamping,
			FrameRate:         o.FrameRate,
			Initial:           o.Initial,
			CellHeight:        defaultCellHeight,
		},
		Data: DataConfig{
			Database: "chaser.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "chaser.log",
		},
	}
}

// DefaultPath is where the config lives unless --config says otherwise.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "chaser.yaml"
	}
	return filepath.Join(dir, "chaser", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Write encodes the configuration as YAML to w.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CHASER_RESERVED_TOP"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: CHASER_RESERVED_TOP: %v", ErrInvalid, err)
		}
		c.Sheet.ReservedTop = f
	}
	if v := os.Getenv("CHASER_CELL_HEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: CHASER_CELL_HEIGHT: %v", ErrInvalid, err)
		}
		c.Sheet.CellHeight = f
	}
	if v := os.Getenv("CHASER_DB"); v != "" {
		c.Data.Database = v
	}
	return nil
}

// GetSettleDuration parses the settle duration, falling back to the default.
func (c *Config) GetSettleDuration() time.Duration {
	d, err := time.ParseDuration(c.Sheet.SettleDuration)
	if err != nil {
		return sheet.DefaultSettleDuration
	}
	return d
}

// SheetOptions converts the sheet section into controller options.
func (c *Config) SheetOptions() (sheet.Options, error) {
	d, err := time.ParseDuration(c.Sheet.SettleDuration)
	if err != nil {
		return sheet.Options{}, fmt.Errorf("%w: settle_duration: %v", ErrInvalid, err)
	}
	b := c.Sheet.Bezier
	o := sheet.Options{
		ReservedTop:       c.Sheet.ReservedTop,
		CollapsedVisible:  c.Sheet.CollapsedVisible,
		VelocityThreshold: c.Sheet.VelocityThreshold,
		HalfFraction:      c.Sheet.HalfFraction,
		SettleDuration:    d,
		Easing:            sheet.Easing(c.Sheet.Easing),
		Bezier:            sheet.Bezier{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]},
		SpringFrequency:   c.Sheet.SpringFrequency,
		SpringDamping:     c.Sheet.SpringDamping,
		FrameRate:         c.Sheet.FrameRate,
		Initial:           c.Sheet.Initial,
	}
	if err := o.Validate(); err != nil {
		return sheet.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return o, nil
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.SheetOptions(); err != nil {
		return err
	}
	if c.Sheet.CellHeight <= 0 {
		return fmt.Errorf("%w: cell_height must be positive, got %v", ErrInvalid, c.Sheet.CellHeight)
	}
	if c.Data.Database == "" {
		return fmt.Errorf("%w: data.database is empty", ErrInvalid)
	}

	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("%w: log level %q (valid: %v)", ErrInvalid, c.Logging.Level, ValidLevels)
	}
	return nil
}
