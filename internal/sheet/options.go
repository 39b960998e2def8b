package sheet

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Defaults for Options. Distances are in pixels, velocities in pixels per
// millisecond.
const (
	DefaultReservedTop       = 52.0
	DefaultCollapsedVisible  = 80.0
	DefaultVelocityThreshold = 0.4
	DefaultHalfFraction      = 0.35
	DefaultSettleDuration    = 350 * time.Millisecond
	DefaultSpringFrequency   = 18.0
	DefaultSpringDamping     = 1.0
	DefaultFrameRate         = 60
)

// DefaultBezier is the ease-out curve used for settling.
var DefaultBezier = Bezier{X1: 0.32, Y1: 0.72, X2: 0, Y2: 1}

// Easing selects the settle curve.
type Easing string

const (
	EasingCubicBezier Easing = "cubic-bezier"
	EasingSpring      Easing = "spring"
)

// Options holds every tunable of the controller.
type Options struct {
	// ReservedTop is the height above the panel that it never covers, such as
	// a navigation bar.
	ReservedTop float64
	// CollapsedVisible is how much of the panel stays on screen when
	// collapsed.
	CollapsedVisible float64
	// VelocityThreshold is the release speed above which a drag counts as a
	// flick.
	VelocityThreshold float64
	// HalfFraction is the share of the panel height hidden in the Half state.
	HalfFraction float64

	SettleDuration  time.Duration
	Easing          Easing
	Bezier          Bezier
	SpringFrequency float64
	SpringDamping   float64
	FrameRate       int

	// Initial is the state before any drag or command.
	Initial State
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ReservedTop:       DefaultReservedTop,
		CollapsedVisible:  DefaultCollapsedVisible,
		VelocityThreshold: DefaultVelocityThreshold,
		HalfFraction:      DefaultHalfFraction,
		SettleDuration:    DefaultSettleDuration,
		Easing:            EasingCubicBezier,
		Bezier:            DefaultBezier,
		SpringFrequency:   DefaultSpringFrequency,
		SpringDamping:     DefaultSpringDamping,
		FrameRate:         DefaultFrameRate,
		Initial:           Half,
	}
}

var errInvalidOption = errors.New("invalid sheet option")

// Validate rejects values the controller cannot work with.
func (o Options) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", errInvalidOption, name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"reserved top", o.ReservedTop},
		{"collapsed visible", o.CollapsedVisible},
		{"velocity threshold", o.VelocityThreshold},
		{"half fraction", o.HalfFraction},
		{"spring frequency", o.SpringFrequency},
		{"spring damping", o.SpringDamping},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	if o.HalfFraction > 1 {
		return fmt.Errorf("%w: half fraction must be at most 1, got %v", errInvalidOption, o.HalfFraction)
	}
	if o.SettleDuration < 0 {
		return fmt.Errorf("%w: settle duration must not be negative", errInvalidOption)
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", errInvalidOption)
	}
	if !o.Initial.Valid() {
		return fmt.Errorf("%w: initial state %v", errInvalidOption, o.Initial)
	}
	switch o.Easing {
	case EasingCubicBezier:
		return o.Bezier.Validate()
	case EasingSpring:
		if o.SpringFrequency == 0 {
			return fmt.Errorf("%w: spring frequency must be positive", errInvalidOption)
		}
	default:
		return fmt.Errorf("%w: unknown easing %q", errInvalidOption, o.Easing)
	}
	return nil
}

// FrameInterval is the time between animation frames.
func (o Options) FrameInterval() time.Duration {
	if o.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(o.FrameRate)
}
