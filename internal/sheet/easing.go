package sheet

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Curve maps normalised time in [0,1] to normalised progress. Curve(0) is 0
// and Curve(1) is 1.
type Curve func(t float64) float64

// Bezier is a CSS-style cubic-bezier timing function with fixed end points
// (0,0) and (1,1).
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

func (b Bezier) Validate() error {
	if b.X1 < 0 || b.X1 > 1 || b.X2 < 0 || b.X2 > 1 {
		return fmt.Errorf("%w: bezier x control points must be within [0,1], got %v", errInvalidOption, b)
	}
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bezier control points must be finite", errInvalidOption)
		}
	}
	return nil
}

func (b Bezier) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return "cubic-bezier(" + f(b.X1) + ", " + f(b.Y1) + ", " + f(b.X2) + ", " + f(b.Y2) + ")"
}

// Curve returns the timing function. x(t) is inverted with Newton's method,
// falling back to bisection where the slope is too flat.
func (b Bezier) Curve() Curve {
	cx := 3 * b.X1
	bx := 3*(b.X2-b.X1) - cx
	ax := 1 - cx - bx
	cy := 3 * b.Y1
	by := 3*(b.Y2-b.Y1) - cy
	ay := 1 - cy - by

	sampleX := func(t float64) float64 { return ((ax*t+bx)*t + cx) * t }
	sampleY := func(t float64) float64 { return ((ay*t+by)*t + cy) * t }
	slopeX := func(t float64) float64 { return (3*ax*t+2*bx)*t + cx }

	const epsilon = 1e-7
	solve := func(x float64) float64 {
		t := x
		for i := 0; i < 8; i++ {
			d := sampleX(t) - x
			if math.Abs(d) < epsilon {
				return t
			}
			s := slopeX(t)
			if math.Abs(s) < 1e-6 {
				break
			}
			t -= d / s
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 64 && lo < hi; i++ {
			v := sampleX(t)
			if math.Abs(v-x) < epsilon {
				return t
			}
			if x > v {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return t
	}

	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		return sampleY(solve(t))
	}
}

// SpringCurve steps a harmonica spring from 0 towards 1 at the given frame
// rate. The result is pinned to 1 once the duration has elapsed.
func SpringCurve(frequency, damping float64, frameRate int, duration time.Duration) Curve {
	spring := harmonica.NewSpring(harmonica.FPS(frameRate), frequency, damping)
	frame := time.Second / time.Duration(frameRate)
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		steps := int(math.Round(t * float64(duration) / float64(frame)))
		var pos, vel float64
		for i := 0; i < steps; i++ {
			pos, vel = spring.Update(pos, vel, 1)
		}
		return pos
	}
}

// curve builds the settle curve selected by o.
func (o Options) curve() Curve {
	if o.Easing == EasingSpring {
		rate := o.FrameRate
		if rate <= 0 {
			rate = DefaultFrameRate
		}
		return SpringCurve(o.SpringFrequency, o.SpringDamping, rate, o.SettleDuration)
	}
	return o.Bezier.Curve()
}

// transition describes the settle animation the way a style sheet would.
func (o Options) transition() string {
	ms := o.SettleDuration.Milliseconds()
	if o.Easing == EasingSpring {
		return fmt.Sprintf("transform %dms spring(%g, %g)", ms, o.SpringFrequency, o.SpringDamping)
	}
	return fmt.Sprintf("transform %dms %s", ms, o.Bezier)
}
