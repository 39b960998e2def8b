package sheet

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Owner is the producer currently allowed to write the visual offset.
type Owner int

const (
	// OwnerRender is the declarative path: mount, resize and state
	// reconciliation.
	OwnerRender Owner = iota
	// OwnerDrag follows the pointer while a drag is open.
	OwnerDrag
	// OwnerSettle runs the animated transition to a snap point.
	OwnerSettle
)

func (o Owner) String() string {
	switch o {
	case OwnerRender:
		return "render"
	case OwnerDrag:
		return "drag"
	case OwnerSettle:
		return "settle"
	}
	return "unknown"
}

// TransitionNone is reported while the panel follows the pointer.
const TransitionNone = "none"

// Transition is one scheduled settle animation.
type Transition struct {
	ID       uint64
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Transform is what the host applies to its panel element.
type Transform struct {
	Offset     float64
	Transition string
}

// Synchronizer is the only writer of the visual offset. Exactly one Owner
// holds the write token at a time; writes from anyone else are dropped.
type Synchronizer struct {
	offset float64
	max    float64
	owner  Owner

	// skipSync swallows the first render-path write after a manual settle,
	// which would otherwise re-assert the offset the settle already owns.
	skipSync bool

	settle    Transition
	settling  bool
	seq       uint64
	scheduled int

	curve    Curve
	duration time.Duration
	style    string
	log      *zap.Logger
}

// NewSynchronizer returns a synchronizer at offset zero, owned by the render
// path.
func NewSynchronizer(o Options, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		curve:    o.curve(),
		duration: o.SettleDuration,
		style:    o.transition(),
		log:      log,
	}
}

func (s *Synchronizer) Offset() float64 { return s.offset }
func (s *Synchronizer) Owner() Owner    { return s.owner }

// Transitions counts every settle that was scheduled.
func (s *Synchronizer) Transitions() int { return s.scheduled }

// Settling returns the active transition, if any.
func (s *Synchronizer) Settling() (Transition, bool) {
	return s.settle, s.settling
}

// SetMax updates the upper bound and pulls the offset inside it.
func (s *Synchronizer) SetMax(max float64) {
	if max < 0 {
		max = 0
	}
	s.max = max
	s.offset = clamp(s.offset, 0, s.max)
	if s.settling {
		s.settle.To = clamp(s.settle.To, 0, s.max)
	}
}

// Grab hands the token to the drag. Any running settle stops where it is and
// the offset at that moment is returned as the drag's starting point.
func (s *Synchronizer) Grab(now time.Time) float64 {
	if s.settling {
		s.advance(now)
		s.settling = false
	}
	s.owner = OwnerDrag
	s.skipSync = false
	return s.offset
}

// Follow writes a pointer-driven offset, clamped to [0, max]. It is ignored
// unless the drag holds the token.
func (s *Synchronizer) Follow(v float64) bool {
	if s.owner != OwnerDrag {
		s.log.Debug("follow dropped", zap.Stringer("owner", s.owner))
		return false
	}
	s.offset = clamp(v, 0, s.max)
	return true
}

// Heading reports whether the offset is at, or already animating to, to.
func (s *Synchronizer) Heading(to float64) bool {
	switch s.owner {
	case OwnerSettle:
		return s.settling && approx(s.settle.To, to)
	case OwnerRender:
		return approx(s.offset, to)
	}
	return false
}

// Settle schedules one animated transition from the current offset to to and
// arms the skip flag for the render path. A request that the panel is already
// satisfying schedules nothing.
func (s *Synchronizer) Settle(to float64, now time.Time) bool {
	to = clamp(to, 0, s.max)
	if s.owner != OwnerDrag && s.Heading(to) {
		return false
	}
	if s.settling {
		s.advance(now)
	}
	s.seq++
	s.scheduled++
	s.settle = Transition{
		ID:       s.seq,
		From:     s.offset,
		To:       to,
		Start:    now,
		Duration: s.duration,
	}
	s.settling = true
	s.owner = OwnerSettle
	s.skipSync = true
	s.log.Debug("settle scheduled",
		zap.Uint64("id", s.seq),
		zap.Float64("from", s.offset),
		zap.Float64("to", to))
	if s.duration <= 0 {
		s.finish()
	}
	return true
}

// Retarget moves the destination of a running settle, used when the geometry
// changes mid-animation.
func (s *Synchronizer) Retarget(to float64) {
	if !s.settling {
		return
	}
	s.settle.To = clamp(to, 0, s.max)
}

// Frame advances the running settle to now and reports whether it is still
// running.
func (s *Synchronizer) Frame(now time.Time) bool {
	if !s.settling {
		return false
	}
	s.advance(now)
	return s.settling
}

func (s *Synchronizer) advance(now time.Time) {
	t := s.settle
	elapsed := now.Sub(t.Start)
	if elapsed >= t.Duration {
		s.finish()
		return
	}
	p := 0.0
	if elapsed > 0 {
		p = s.curve(float64(elapsed) / float64(t.Duration))
	}
	s.offset = clamp(t.From+(t.To-t.From)*p, 0, s.max)
}

func (s *Synchronizer) finish() {
	s.offset = clamp(s.settle.To, 0, s.max)
	s.settling = false
	s.owner = OwnerRender
}

// Sync is the render path's write. It is dropped while a drag or settle holds
// the token, and once right after a manual settle.
func (s *Synchronizer) Sync(to float64) bool {
	if s.skipSync {
		s.skipSync = false
		s.log.Debug("render sync skipped after settle", zap.Float64("to", to))
		return false
	}
	if s.owner != OwnerRender {
		s.log.Debug("render sync suppressed", zap.Stringer("owner", s.owner))
		return false
	}
	to = clamp(to, 0, s.max)
	if approx(s.offset, to) {
		return false
	}
	s.offset = to
	return true
}

func (s *Synchronizer) skipping() bool { return s.skipSync }

// Reset returns the token to the render path and places the offset at to
// without animating.
func (s *Synchronizer) Reset(to float64) {
	s.settling = false
	s.skipSync = false
	s.owner = OwnerRender
	s.offset = clamp(to, 0, s.max)
}

// Transform reports the offset and the transition the host should apply.
func (s *Synchronizer) Transform() Transform {
	if s.owner == OwnerDrag {
		return Transform{Offset: s.offset, Transition: TransitionNone}
	}
	return Transform{Offset: s.offset, Transition: s.style}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= offsetEpsilon
}
