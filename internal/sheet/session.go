package sheet

import (
	"errors"
	"time"
)

// ErrInvalidState is returned for drag events that do not fit the current
// session: a second pointer-down, or a move or release with no drag open.
var ErrInvalidState = errors.New("sheet: invalid drag state")

// Session is the transient record of one drag.
type Session struct {
	Active        bool
	StartOffset   float64
	StartPosition float64
	StartTime     time.Time
	LastPosition  float64
	LastTime      time.Time
}

// Release summarises a finished drag.
type Release struct {
	// Distance is the pointer travel, positive downwards.
	Distance float64
	// Velocity is Distance per millisecond of drag time.
	Velocity float64
	// EndOffset is where the panel would rest if released in place, before
	// clamping.
	EndOffset float64
}

// Tracker owns at most one open drag session.
type Tracker struct {
	session Session
}

// Active reports whether a drag is open.
func (t *Tracker) Active() bool { return t.session.Active }

// Session returns a copy of the open session.
func (t *Tracker) Session() Session { return t.session }

// Begin opens a session at position. offset is the visual offset the panel
// had when the pointer went down.
func (t *Tracker) Begin(position float64, now time.Time, offset float64) (Session, error) {
	if t.session.Active {
		return t.session, ErrInvalidState
	}
	t.session = Session{
		Active:        true,
		StartOffset:   offset,
		StartPosition: position,
		StartTime:     now,
		LastPosition:  position,
		LastTime:      now,
	}
	return t.session, nil
}

// Update records the latest pointer position.
func (t *Tracker) Update(position float64, now time.Time) (Session, error) {
	if !t.session.Active {
		return t.session, ErrInvalidState
	}
	t.session.LastPosition = position
	t.session.LastTime = now
	return t.session, nil
}

// End closes the session with position as the release point. The session is
// consumed: a new drag needs another Begin.
func (t *Tracker) End(position float64, now time.Time) (Release, error) {
	if !t.session.Active {
		return Release{}, ErrInvalidState
	}
	s := t.session
	t.session = Session{}

	distance := position - s.StartPosition
	elapsed := float64(now.Sub(s.StartTime)) / float64(time.Millisecond)
	if elapsed < 1 {
		elapsed = 1
	}
	return Release{
		Distance:  distance,
		Velocity:  distance / elapsed,
		EndOffset: s.StartOffset + distance,
	}, nil
}

// Cancel ends the session at the last known position.
func (t *Tracker) Cancel(now time.Time) (Release, error) {
	if !t.session.Active {
		return Release{}, ErrInvalidState
	}
	return t.End(t.session.LastPosition, now)
}

// Discard drops the open session without producing a release.
func (t *Tracker) Discard() bool {
	was := t.session.Active
	t.session = Session{}
	return was
}
