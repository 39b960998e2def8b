// Package sheet implements a drag-driven bottom sheet with three snap points.
//
// The Controller follows a single vertical pointer drag, decides on release
// which of Full, Half or Collapsed to rest at, and animates there. It knows
// nothing about the host toolkit: positions are plain pixel values and time
// is passed in by the caller.
package sheet

import (
	"time"

	"go.uber.org/zap"
)

// Controller composes the geometry, drag tracker, decision rule, transform
// synchronizer and state store. It is not safe for concurrent use; the host
// calls it from its single UI loop.
type Controller struct {
	opts    Options
	log     *zap.Logger
	store   *Store
	tracker Tracker
	sync    *Synchronizer
	capture Capture
	release func()

	geometry Geometry
	points   SnapPoints
	mounted  bool
	// stale is set when the viewport changed during a drag; the new geometry
	// is resolved when the drag lands.
	stale bool

	// drag is the geometry captured when the open drag began.
	drag SnapPoints
	from State

	reconciled bool
	rendered   State
	renderedAt float64

	lastOpen State
}

// New returns a controller in opts.Initial. It stays inert until the first
// Resize tells it how tall the viewport is.
func New(opts Options, log *zap.Logger) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		opts:     opts,
		log:      log,
		store:    NewStore(opts.Initial),
		sync:     NewSynchronizer(opts, log),
		lastOpen: Half,
	}
	if opts.Initial != Collapsed {
		c.lastOpen = opts.Initial
	}
	c.store.Subscribe(func(_, to State) {
		if to != Collapsed {
			c.lastOpen = to
		}
	})
	return c, nil
}

func (c *Controller) Options() Options   { return c.opts }
func (c *Controller) Store() *Store      { return c.store }
func (c *Controller) State() State       { return c.store.State() }
func (c *Controller) Dragging() bool     { return c.tracker.Active() }
func (c *Controller) Offset() float64    { return c.sync.Offset() }
func (c *Controller) Points() SnapPoints { return c.points }
func (c *Controller) Geometry() Geometry { return c.geometry }
func (c *Controller) Mounted() bool      { return c.mounted }

// Transform is the live transform for the host's panel element.
func (c *Controller) Transform() Transform { return c.sync.Transform() }

// Settling returns the running settle transition, if any.
func (c *Controller) Settling() (Transition, bool) { return c.sync.Settling() }

// Transitions counts settles scheduled so far.
func (c *Controller) Transitions() int { return c.sync.Transitions() }

// Captured reports whether pointer events are routed to the sheet.
func (c *Controller) Captured() bool { return c.capture.Held() }

// Resize records a new viewport height. During a drag the drag keeps its
// captured geometry and the new one is applied when it lands.
func (c *Controller) Resize(viewportHeight float64) {
	c.geometry = Geometry{ViewportHeight: viewportHeight, ReservedTop: c.opts.ReservedTop}
	if c.tracker.Active() {
		c.stale = true
		c.log.Debug("resize during drag deferred", zap.Float64("viewport", viewportHeight))
		return
	}
	c.resolve()
	if _, ok := c.sync.Settling(); ok {
		c.sync.Retarget(c.points.Offset(c.store.State()))
	}
}

func (c *Controller) resolve() {
	c.points = Resolve(c.geometry, c.opts)
	c.stale = false
	c.mounted = c.geometry.ViewportHeight > 0
	if c.points.Degenerate() && c.mounted {
		c.log.Debug("degenerate geometry, panel pinned open",
			zap.Float64("panel_height", c.geometry.PanelHeight()),
			zap.Float64("collapsed_visible", c.opts.CollapsedVisible))
	}
	c.sync.SetMax(c.points.Max())
}

// PointerDown opens a drag at position y. Presses before the first Resize are
// ignored.
func (c *Controller) PointerDown(y float64, now time.Time) error {
	if !c.mounted {
		c.log.Debug("pointer down before mount ignored")
		return nil
	}
	if c.tracker.Active() {
		c.log.Debug("pointer down during drag discarded", zap.Error(ErrInvalidState))
		return ErrInvalidState
	}
	if c.stale {
		c.resolve()
	}
	release, err := c.capture.Acquire()
	if err != nil {
		c.log.Warn("pointer capture", zap.Error(err))
		return err
	}
	start := c.sync.Grab(now)
	if _, err := c.tracker.Begin(y, now, start); err != nil {
		release()
		return err
	}
	c.release = release
	c.drag = c.points
	c.from = c.store.State()
	c.log.Debug("drag started", zap.Float64("y", y), zap.Float64("offset", start), zap.Stringer("state", c.from))
	return nil
}

// PointerMove follows the pointer to y. The offset is clamped on every move.
func (c *Controller) PointerMove(y float64, now time.Time) error {
	s, err := c.tracker.Update(y, now)
	if err != nil {
		c.log.Debug("pointer move without drag discarded", zap.Error(err))
		return err
	}
	c.sync.Follow(c.drag.Clamp(s.StartOffset + (y - s.StartPosition)))
	return nil
}

// PointerUp releases the drag at y, settles to the decided snap point and
// commits its state.
func (c *Controller) PointerUp(y float64, now time.Time) (State, error) {
	r, err := c.tracker.End(y, now)
	if err != nil {
		c.log.Debug("pointer up without drag discarded", zap.Error(err))
		return c.store.State(), err
	}
	return c.land(r, now), nil
}

// PointerCancel ends the drag at its last known position, exactly like a
// release there.
func (c *Controller) PointerCancel(now time.Time) (State, error) {
	r, err := c.tracker.Cancel(now)
	if err != nil {
		c.log.Debug("pointer cancel without drag discarded", zap.Error(err))
		return c.store.State(), err
	}
	return c.land(r, now), nil
}

func (c *Controller) land(r Release, now time.Time) State {
	c.dropCapture()
	c.sync.Follow(c.drag.Clamp(r.EndOffset))
	target := Decide(r, c.from, c.drag, c.opts.VelocityThreshold)
	c.log.Debug("drag released",
		zap.Float64("distance", r.Distance),
		zap.Float64("velocity", r.Velocity),
		zap.Float64("end_offset", r.EndOffset),
		zap.Stringer("from", c.from),
		zap.Stringer("to", target.State))
	c.sync.Settle(target.Offset, now)
	c.store.Set(target.State)
	if c.stale {
		// the viewport changed while the drag was open
		c.resolve()
		if _, ok := c.sync.Settling(); ok {
			c.sync.Retarget(c.points.Offset(target.State))
		} else {
			c.sync.Reset(c.points.Offset(target.State))
		}
	}
	return target.State
}

func (c *Controller) dropCapture() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// SetState is the external command path, for buttons and keys. Asking for
// the state the panel already rests at or is settling to does nothing. It is
// refused while a drag is open.
func (c *Controller) SetState(s State, now time.Time) bool {
	if !s.Valid() {
		return false
	}
	if c.tracker.Active() {
		c.log.Debug("set state during drag discarded", zap.Stringer("state", s), zap.Error(ErrInvalidState))
		return false
	}
	if !c.mounted {
		return c.store.Set(s)
	}
	if c.stale {
		c.resolve()
	}
	target := c.points.Offset(s)
	if s == c.store.State() && c.sync.Heading(target) {
		return false
	}
	c.sync.Settle(target, now)
	c.store.Set(s)
	return true
}

// Toggle collapses an open panel, or reopens a collapsed one to the last open
// state.
func (c *Controller) Toggle(now time.Time) bool {
	if c.store.State() == Collapsed {
		return c.SetState(c.lastOpen, now)
	}
	return c.SetState(Collapsed, now)
}

// Frame advances the settle animation and reports whether another frame is
// needed.
func (c *Controller) Frame(now time.Time) bool {
	return c.sync.Frame(now)
}

// Reconcile is the declarative render path. The host calls it after every
// update; it asserts the committed state's offset whenever the state or the
// geometry changed since the last call, subject to the synchronizer's
// ownership rules.
func (c *Controller) Reconcile() bool {
	if !c.mounted {
		return false
	}
	state := c.store.State()
	target := c.points.Offset(state)
	changed := !c.reconciled || state != c.rendered || !approx(target, c.renderedAt)
	if !changed && !c.sync.skipping() {
		return false
	}
	c.reconciled = true
	c.rendered = state
	c.renderedAt = target
	return c.sync.Sync(target)
}

// Teardown releases the pointer capture and drops an open drag without
// committing anything.
func (c *Controller) Teardown() {
	if c.tracker.Discard() {
		c.log.Debug("drag discarded on teardown")
	}
	c.dropCapture()
	c.sync.Reset(c.points.Offset(c.store.State()))
}
