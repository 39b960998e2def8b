package sheet

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMounted(t *testing.T, initial State) *Controller {
	t.Helper()
	opts := DefaultOptions()
	opts.Initial = initial
	c, err := New(opts, zap.NewNop())
	require.NoError(t, err)
	c.Resize(800)
	c.Reconcile()
	return c
}

// settle runs frames until the transition finishes.
func settle(t *testing.T, c *Controller, from time.Time) {
	t.Helper()
	now := from
	for i := 0; c.Frame(now); i++ {
		require.Less(t, i, 1000, "settle never finished")
		now = now.Add(16 * time.Millisecond)
	}
}

func TestControllerMount(t *testing.T) {
	c, err := New(DefaultOptions(), nil)
	require.NoError(t, err)
	assert.False(t, c.Mounted())
	assert.False(t, c.Reconcile())

	c.Resize(800)
	assert.True(t, c.Reconcile(), "initial mount asserts the resting offset")
	assert.InDelta(t, 261.8, c.Offset(), 1e-9)
	assert.False(t, c.Reconcile(), "nothing changed since the last render")
}

func TestControllerRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.VelocityThreshold = -1
	_, err := New(opts, nil)
	assert.Error(t, err)
}

func TestControllerScenarioFlickToCollapsed(t *testing.T) {
	c := newMounted(t, Half)

	require.NoError(t, c.PointerDown(400, at(0)))
	assert.True(t, c.Dragging())
	assert.True(t, c.Captured())
	assert.Equal(t, TransitionNone, c.Transform().Transition)

	require.NoError(t, c.PointerMove(550, at(100)))
	assert.InDelta(t, 411.8, c.Offset(), 1e-9)
	assert.False(t, c.Reconcile(), "render path must not write during a drag")

	got, err := c.PointerUp(700, at(200))
	require.NoError(t, err)
	assert.Equal(t, Collapsed, got)
	assert.Equal(t, Collapsed, c.State())
	assert.False(t, c.Dragging())
	assert.False(t, c.Captured())

	tr, ok := c.Settling()
	require.True(t, ok)
	assert.InDelta(t, 561.8, tr.From, 1e-9)
	assert.InDelta(t, 668, tr.To, 1e-9)

	assert.False(t, c.Reconcile(), "the cycle right after a settle is skipped")
	settle(t, c, at(216))
	assert.InDelta(t, 668, c.Offset(), 1e-9)
	assert.False(t, c.Reconcile())
	assert.InDelta(t, 668, c.Offset(), 1e-9)
	assert.Equal(t, 1, c.Transitions())
}

func TestControllerSlowDragSnapsToNearest(t *testing.T) {
	c := newMounted(t, Full)

	require.NoError(t, c.PointerDown(100, at(0)))
	require.NoError(t, c.PointerMove(300, at(1000)))
	got, err := c.PointerUp(366.8, at(2000))
	require.NoError(t, err)
	assert.Equal(t, Half, got, "266.8 is 5px from half")
}

func TestControllerClampInvariant(t *testing.T) {
	c := newMounted(t, Half)
	max := c.Points().Max()
	rng := rand.New(rand.NewSource(42))

	now := at(0)
	for path := 0; path < 100; path++ {
		y := rng.Float64() * 800
		require.NoError(t, c.PointerDown(y, now))
		for step := 0; step < 40; step++ {
			now = now.Add(time.Duration(rng.Intn(30)) * time.Millisecond)
			y += (rng.Float64() - 0.5) * 600
			require.NoError(t, c.PointerMove(y, now))
			off := c.Offset()
			require.GreaterOrEqual(t, off, 0.0)
			require.LessOrEqual(t, off, max)
		}
		_, err := c.PointerUp(y, now)
		require.NoError(t, err)
		c.Reconcile()
		for c.Frame(now) {
			now = now.Add(16 * time.Millisecond)
			off := c.Offset()
			require.GreaterOrEqual(t, off, 0.0)
			require.LessOrEqual(t, off, max)
		}
		assert.InDelta(t, c.Points().Offset(c.State()), c.Offset(), 1e-9)
	}
}

func TestControllerIdempotentSetState(t *testing.T) {
	c := newMounted(t, Full)
	assert.Zero(t, c.Offset())

	assert.True(t, c.SetState(Half, at(0)))
	assert.False(t, c.SetState(Half, at(5)))
	assert.Equal(t, 1, c.Transitions())

	tr, ok := c.Settling()
	require.True(t, ok)
	assert.InDelta(t, 261.8, tr.To, 1e-9)

	c.Reconcile()
	settle(t, c, at(10))
	c.Reconcile()
	assert.InDelta(t, 261.8, c.Offset(), 1e-9)

	assert.False(t, c.SetState(Half, at(1000)))
	assert.Equal(t, 1, c.Transitions())
}

func TestControllerStrayEvents(t *testing.T) {
	c := newMounted(t, Half)

	assert.ErrorIs(t, c.PointerMove(10, at(0)), ErrInvalidState)
	_, err := c.PointerUp(10, at(0))
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = c.PointerCancel(at(0))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, Half, c.State())
	assert.Zero(t, c.Transitions())

	require.NoError(t, c.PointerDown(100, at(0)))
	require.NoError(t, c.PointerMove(150, at(10)))
	assert.ErrorIs(t, c.PointerDown(300, at(20)), ErrInvalidState)
	require.NoError(t, c.PointerMove(160, at(30)))
	assert.InDelta(t, 321.8, c.Offset(), 1e-9, "second pointer-down must not reset the session")
}

func TestControllerPointerDownBeforeMount(t *testing.T) {
	c, err := New(DefaultOptions(), nil)
	require.NoError(t, err)
	assert.NoError(t, c.PointerDown(10, at(0)))
	assert.False(t, c.Dragging())
	assert.False(t, c.Captured())
}

func TestControllerCancelActsLikeRelease(t *testing.T) {
	c := newMounted(t, Half)
	require.NoError(t, c.PointerDown(200, at(0)))
	require.NoError(t, c.PointerMove(600, at(100)))
	got, err := c.PointerCancel(at(150))
	require.NoError(t, err)
	assert.Equal(t, Collapsed, got, "fast downward travel up to the last move")
	assert.False(t, c.Captured())

	require.NoError(t, c.PointerDown(200, at(1000)))
	require.NoError(t, c.PointerMove(240, at(1100)))
	got, err = c.PointerCancel(at(5000))
	require.NoError(t, err)
	assert.Equal(t, Collapsed, got, "slow cancel snaps to nearest from the current offset")
}

func TestControllerResizeDuringDrag(t *testing.T) {
	c := newMounted(t, Half)

	require.NoError(t, c.PointerDown(100, at(0)))
	c.Resize(400)
	require.NoError(t, c.PointerMove(450, at(100)))
	assert.InDelta(t, 611.8, c.Offset(), 1e-9, "drag keeps the geometry it started with")
	assert.InDelta(t, 668, c.Points().Max(), 1e-9)

	got, err := c.PointerUp(450, at(2000))
	require.NoError(t, err)
	assert.Equal(t, Collapsed, got)
	assert.InDelta(t, 268, c.Points().Max(), 1e-9, "new geometry applies once the drag lands")
	tr, ok := c.Settling()
	require.True(t, ok)
	assert.InDelta(t, 268, tr.To, 1e-9)

	settle(t, c, at(2016))
	for i := 0; i < 3; i++ {
		c.Reconcile()
	}
	assert.InDelta(t, 268, c.Offset(), 1e-9)

	assert.True(t, c.SetState(Half, at(3000)))
	assert.InDelta(t, 121.8, c.Points().Offset(Half), 1e-9)
	settle(t, c, at(3016))
	assert.InDelta(t, 121.8, c.Offset(), 1e-9)
}

func TestControllerShrinkDuringDragStaysInBounds(t *testing.T) {
	for _, d := range []time.Duration{DefaultSettleDuration, 0} {
		opts := DefaultOptions()
		opts.SettleDuration = d
		c, err := New(opts, zap.NewNop())
		require.NoError(t, err)
		c.Resize(800)
		c.Reconcile()

		require.NoError(t, c.PointerDown(100, at(0)))
		c.Resize(400)
		_, err = c.PointerUp(800, at(2000))
		require.NoError(t, err)

		settle(t, c, at(2016))
		for i := 0; i < 3; i++ {
			c.Reconcile()
		}
		assert.Equal(t, Collapsed, c.State(), "duration %v", d)
		assert.LessOrEqual(t, c.Offset(), c.Points().Max(), "duration %v", d)
		assert.InDelta(t, 268, c.Offset(), 1e-9, "duration %v", d)
	}
}

func TestControllerResizeAtRest(t *testing.T) {
	c := newMounted(t, Half)
	c.Resize(1000)
	assert.True(t, c.Reconcile())
	assert.InDelta(t, 948*0.35, c.Offset(), 1e-9)
}

func TestControllerResizeAfterSameStateSettle(t *testing.T) {
	c := newMounted(t, Half)
	require.NoError(t, c.PointerDown(300, at(0)))
	require.NoError(t, c.PointerMove(310, at(500)))
	got, err := c.PointerUp(310, at(1000))
	require.NoError(t, err)
	assert.Equal(t, Half, got)

	assert.False(t, c.Reconcile())
	settle(t, c, at(1000))

	c.Resize(1000)
	assert.True(t, c.Reconcile(), "the skip flag is spent on the first cycle only")
	assert.InDelta(t, 948*0.35, c.Offset(), 1e-9)
}

func TestControllerResizeDuringSettle(t *testing.T) {
	c := newMounted(t, Half)
	require.True(t, c.SetState(Collapsed, at(0)))
	c.Frame(at(100))
	c.Resize(600)

	tr, ok := c.Settling()
	require.True(t, ok)
	assert.InDelta(t, 468, tr.To, 1e-9)
	c.Reconcile()
	settle(t, c, at(116))
	assert.InDelta(t, 468, c.Offset(), 1e-9)
}

func TestControllerGrabMidSettle(t *testing.T) {
	c := newMounted(t, Half)
	require.True(t, c.SetState(Full, at(0)))
	c.Frame(at(80))
	mid := c.Offset()
	require.Greater(t, mid, 0.0)

	require.NoError(t, c.PointerDown(300, at(80)))
	assert.InDelta(t, mid, c.Offset(), 1e-9)
	_, ok := c.Settling()
	assert.False(t, ok)
	require.NoError(t, c.PointerMove(310, at(90)))
	assert.InDelta(t, mid+10, c.Offset(), 1e-9)
}

func TestControllerSetStateDuringDragRefused(t *testing.T) {
	c := newMounted(t, Half)
	require.NoError(t, c.PointerDown(300, at(0)))
	assert.False(t, c.SetState(Full, at(10)))
	assert.False(t, c.Toggle(at(10)))
	assert.Equal(t, Half, c.State())
}

func TestControllerToggle(t *testing.T) {
	c := newMounted(t, Full)

	assert.True(t, c.Toggle(at(0)))
	assert.Equal(t, Collapsed, c.State())
	settle(t, c, at(0))

	assert.True(t, c.Toggle(at(1000)))
	assert.Equal(t, Full, c.State(), "reopens to the last open state")

	c.SetState(Half, at(2000))
	c.Toggle(at(2010))
	c.Toggle(at(2020))
	assert.Equal(t, Half, c.State())
}

func TestControllerTeardownMidDrag(t *testing.T) {
	c := newMounted(t, Half)
	var changes int
	c.Store().Subscribe(func(_, _ State) { changes++ })

	require.NoError(t, c.PointerDown(300, at(0)))
	require.NoError(t, c.PointerMove(900, at(50)))
	c.Teardown()

	assert.False(t, c.Dragging())
	assert.False(t, c.Captured())
	assert.Equal(t, Half, c.State())
	assert.Zero(t, changes)
	assert.InDelta(t, 261.8, c.Offset(), 1e-9)
	assert.Zero(t, c.Transitions())

	_, err := c.PointerUp(900, at(60))
	assert.ErrorIs(t, err, ErrInvalidState, "the discarded session cannot be released")
}

func TestControllerDegenerateGeometry(t *testing.T) {
	opts := DefaultOptions()
	c, err := New(opts, nil)
	require.NoError(t, err)
	c.Resize(120)
	c.Reconcile()
	assert.Zero(t, c.Offset())

	require.NoError(t, c.PointerDown(10, at(0)))
	require.NoError(t, c.PointerMove(200, at(10)))
	assert.Zero(t, c.Offset())
	_, err = c.PointerUp(200, at(20))
	require.NoError(t, err)
	settle(t, c, at(20))
	assert.Zero(t, c.Offset())
}

func TestControllerSetStateBeforeMount(t *testing.T) {
	c, err := New(DefaultOptions(), nil)
	require.NoError(t, err)
	assert.True(t, c.SetState(Collapsed, at(0)))
	assert.Zero(t, c.Transitions())

	c.Resize(800)
	assert.True(t, c.Reconcile())
	assert.InDelta(t, 668, c.Offset(), 1e-9)
}
