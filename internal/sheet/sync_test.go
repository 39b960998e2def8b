package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSync(max float64) *Synchronizer {
	s := NewSynchronizer(DefaultOptions(), nil)
	s.SetMax(max)
	return s
}

func TestSynchronizerFollowNeedsDragToken(t *testing.T) {
	s := newTestSync(668)
	assert.False(t, s.Follow(100), "render owner must not accept pointer writes")
	assert.Zero(t, s.Offset())

	start := s.Grab(at(0))
	assert.Zero(t, start)
	assert.Equal(t, OwnerDrag, s.Owner())
	assert.True(t, s.Follow(100))
	assert.Equal(t, 100.0, s.Offset())

	s.Follow(-50)
	assert.Zero(t, s.Offset())
	s.Follow(5000)
	assert.Equal(t, 668.0, s.Offset())
	assert.Equal(t, Transform{Offset: 668, Transition: TransitionNone}, s.Transform())
}

func TestSynchronizerRenderSuppressedDuringDrag(t *testing.T) {
	s := newTestSync(668)
	s.Grab(at(0))
	s.Follow(300)
	assert.False(t, s.Sync(261.8))
	assert.Equal(t, 300.0, s.Offset())
}

func TestSynchronizerSettle(t *testing.T) {
	s := newTestSync(668)
	s.Grab(at(0))
	s.Follow(500)

	assert.True(t, s.Settle(668, at(0)))
	assert.Equal(t, OwnerSettle, s.Owner())
	assert.Equal(t, "transform 350ms cubic-bezier(0.32, 0.72, 0, 1)", s.Transform().Transition)

	tr, ok := s.Settling()
	assert.True(t, ok)
	assert.Equal(t, 500.0, tr.From)
	assert.Equal(t, 668.0, tr.To)

	assert.True(t, s.Frame(at(100)))
	mid := s.Offset()
	assert.Greater(t, mid, 500.0)
	assert.Less(t, mid, 668.0)

	assert.False(t, s.Frame(at(350)))
	assert.Equal(t, 668.0, s.Offset())
	assert.Equal(t, OwnerRender, s.Owner())
	assert.False(t, s.Frame(at(400)))
}

func TestSynchronizerSkipsOneSyncAfterSettle(t *testing.T) {
	s := newTestSync(668)
	s.Settle(261.8, at(0))
	s.Frame(at(400))

	assert.False(t, s.Sync(261.8), "first render sync after a settle is skipped")
	assert.False(t, s.skipping())
	assert.True(t, s.Sync(100), "later render syncs write again")
	assert.Equal(t, 100.0, s.Offset())
}

func TestSynchronizerSettleIsIdempotent(t *testing.T) {
	s := newTestSync(668)
	assert.True(t, s.Settle(261.8, at(0)))
	assert.False(t, s.Settle(261.8, at(10)), "already heading there")
	assert.Equal(t, 1, s.Transitions())

	s.Frame(at(500))
	assert.False(t, s.Settle(261.8, at(600)), "already resting there")
	assert.Equal(t, 1, s.Transitions())

	assert.True(t, s.Settle(0, at(700)))
	assert.Equal(t, 2, s.Transitions())
}

func TestSynchronizerInterruptedSettle(t *testing.T) {
	s := newTestSync(668)
	s.Settle(668, at(0))
	s.Frame(at(50))
	mid := s.Offset()

	assert.True(t, s.Settle(0, at(50)))
	tr, _ := s.Settling()
	assert.InDelta(t, mid, tr.From, 1e-9, "new settle starts where the old one was")

	got := s.Grab(at(50))
	assert.InDelta(t, mid, got, 1e-9)
	_, ok := s.Settling()
	assert.False(t, ok, "grab stops the settle")
}

func TestSynchronizerSetMaxClamps(t *testing.T) {
	s := newTestSync(668)
	s.Sync(600)
	s.SetMax(400)
	assert.Equal(t, 400.0, s.Offset())

	s.Settle(350, at(0))
	s.Retarget(900)
	tr, _ := s.Settling()
	assert.Equal(t, 400.0, tr.To)
}

func TestSynchronizerReset(t *testing.T) {
	s := newTestSync(668)
	s.Grab(at(0))
	s.Follow(123)
	s.Reset(261.8)
	assert.Equal(t, OwnerRender, s.Owner())
	assert.Equal(t, 261.8, s.Offset())
	assert.False(t, s.skipping())
}

func TestSynchronizerZeroDuration(t *testing.T) {
	opts := DefaultOptions()
	opts.SettleDuration = 0
	s := NewSynchronizer(opts, nil)
	s.SetMax(668)
	assert.True(t, s.Settle(668, at(0)))
	assert.Equal(t, 668.0, s.Offset())
	assert.Equal(t, OwnerRender, s.Owner())
}
