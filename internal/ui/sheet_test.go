package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/sheet"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time           { return c.now }
func (c *testClock) Advance(d time.Duration)  { c.now = c.now.Add(d) }
func (c *testClock) frame(id uint64) frameMsg { return frameMsg{id: id, at: c.now} }

func newTestSheet(t *testing.T) (*Sheet, *testClock) {
	t.Helper()
	ctrl, err := sheet.New(sheet.DefaultOptions(), nil)
	require.NoError(t, err)
	list := newLocationList(nil, chains.Point{}, nil)
	list.SetChain(chains.Sample(), nil)

	s := NewSheet(ctrl, list, 16, 1, nil)
	clock := &testClock{now: epoch}
	s.now = clock.Now
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 50})
	return s, clock
}

func TestSheetMountsAtHalf(t *testing.T) {
	s, _ := newTestSheet(t)
	c := s.Controller()
	assert.True(t, c.Mounted())
	assert.InDelta(t, 261.8, c.Offset(), 1e-9)
	assert.Equal(t, 20, s.PanelTop())
	assert.Equal(t, 49, lipgloss.Height(s.View()))
	assert.Equal(t, 30-sheetChromeRows, s.list.height)
}

func TestSheetKeysSettleWithFrames(t *testing.T) {
	s, clock := newTestSheet(t)

	_, cmd := s.Update(key("3"))
	require.NotNil(t, cmd, "a settle starts the frame clock")
	assert.Equal(t, sheet.Collapsed, s.Controller().State())
	id := s.ticking
	require.NotZero(t, id)

	clock.Advance(100 * time.Millisecond)
	_, cmd = s.Update(clock.frame(id))
	assert.NotNil(t, cmd, "still settling")
	mid := s.Controller().Offset()
	assert.Greater(t, mid, 261.8)

	// frames from an older transition are dropped
	s.Update(clock.frame(id + 7))
	assert.Equal(t, mid, s.Controller().Offset())

	clock.Advance(300 * time.Millisecond)
	_, cmd = s.Update(clock.frame(id))
	assert.Nil(t, cmd)
	assert.Zero(t, s.ticking)
	assert.InDelta(t, 668, s.Controller().Offset(), 1e-9)
	assert.Equal(t, 45, s.PanelTop())
	assert.Equal(t, 5, s.panelRows())
	assert.Equal(t, 49, lipgloss.Height(s.View()))
}

func TestSheetNewTransitionRestartsClock(t *testing.T) {
	s, clock := newTestSheet(t)
	s.Update(key("1"))
	first := s.ticking

	clock.Advance(50 * time.Millisecond)
	s.Update(key("3"))
	second := s.ticking
	assert.NotEqual(t, first, second)

	_, cmd := s.Update(clock.frame(first))
	assert.Nil(t, cmd)
	assert.Equal(t, second, s.ticking)
}

func TestSheetToggle(t *testing.T) {
	s, _ := newTestSheet(t)
	s.Update(key("tab"))
	assert.Equal(t, sheet.Collapsed, s.Controller().State())
	s.Update(key("tab"))
	assert.Equal(t, sheet.Half, s.Controller().State())

	s.Update(setStateMsg{state: sheet.Full})
	assert.Equal(t, sheet.Full, s.Controller().State())
}

func TestSheetBlurCancelsDrag(t *testing.T) {
	s, clock := newTestSheet(t)
	s.drag.inHandle = func(tea.MouseMsg) bool { return true }

	s.Update(mouse(tea.MouseActionPress, 20))
	require.True(t, s.Controller().Dragging())
	assert.Equal(t, sheet.TransitionNone, s.Controller().Transform().Transition)

	clock.Advance(time.Second)
	s.Update(mouse(tea.MouseActionMotion, 22))
	clock.Advance(time.Second)
	s.Update(tea.BlurMsg{})
	assert.False(t, s.Controller().Dragging())
	assert.False(t, s.Controller().Captured())
	assert.Equal(t, sheet.Half, s.Controller().State())
}

func TestSheetEscCancelsDrag(t *testing.T) {
	s, _ := newTestSheet(t)
	s.drag.inHandle = func(tea.MouseMsg) bool { return true }

	s.Update(mouse(tea.MouseActionPress, 20))
	require.True(t, s.Controller().Dragging())
	s.Update(key("3"))
	assert.Equal(t, sheet.Half, s.Controller().State(), "commands wait for the drag")

	s.Update(key("esc"))
	assert.False(t, s.Controller().Dragging())
}

func TestSheetDragFollowsRows(t *testing.T) {
	s, clock := newTestSheet(t)
	s.drag.inHandle = func(msg tea.MouseMsg) bool { return msg.Y == 20 }

	s.Update(mouse(tea.MouseActionPress, 20))
	clock.Advance(50 * time.Millisecond)
	s.Update(mouse(tea.MouseActionMotion, 15))
	assert.InDelta(t, 261.8-80, s.Controller().Offset(), 1e-9)
	assert.Equal(t, 15, s.PanelTop())

	// far above the screen: clamped at fully open
	s.Update(mouse(tea.MouseActionMotion, -40))
	assert.Zero(t, s.Controller().Offset())
	assert.Equal(t, 3, s.PanelTop())
}

func TestSheetSearchKeepsDigits(t *testing.T) {
	s, _ := newTestSheet(t)
	s.Update(key("/"))
	require.True(t, s.list.Searching())

	s.Update(key("1"))
	assert.Equal(t, sheet.Half, s.Controller().State())
	assert.Equal(t, "1", s.list.search.Value())
}

func TestSheetTeardownMidDrag(t *testing.T) {
	s, _ := newTestSheet(t)
	s.drag.inHandle = func(tea.MouseMsg) bool { return true }
	s.Update(mouse(tea.MouseActionPress, 20))
	s.Update(mouse(tea.MouseActionMotion, 40))

	s.Teardown()
	assert.False(t, s.Controller().Dragging())
	assert.Equal(t, sheet.Half, s.Controller().State())
	assert.InDelta(t, 261.8, s.Controller().Offset(), 1e-9)
}
