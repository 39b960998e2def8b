package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/rileylov/chaser/internal/sheet"
)

// DragHandler turns mouse events into pointer calls on a sheet controller.
// A drag can only start on the handle zone; once it has, the controller holds
// the pointer capture and every motion or release is routed to it, wherever
// on screen it lands.
type DragHandler struct {
	ctrl       *sheet.Controller
	handleID   string
	cellHeight float64
	log        *zap.Logger

	// inHandle reports whether a press hit the drag handle.
	inHandle func(tea.MouseMsg) bool
}

// NewDragHandler creates a drag handler for the zone handleID. cellHeight is
// the number of pixels one terminal row stands for.
func NewDragHandler(ctrl *sheet.Controller, handleID string, cellHeight float64, log *zap.Logger) *DragHandler {
	if log == nil {
		log = zap.NewNop()
	}
	d := &DragHandler{
		ctrl:       ctrl,
		handleID:   handleID,
		cellHeight: cellHeight,
		log:        log,
	}
	d.inHandle = d.zoneHit
	return d
}

func (d *DragHandler) zoneHit(msg tea.MouseMsg) bool {
	z := zone.Get(d.handleID)
	if z == nil {
		// not scanned yet
		d.log.Debug("press before the handle was laid out", zap.String("zone", d.handleID))
		return false
	}
	return z.InBounds(msg)
}

// HandleMouseEvent processes mouse events for drag operations.
// Returns true if the event was handled (consumed), false otherwise.
func (d *DragHandler) HandleMouseEvent(msg tea.MouseMsg, now time.Time) bool {
	y := d.px(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}
		if d.ctrl.Captured() {
			// second pointer while one is down
			if err := d.ctrl.PointerDown(y, now); err != nil {
				d.log.Debug("press swallowed during drag", zap.Int("row", msg.Y), zap.Error(err))
			}
			return true
		}
		if !d.inHandle(msg) {
			return false
		}
		if err := d.ctrl.PointerDown(y, now); err != nil {
			return false
		}
		return d.ctrl.Dragging()
	case tea.MouseActionMotion:
		if !d.ctrl.Captured() {
			return false
		}
		if err := d.ctrl.PointerMove(y, now); err != nil {
			d.log.Debug("motion dropped", zap.Int("row", msg.Y), zap.Error(err))
		}
		return true
	case tea.MouseActionRelease:
		if !d.ctrl.Captured() {
			return false
		}
		if _, err := d.ctrl.PointerUp(y, now); err != nil {
			d.log.Debug("release dropped", zap.Int("row", msg.Y), zap.Error(err))
		}
		return true
	}
	return false
}

// Cancel ends an open drag at its last position, as when the terminal loses
// focus. It reports whether there was a drag to cancel.
func (d *DragHandler) Cancel(now time.Time) bool {
	if !d.ctrl.Dragging() {
		return false
	}
	_, err := d.ctrl.PointerCancel(now)
	return err == nil
}

// IsDragging returns true if currently in a drag operation
func (d *DragHandler) IsDragging() bool {
	return d.ctrl.Dragging()
}

// px converts a terminal row to pixels.
func (d *DragHandler) px(row int) float64 {
	return float64(row) * d.cellHeight
}
