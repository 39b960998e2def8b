package sheet

import "errors"

// ErrCaptureHeld is returned when a capture is requested while another one is
// still held.
var ErrCaptureHeld = errors.New("sheet: pointer capture already held")

// Capture is the scoped subscription that routes pointer moves and releases
// to the sheet no matter where on screen they land. It is held for exactly
// one drag.
type Capture struct {
	held     bool
	acquired int
}

// Acquire takes the capture. The returned release func is safe to call more
// than once.
func (c *Capture) Acquire() (release func(), err error) {
	if c.held {
		return nil, ErrCaptureHeld
	}
	c.held = true
	c.acquired++
	gen := c.acquired
	return func() {
		if c.held && c.acquired == gen {
			c.held = false
		}
	}, nil
}

// Held reports whether pointer events are currently captured.
func (c *Capture) Held() bool { return c.held }
