package renderer

import (
	"time"
)

// ResizeController debounces width changes. A change is applied once no
// further change has been requested for the debounce window; only the last
// requested width is used.
type ResizeController struct {
	rc       *Context
	debounce time.Duration

	// Invoked once a resize has been applied by the bridge.
	repaint func() error

	pending  bool
	width    int
	deadline time.Time

	// Number of region reallocations performed.
	reallocs int
}

// Create a resize controller. The repaint callback is invoked once the
// bridge has applied a resize and must issue a frame regardless of whether
// the camera changed.
func NewResizeController(rc *Context, debounce time.Duration, repaint func() error) *ResizeController {
	return &ResizeController{
		rc:       rc,
		debounce: debounce,
		repaint:  repaint,
	}
}

// Record a width change and restart the debounce window.
func (c *ResizeController) Request(width int, now time.Time) {
	c.pending = true
	c.width = width
	c.deadline = now.Add(c.debounce)
}

// Returns true if a width change is waiting for the debounce window to expire.
func (c *ResizeController) Pending() bool {
	return c.pending
}

// Get the width the viewport will have once pending changes are applied.
func (c *ResizeController) Target() int {
	if c.pending {
		return c.width
	}
	return c.rc.Viewport.Width
}

// Get the number of reallocations performed so far.
func (c *ResizeController) Reallocations() int {
	return c.reallocs
}

// Apply the pending width if the debounce window has expired. Resizes are
// held back until the engine is ready and any previous resize completed.
func (c *ResizeController) Poll(now time.Time) error {
	if !c.pending || now.Before(c.deadline) || !c.rc.ready || c.rc.resizing {
		return nil
	}
	c.pending = false
	return c.fire(c.width)
}

func (c *ResizeController) fire(width int) error {
	rc := c.rc
	vp, err := NewViewport(width, rc.Viewport.Aspect)
	if err != nil {
		logger.Warningf("ignoring width change: %v", err)
		return nil
	}
	if vp == rc.Viewport {
		return nil
	}

	logger.Infof("resizing viewport %s -> %s", rc.Viewport, vp)
	rc.Viewport = vp
	if err = rc.Presenter.Resize(vp.Width, vp.Height); err != nil {
		return err
	}

	rc.resizing = true
	c.reallocs++
	done, err := rc.Bridge.Resize(vp.Width)
	if err != nil {
		return err
	}
	if done {
		return c.complete()
	}
	return nil
}

// Mark the in-progress resize as applied and force a repaint.
func (c *ResizeController) complete() error {
	if !c.rc.resizing {
		return nil
	}
	c.rc.resizing = false
	return c.repaint()
}
