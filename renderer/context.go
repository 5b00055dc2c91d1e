package renderer

import (
	"fmt"

	"github.com/achilleasa/raylive/bridge"
	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/present"
	"github.com/achilleasa/raylive/scene"
)

// Viewport holds the frame dimensions. The height is always derived from
// the width and the aspect ratio.
type Viewport struct {
	Width  int
	Height int
	Aspect scene.Aspect
}

// Create a viewport for a frame width.
func NewViewport(width int, aspect scene.Aspect) (Viewport, error) {
	if aspect.W <= 0 || aspect.H <= 0 {
		return Viewport{}, fmt.Errorf("%w: aspect %s", ErrInvalidViewport, aspect)
	}
	if width <= 0 || width > engine.MaxDimension {
		return Viewport{}, fmt.Errorf("%w: width %d", ErrInvalidViewport, width)
	}
	height := aspect.Height(width)
	if height <= 0 || height > engine.MaxDimension {
		return Viewport{}, fmt.Errorf("%w: width %d yields height %d", ErrInvalidViewport, width, height)
	}
	return Viewport{Width: width, Height: height, Aspect: aspect}, nil
}

// Get the size in bytes of an RGBA frame for this viewport.
func (v Viewport) Size() int {
	return v.Width * v.Height * 4
}

// Returns true if a frame with the given dimensions belongs to this viewport.
func (v Viewport) Matches(width, height int) bool {
	return v.Width == width && v.Height == height
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// Context holds the state owned by a render session. It is only accessed
// from the go-routine running the scheduler.
type Context struct {
	Camera    scene.Camera
	Viewport  Viewport
	Input     *input.Aggregator
	Bridge    bridge.Bridge
	Presenter *present.Presenter

	// Set once the bridge reports that the engine is initialized.
	ready bool

	// Set while a request is outstanding.
	inFlight bool

	// Set between a resize firing and the bridge acknowledging it. No
	// requests are issued until the resize repaint.
	resizing bool

	// Set when the next tick must issue a frame even if the camera did not
	// move.
	invalidated bool

	// Number of the last issued request.
	seq uint64

	stats SessionStats
}

// Create a render context.
func NewContext(cam scene.Camera, width int, agg *input.Aggregator, br bridge.Bridge, presenter *present.Presenter) (*Context, error) {
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	vp, err := NewViewport(width, cam.Aspect)
	if err != nil {
		return nil, err
	}
	return &Context{
		Camera:    cam,
		Viewport:  vp,
		Input:     agg,
		Bridge:    br,
		Presenter: presenter,
	}, nil
}

// Force the next tick to issue a frame.
func (c *Context) Invalidate() {
	c.invalidated = true
}

// Returns true once the engine is initialized.
func (c *Context) Ready() bool {
	return c.ready
}

// Returns true while a frame request is outstanding.
func (c *Context) InFlight() bool {
	return c.inFlight
}

// Returns true while a resize is being applied.
func (c *Context) Resizing() bool {
	return c.resizing
}

// Get the session statistics.
func (c *Context) Stats() SessionStats {
	return c.stats
}
