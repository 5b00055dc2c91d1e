package input

import (
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
)

var logger = log.New("input")

// Options configure an Aggregator.
type Options struct {
	// Enable the optional vertical movement keys.
	Vertical bool

	// Bounds for pointer derived rotation.
	Extrema Extrema
}

// The Aggregator folds raw input events into the polled input State and
// converts that state into camera updates once per tick. It is not safe for
// concurrent use; events are fed to it by the tick loop in arrival order.
type Aggregator struct {
	strategy Strategy
	opts     Options
	state    State
	ready    bool
}

// Create an aggregator for a movement strategy.
func NewAggregator(strategy Strategy, opts Options) *Aggregator {
	if opts.Extrema == (Extrema{}) {
		opts.Extrema = DefaultExtrema
	}
	return &Aggregator{
		strategy: strategy,
		opts:     opts,
	}
}

// Mark the engine as initialized. Until then events still update the input
// state but never ask for a repaint.
func (a *Aggregator) SetReady() {
	a.ready = true
}

// Returns true once SetReady has been called.
func (a *Aggregator) Ready() bool {
	return a.ready
}

// Get the active strategy kind.
func (a *Aggregator) Strategy() StrategyKind {
	return a.strategy.Kind()
}

// Get a copy of the current input state.
func (a *Aggregator) State() State {
	return a.state
}

// Returns true if any movement action is held. This is the single source of
// truth for "the user is moving" checks.
func (a *Aggregator) HasActiveMovement() bool {
	return a.state.HasActiveMovement()
}

// Fold an event into the input state. The return value reports whether an
// immediate repaint should be requested: the view changed, the engine is
// ready and no continuous movement is in progress (the tick driven repaint
// would otherwise paint the same change twice).
//
// Movement keys never request a repaint themselves; the camera only moves
// when a tick applies the held keys and that tick paints the result.
func (a *Aggregator) Handle(ev Event) bool {
	switch e := ev.(type) {
	case KeyDown:
		a.setAction(e.Key, true)
		return false
	case KeyUp:
		a.setAction(e.Key, false)
		return false
	case PointerMove, PointerButton, PointerLeave, ToggleMovement:
		changed := a.strategy.HandlePointer(&a.state, ev, a.opts.Extrema)
		return changed && a.ready && !a.state.HasActiveMovement()
	}

	logger.Debugf("ignoring unsupported event %T", ev)
	return false
}

// Apply one tick of movement to the camera.
func (a *Aggregator) ApplyTick(cam scene.Camera) scene.Camera {
	return a.strategy.ApplyTick(a.state, cam)
}

func (a *Aggregator) setAction(key string, pressed bool) bool {
	action, ok := ActionForKey(key)
	if !ok || (action.vertical() && !a.opts.Vertical) {
		return false
	}
	if a.state.Pressed[action] == pressed {
		return false
	}
	a.state.Pressed[action] = pressed
	return true
}
