package renderer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/achilleasa/raylive/bridge"
	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
)

var logger = log.New("renderer")

// The Scheduler runs the tick loop that turns input into frame requests and
// frame results into presented images. All of its methods except Post must
// be called from the same go-routine.
type Scheduler struct {
	rc     *Context
	opts   Options
	queue  *eventQueue
	resize *ResizeController

	snapshots int
	quit      bool
	faultErr  error
}

// Create a scheduler for a render context.
func NewScheduler(rc *Context, opts Options) *Scheduler {
	s := &Scheduler{
		rc:    rc,
		opts:  opts.withDefaults(),
		queue: newEventQueue(),
	}
	s.resize = NewResizeController(rc, s.opts.ResizeDebounce, s.forceRepaint)
	return s
}

// Queue an input event. It is safe to call Post from any go-routine; events
// are processed in the order they were posted.
func (s *Scheduler) Post(ev input.Event) {
	s.queue.push(ev)
}

// Get the render context.
func (s *Scheduler) Context() *Context {
	return s.rc
}

// Get the resize controller.
func (s *Scheduler) Resizer() *ResizeController {
	return s.resize
}

// Get the session statistics.
func (s *Scheduler) Stats() SessionStats {
	return s.rc.stats
}

// Get the engine statistics for the last rendered frame.
func (s *Scheduler) FrameStats() FrameStats {
	_, elapsed, _ := s.rc.Presenter.LastFrame()
	return FrameStats{
		Tracers:    s.rc.Bridge.Stats(),
		RenderTime: elapsed,
	}
}

// Returns true once the loop should stop: a quit was requested, a fault
// occurred or the frame limit was reached.
func (s *Scheduler) Done() bool {
	if s.quit || s.faultErr != nil {
		return true
	}
	return s.opts.MaxFrames > 0 && s.rc.stats.Presented >= s.opts.MaxFrames
}

// Start the bridge and run the tick loop until the context is cancelled,
// a quit is requested, the surface closes or an engine fault occurs.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.rc.Bridge.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()

	events := s.rc.Bridge.Events()
	for !s.Done() {
		if s.opts.Poller != nil {
			s.opts.Poller.PollEvents()
			if s.opts.Poller.ShouldClose() {
				logger.Info("surface closed")
				return nil
			}
		}

		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			err = s.Tick(now)
		case <-s.queue.notify:
			err = s.drain(time.Now())
		case msg, ok := <-events:
			if !ok {
				return s.fault(ErrBridgeClosed)
			}
			err = s.HandleMessage(msg)
		}
		if err != nil {
			return err
		}
	}

	return s.faultErr
}

// Run one tick: process queued input, apply pending resizes, move the
// camera for held keys and issue a frame if the view changed or was
// invalidated.
func (s *Scheduler) Tick(now time.Time) error {
	if err := s.drain(now); err != nil {
		return err
	}
	if err := s.resize.Poll(now); err != nil {
		return s.fault(err)
	}

	rc := s.rc
	if !rc.ready || rc.resizing {
		return nil
	}

	cam := rc.Input.ApplyTick(rc.Camera)
	if cam != rc.Camera {
		rc.Camera = cam
		rc.invalidated = true
	}
	if !rc.invalidated || rc.inFlight {
		return nil
	}
	return s.issue()
}

// Handle a message delivered by the bridge.
func (s *Scheduler) HandleMessage(msg bridge.Message) error {
	rc := s.rc
	switch msg.Kind {
	case bridge.MsgReady:
		rc.ready = true
		rc.Input.SetReady()
		rc.invalidated = true
		return s.repaint()
	case bridge.MsgResponse:
		return s.handleResult(msg.Result)
	case bridge.MsgResized:
		logger.Debugf("bridge applied resize to %dx%d", msg.Width, msg.Height)
		return s.resize.complete()
	case bridge.MsgFault:
		return s.fault(msg.Err)
	}

	logger.Warningf("ignoring unknown bridge message %s", msg.Kind)
	return nil
}

func (s *Scheduler) drain(now time.Time) error {
	for _, ev := range s.queue.drain() {
		if err := s.handleEvent(ev, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) handleEvent(ev input.Event, now time.Time) error {
	rc := s.rc
	switch e := ev.(type) {
	case input.ControlChange:
		return s.applyControl(e, now)
	case input.Snapshot:
		s.snapshot()
		return nil
	case input.Quit:
		logger.Info("quit requested")
		s.quit = true
		return nil
	}

	if !rc.Input.Handle(ev) {
		return nil
	}

	// Only pointer driven state can ask for a repaint and it never does so
	// while keys are held, so applying the strategy here only syncs rotation.
	rc.Camera = rc.Input.ApplyTick(rc.Camera)
	rc.invalidated = true
	return s.repaint()
}

func (s *Scheduler) applyControl(ev input.ControlChange, now time.Time) error {
	rc := s.rc
	switch ev.Control {
	case input.FocalLength:
		value := ev.Value
		if ev.Relative {
			value += float64(rc.Camera.FocalLength)
		}
		if !scene.PositiveFinite(value) || value > math.MaxFloat32 {
			logger.Warningf("ignoring invalid focal length %.2f", value)
			return nil
		}
		rc.Camera.FocalLength = float32(value)
	case input.AntiAlias:
		value := ev.Value
		if ev.Relative {
			value += float64(rc.Camera.AntiAlias)
		}
		if math.IsNaN(value) || value < 0 || value > scene.MaxAntiAlias {
			logger.Warningf("ignoring anti-alias sample count %.0f; expected 0 to %d", value, scene.MaxAntiAlias)
			return nil
		}
		rc.Camera.AntiAlias = uint32(value)
	case input.Width:
		value := ev.Value
		if ev.Relative {
			value += float64(s.resize.Target())
		}
		if math.IsNaN(value) || value <= 0 || value > engine.MaxDimension {
			logger.Warningf("ignoring width %.0f; expected 1 to %d", value, engine.MaxDimension)
			return nil
		}
		s.resize.Request(int(value), now)
		return nil
	default:
		logger.Warningf("ignoring unknown control %s", ev.Control)
		return nil
	}

	rc.invalidated = true
	return s.repaint()
}

// Issue a frame right away unless it is not allowed yet; a skipped repaint
// stays invalidated and is picked up by a later tick.
func (s *Scheduler) repaint() error {
	rc := s.rc
	if !rc.ready || rc.inFlight || rc.resizing || !rc.invalidated {
		return nil
	}
	// A tick will paint the movement anyway
	if rc.Input.HasActiveMovement() {
		return nil
	}
	return s.issue()
}

// Issue a frame bypassing the changed-view check. Used after a resize.
func (s *Scheduler) forceRepaint() error {
	rc := s.rc
	rc.invalidated = true
	if rc.inFlight {
		return nil
	}
	return s.issue()
}

func (s *Scheduler) issue() error {
	rc := s.rc
	rc.seq++
	req := bridge.FrameRequest{
		Seq:    rc.seq,
		Width:  rc.Viewport.Width,
		Height: rc.Viewport.Height,
		Camera: rc.Camera,
	}

	rc.invalidated = false
	rc.inFlight = true
	rc.stats.Issued++
	res, err := rc.Bridge.Issue(req)
	if err != nil {
		rc.inFlight = false
		return s.fault(err)
	}
	if res != nil {
		return s.handleResult(res)
	}
	return nil
}

func (s *Scheduler) handleResult(res *bridge.FrameResult) error {
	rc := s.rc
	rc.inFlight = false
	if res == nil {
		return s.fault(fmt.Errorf("%w: empty response", bridge.ErrProtocol))
	}

	if !rc.Viewport.Matches(res.Width, res.Height) {
		rc.stats.Discarded++
		logger.Debugf("discarding stale frame %d (%dx%d; viewport is %s)", res.Seq, res.Width, res.Height, rc.Viewport)
		return nil
	}

	pixels, err := res.Bytes()
	if err != nil {
		return s.fault(err)
	}
	if _, err = rc.Presenter.Present(pixels, res.Width, res.Height, res.Elapsed); err != nil {
		return s.fault(err)
	}
	rc.stats.recordPresented(res.Elapsed)
	return nil
}

func (s *Scheduler) snapshot() {
	s.snapshots++
	path := fmt.Sprintf(s.opts.SnapshotPattern, s.snapshots)
	if err := s.rc.Presenter.Snapshot(path); err != nil {
		logger.Warningf("snapshot failed: %v", err)
	}
}

// Show the error on the surface and stop the loop. Faults are never retried.
func (s *Scheduler) fault(err error) error {
	if s.faultErr != nil {
		return s.faultErr
	}
	s.rc.Presenter.ShowError(err)
	s.faultErr = fmt.Errorf("%w: %w", ErrEngineFault, err)
	return s.faultErr
}
