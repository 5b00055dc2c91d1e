package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/types"
)

type commandKind uint8

const (
	cmdRender commandKind = iota
	cmdResize
)

// renderMessage carries the camera scalars for one frame plus a reference to
// the region the worker must render into.
type renderMessage struct {
	Seq            uint64
	Position       types.Vec3
	Rotation       types.Vec3
	Aspect         scene.Aspect
	FocalLength    float32
	ViewportHeight float32
	AntiAlias      uint32
	Width          int
	Height         int
	Region         []byte
}

type resizeMessage struct {
	Width  int
	Height int
	Region []byte
}

type command struct {
	kind   commandKind
	render renderMessage
	resize resizeMessage
}

// BackgroundBridge renders on a dedicated worker go-routine. The worker
// announces itself with a single ready message and then answers each render
// message with exactly one response. Pixels are written straight into a
// region owned by the bridge; responses only carry timing.
type BackgroundBridge struct {
	mu sync.Mutex

	opts Options

	// Shared pixel region and the dimensions it was allocated for.
	region []byte
	width  int
	height int

	started  bool
	ready    bool
	inFlight bool
	closing  bool
	faulted  bool

	pendingSeq uint64
	lastSeq    uint64
	stats      []engine.TracerStat

	cmdChan chan command
	outChan chan Message
	events  chan Message
	done    chan struct{}
	group   *errgroup.Group
}

// Create a new background bridge and allocate its shared region. The worker
// is spawned by Start.
func NewBackground(opts Options) *BackgroundBridge {
	width := opts.Params.Width
	height := opts.Params.Aspect.Height(width)
	return &BackgroundBridge{
		opts:    opts,
		region:  make([]byte, width*height*4),
		width:   width,
		height:  height,
		cmdChan: make(chan command, 2),
		outChan: make(chan Message),
		events:  make(chan Message, 1),
		done:    make(chan struct{}),
	}
}

// Spawn the worker. The ready handshake arrives later as a MsgReady message.
func (b *BackgroundBridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return ErrClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	var workerCtx context.Context
	b.group, workerCtx = errgroup.WithContext(ctx)
	region := b.region
	b.group.Go(func() error { return b.worker(workerCtx, region) })
	b.group.Go(b.relay)
	return nil
}

// Get the bridge event channel.
func (b *BackgroundBridge) Events() <-chan Message {
	return b.events
}

// Post a render message to the worker. The result is delivered as a
// MsgResponse message; a nil result is always returned.
func (b *BackgroundBridge) Issue(req FrameRequest) (*FrameResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.closing:
		return nil, ErrClosed
	case b.faulted:
		return nil, ErrWorkerExited
	case !b.ready:
		return nil, ErrNotReady
	case b.inFlight:
		return nil, ErrRequestInFlight
	}
	if req.Seq <= b.lastSeq {
		return nil, fmt.Errorf("%w: request %d issued after %d", ErrProtocol, req.Seq, b.lastSeq)
	}
	if req.Width != b.width || req.Height != b.height {
		return nil, fmt.Errorf("%w: request for %dx%d but region holds %dx%d", ErrProtocol, req.Width, req.Height, b.width, b.height)
	}

	cmd := command{
		kind: cmdRender,
		render: renderMessage{
			Seq:            req.Seq,
			Position:       req.Camera.Position,
			Rotation:       req.Camera.Rotation,
			Aspect:         req.Camera.Aspect,
			FocalLength:    req.Camera.FocalLength,
			ViewportHeight: req.Camera.ViewportHeight,
			AntiAlias:      req.Camera.AntiAlias,
			Width:          req.Width,
			Height:         req.Height,
			Region:         b.region,
		},
	}
	if err := b.post(cmd); err != nil {
		return nil, err
	}

	b.inFlight = true
	b.pendingSeq = req.Seq
	b.lastSeq = req.Seq
	return nil, nil
}

// Reallocate the shared region and post a resize message to the worker.
// The worker handles messages in order so a render that is still running
// finishes against the old region and its response is delivered first.
// Completion is signaled with a MsgResized message.
func (b *BackgroundBridge) Resize(width int) (bool, error) {
	height := b.opts.Params.Aspect.Height(width)
	if width <= 0 || height <= 0 || width > engine.MaxDimension || height > engine.MaxDimension {
		return false, fmt.Errorf("%w: width %d", engine.ErrInvalidDimensions, width)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.closing:
		return false, ErrClosed
	case b.faulted:
		return false, ErrWorkerExited
	case !b.ready:
		return false, ErrNotReady
	}

	region := make([]byte, width*height*4)
	err := b.post(command{
		kind:   cmdResize,
		resize: resizeMessage{Width: width, Height: height, Region: region},
	})
	if err != nil {
		return false, err
	}

	b.region = region
	b.width, b.height = width, height
	return false, nil
}

// Queue a command for the worker without blocking. Callers hold b.mu and
// the worker needs it to publish stats, so a full queue is reported instead
// of waited on.
func (b *BackgroundBridge) post(cmd command) error {
	select {
	case b.cmdChan <- cmd:
		return nil
	default:
		return fmt.Errorf("%w: worker command queue is full", ErrProtocol)
	}
}

// Get per-tracer statistics for the last rendered frame.
func (b *BackgroundBridge) Stats() []engine.TracerStat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]engine.TracerStat(nil), b.stats...)
}

// Stop the worker and wait for it to exit. Returns the error that made the
// worker exit, if any.
func (b *BackgroundBridge) Close() error {
	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		return nil
	}
	b.closing = true
	started := b.started
	close(b.cmdChan)
	close(b.done)
	b.mu.Unlock()

	if !started {
		close(b.events)
		return nil
	}
	if err := b.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// The worker owns the engine. It boots the engine, sends the ready message
// and then processes commands until the command channel is closed.
func (b *BackgroundBridge) worker(ctx context.Context, region []byte) (err error) {
	defer close(b.outChan)

	var eng *engine.Engine
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker panic: %v", ErrWorkerExited, r)
			b.outChan <- Message{Kind: MsgFault, Err: err}
		}
		if eng != nil {
			eng.Close()
		}
	}()

	if eng, err = bootEngine(ctx, b.opts.Params); err != nil {
		b.outChan <- Message{Kind: MsgFault, Err: err}
		return err
	}
	if err = eng.UseMemory(region); err != nil {
		b.outChan <- Message{Kind: MsgFault, Err: err}
		return err
	}
	logger.Noticef("engine ready (%dx%d, background transport)", eng.Width(), eng.Height())
	b.outChan <- Message{Kind: MsgReady}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-b.cmdChan:
			if !ok {
				return nil
			}

			var msg Message
			switch cmd.kind {
			case cmdRender:
				msg, err = b.handleRender(eng, cmd.render)
			case cmdResize:
				eng, err = b.handleResize(eng, cmd.resize)
				msg = Message{Kind: MsgResized, Width: cmd.resize.Width, Height: cmd.resize.Height}
			}
			if err != nil {
				b.outChan <- Message{Kind: MsgFault, Err: err}
				return err
			}
			b.outChan <- msg
		}
	}
}

func (b *BackgroundBridge) handleRender(eng *engine.Engine, msg renderMessage) (Message, error) {
	eng.SetPosition(msg.Position)
	eng.RotateToPointer(msg.Rotation)
	eng.SetFocalLength(msg.FocalLength)
	eng.SetAntiAlias(msg.AntiAlias)

	start := time.Now()
	pixels, err := eng.Render()
	if err != nil {
		return Message{}, err
	}
	elapsed := time.Since(start)

	b.mu.Lock()
	b.stats = eng.Stats()
	b.mu.Unlock()

	return Message{
		Kind: MsgResponse,
		Result: &FrameResult{
			Seq:     msg.Seq,
			Width:   msg.Width,
			Height:  msg.Height,
			Elapsed: elapsed,
			Pixels:  pixels,
			Region:  msg.Region,
		},
	}, nil
}

func (b *BackgroundBridge) handleResize(eng *engine.Engine, msg resizeMessage) (*engine.Engine, error) {
	next, err := resizeEngine(eng, b.opts.Resize, msg.Width)
	if err != nil {
		return eng, err
	}
	if err = next.UseMemory(msg.Region); err != nil {
		return next, err
	}
	logger.Infof("resized engine to %dx%d (%s)", msg.Width, msg.Height, b.opts.Resize)
	return next, nil
}

// The relay validates worker messages against the protocol state and
// forwards them to the event channel.
func (b *BackgroundBridge) relay() error {
	defer close(b.events)

	faulted := false
	for msg := range b.outChan {
		msg = b.accept(msg)
		if msg.Kind == MsgFault {
			if faulted {
				continue
			}
			faulted = true
		}
		b.forward(msg)
	}

	b.mu.Lock()
	closing := b.closing
	b.faulted = true
	b.mu.Unlock()
	if !faulted && !closing {
		b.forward(Message{Kind: MsgFault, Err: ErrWorkerExited})
	}
	return nil
}

// Check a worker message against the protocol state. Violations are turned
// into fault messages.
func (b *BackgroundBridge) accept(msg Message) Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch msg.Kind {
	case MsgReady:
		if b.ready {
			return b.protocolFault("duplicate ready message")
		}
		b.ready = true
	case MsgResponse:
		if !b.inFlight || msg.Result == nil {
			return b.protocolFault("response without an outstanding request")
		}
		if msg.Result.Seq != b.pendingSeq {
			return b.protocolFault(fmt.Sprintf("response %d does not match request %d", msg.Result.Seq, b.pendingSeq))
		}
		b.inFlight = false
	case MsgFault:
		b.faulted = true
		logger.Errorf("render worker fault: %v", msg.Err)
	}
	return msg
}

func (b *BackgroundBridge) protocolFault(reason string) Message {
	b.faulted = true
	err := fmt.Errorf("%w: %s", ErrProtocol, reason)
	logger.Error(err.Error())
	return Message{Kind: MsgFault, Err: err}
}

// Deliver a message unless the bridge is shutting down and nobody reads
// the event channel anymore.
func (b *BackgroundBridge) forward(msg Message) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}
