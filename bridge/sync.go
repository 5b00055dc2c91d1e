package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/achilleasa/raylive/engine"
)

// SyncBridge renders on the calling go-routine. A request blocks the caller
// for the full render so at most one request is ever in flight.
type SyncBridge struct {
	mu sync.Mutex
	wg sync.WaitGroup

	opts   Options
	eng    *engine.Engine
	events chan Message

	started bool
	closed  bool
	lastSeq uint64
}

// Create a new synchronous bridge. The engine is constructed by Start.
func NewSync(opts Options) *SyncBridge {
	return &SyncBridge{
		opts:   opts,
		events: make(chan Message, 1),
	}
}

// Initialize and construct the engine on a separate go-routine so callers
// can keep collecting input while the engine boots.
func (b *SyncBridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		eng, err := bootEngine(ctx, b.opts.Params)
		if err != nil {
			b.events <- Message{Kind: MsgFault, Err: err}
			return
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			eng.Close()
			return
		}
		b.eng = eng
		b.mu.Unlock()

		logger.Noticef("engine ready (%dx%d, sync transport)", eng.Width(), eng.Height())
		b.events <- Message{Kind: MsgReady}
	}()
	return nil
}

// Get the bridge event channel. Only readiness and start-up faults are
// delivered here; results are returned by Issue.
func (b *SyncBridge) Events() <-chan Message {
	return b.events
}

// Render a frame and return its result.
func (b *SyncBridge) Issue(req FrameRequest) (*FrameResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.eng == nil {
		return nil, ErrNotReady
	}
	if req.Seq <= b.lastSeq {
		return nil, fmt.Errorf("%w: request %d issued after %d", ErrProtocol, req.Seq, b.lastSeq)
	}
	if w, h := b.eng.Width(), b.eng.Height(); req.Width != w || req.Height != h {
		return nil, fmt.Errorf("%w: request for %dx%d but engine renders %dx%d", ErrProtocol, req.Width, req.Height, w, h)
	}
	b.lastSeq = req.Seq

	applyRequest(b.eng, req)
	pixels, err := b.eng.Render()
	if err != nil {
		return nil, err
	}

	return &FrameResult{
		Seq:     req.Seq,
		Width:   req.Width,
		Height:  req.Height,
		Elapsed: b.eng.LastRenderTime(),
		Pixels:  pixels,
		Region:  b.eng.SharedMemory(),
	}, nil
}

// Apply a width change. The engine owns its memory in this transport so the
// region is reallocated as part of the engine update.
func (b *SyncBridge) Resize(width int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false, ErrClosed
	}
	if b.eng == nil {
		return false, ErrNotReady
	}
	if width <= 0 || b.opts.Params.Aspect.Height(width) <= 0 {
		return false, fmt.Errorf("%w: width %d", engine.ErrInvalidDimensions, width)
	}

	eng, err := resizeEngine(b.eng, b.opts.Resize, width)
	if err != nil {
		return false, err
	}
	b.eng = eng
	logger.Infof("resized engine to %dx%d (%s)", eng.Width(), eng.Height(), b.opts.Resize)
	return true, nil
}

// Get per-tracer statistics for the last rendered frame.
func (b *SyncBridge) Stats() []engine.TracerStat {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.eng == nil {
		return nil
	}
	return b.eng.Stats()
}

// Shutdown the engine and close the event channel.
func (b *SyncBridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	if b.eng != nil {
		b.eng.Close()
		b.eng = nil
	}
	b.mu.Unlock()

	b.wg.Wait()
	close(b.events)
	return nil
}

// Run the engine's one-time init and construct an instance.
func bootEngine(ctx context.Context, params engine.Params) (*engine.Engine, error) {
	if err := engine.Init(ctx); err != nil {
		return nil, fmt.Errorf("bridge: engine init failed: %w", err)
	}
	eng, err := engine.New(params)
	if err != nil {
		return nil, fmt.Errorf("bridge: engine construction failed: %w", err)
	}
	return eng, nil
}
