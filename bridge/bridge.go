package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
)

var logger = log.New("bridge")

// The supported transports between the tick loop and the engine.
type Transport uint8

const (
	// Render on the calling go-routine.
	Sync Transport = iota

	// Render on a dedicated worker go-routine that writes into a shared
	// pixel region and answers with response messages.
	Background
)

func (t Transport) String() string {
	switch t {
	case Sync:
		return "sync"
	case Background:
		return "background"
	}
	return fmt.Sprintf("transport(%d)", uint8(t))
}

// Parse a transport name as used in config files and CLI flags.
func ParseTransport(name string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sync", "synchronous":
		return Sync, nil
	case "background", "worker":
		return Background, nil
	}
	return Sync, fmt.Errorf("bridge: unknown transport %q", name)
}

// ResizePolicy selects how a width change reaches the engine.
type ResizePolicy uint8

const (
	// Close the engine and construct a new one with the new width.
	Reconstruct ResizePolicy = iota

	// Keep the engine and call ChangeWidth on it.
	InPlace
)

func (p ResizePolicy) String() string {
	if p == InPlace {
		return "in-place"
	}
	return "reconstruct"
}

// FrameRequest is the immutable snapshot a frame is rendered from. Requests
// are passed by value so later camera edits never leak into a running render.
type FrameRequest struct {
	// Monotonically increasing request number.
	Seq uint64

	// Viewport dimensions at the time the request was issued.
	Width  int
	Height int

	Camera scene.Camera
}

// FrameResult describes the pixels produced for a request.
type FrameResult struct {
	Seq    uint64
	Width  int
	Height int

	// Engine side render time.
	Elapsed time.Duration

	// Location of the frame inside Region.
	Pixels engine.PixelData

	// The memory region Pixels points into. It is only valid until the next
	// request is issued; consumers must copy the bytes out.
	Region []byte
}

// Get the render time in milliseconds.
func (r *FrameResult) ElapsedMs() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Get the frame bytes as a view into the shared region.
func (r *FrameResult) Bytes() ([]byte, error) {
	end := r.Pixels.Offset + r.Pixels.Length
	if r.Pixels.Offset < 0 || end > len(r.Region) {
		return nil, fmt.Errorf("%w: pixel range [%d, %d) outside %d byte region", ErrProtocol, r.Pixels.Offset, end, len(r.Region))
	}
	return r.Region[r.Pixels.Offset:end], nil
}

// The kinds of messages a bridge delivers on its event channel.
type MessageKind uint8

const (
	// The engine is initialized and accepts requests. Sent exactly once.
	MsgReady MessageKind = iota

	// A render completed; Result is set.
	MsgResponse

	// A resize completed; Width and Height hold the new dimensions.
	MsgResized

	// The engine or its worker failed; Err is set. No further messages
	// follow a fault.
	MsgFault
)

func (k MessageKind) String() string {
	switch k {
	case MsgReady:
		return "ready"
	case MsgResponse:
		return "response"
	case MsgResized:
		return "resized"
	case MsgFault:
		return "fault"
	}
	return fmt.Sprintf("message(%d)", uint8(k))
}

// Message is delivered by a bridge to the tick loop.
type Message struct {
	Kind   MessageKind
	Result *FrameResult
	Width  int
	Height int
	Err    error
}

// A Bridge transports frame requests to the engine. Implementations are
// driven from a single go-routine and allow at most one outstanding request.
type Bridge interface {
	// Start engine initialization. Readiness (or failure) is reported by a
	// MsgReady (or MsgFault) message on the Events channel.
	Start(ctx context.Context) error

	// Get the channel on which the bridge delivers messages. The channel is
	// closed after the bridge shuts down.
	Events() <-chan Message

	// Issue a frame request. Synchronous transports block and return the
	// result; background transports return a nil result and deliver it as a
	// MsgResponse message.
	Issue(req FrameRequest) (*FrameResult, error)

	// Reallocate the shared region and tell the engine about a new width.
	// Returns true if the resize completed before returning; otherwise
	// completion is signaled with a MsgResized message.
	Resize(width int) (bool, error)

	// Get per-tracer statistics for the last rendered frame.
	Stats() []engine.TracerStat

	// Shutdown the engine.
	Close() error
}

// Options configure a bridge.
type Options struct {
	Transport Transport
	Resize    ResizePolicy

	// Params for the initial engine construction.
	Params engine.Params
}

// Create a bridge for the selected transport.
func New(opts Options) (Bridge, error) {
	width := opts.Params.Width
	if height := opts.Params.Aspect.Height(width); width <= 0 || height <= 0 || width > engine.MaxDimension || height > engine.MaxDimension {
		return nil, fmt.Errorf("%w: width %d", engine.ErrInvalidDimensions, opts.Params.Width)
	}

	switch opts.Transport {
	case Sync:
		return NewSync(opts), nil
	case Background:
		return NewBackground(opts), nil
	}
	return nil, fmt.Errorf("bridge: unsupported transport %s", opts.Transport)
}

// Copy a request's camera onto the engine.
func applyRequest(eng *engine.Engine, req FrameRequest) {
	eng.SetPosition(req.Camera.Position)
	eng.RotateToPointer(req.Camera.Rotation)
	eng.SetFocalLength(req.Camera.FocalLength)
	eng.SetAntiAlias(req.Camera.AntiAlias)
}

// Apply a width change to an engine according to the resize policy and
// return the engine that should be used from now on.
func resizeEngine(eng *engine.Engine, policy ResizePolicy, width int) (*engine.Engine, error) {
	if policy == InPlace {
		eng.ChangeWidth(width)
		return eng, nil
	}

	params := eng.Params()
	params.Width = width
	next, err := engine.New(params)
	if err != nil {
		return nil, err
	}
	eng.Close()
	return next, nil
}
