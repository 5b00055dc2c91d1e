package engine

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/tracer"
	"github.com/achilleasa/raylive/types"
)

// The distance covered by a single MoveAlong call.
const MoveStep float32 = 0.1

// Largest frame width or height an engine accepts.
const MaxDimension = 8192

var logger = log.New("engine")

// Params describe the state an engine is constructed with.
type Params struct {
	Width          int
	ViewportHeight float32
	Aspect         scene.Aspect
	FocalLength    float32
	Position       types.Vec3
	Rotation       types.Vec3
	AntiAlias      uint32

	// Number of tracer workers; defaults to the number of CPUs.
	Workers int

	// The traced scene; defaults to scene.Default().
	Scene *scene.Scene
}

// Build engine params for a camera and frame width.
func ParamsFromCamera(cam scene.Camera, width int) Params {
	return Params{
		Width:          width,
		ViewportHeight: cam.ViewportHeight,
		Aspect:         cam.Aspect,
		FocalLength:    cam.FocalLength,
		Position:       cam.Position,
		Rotation:       cam.Rotation,
		AntiAlias:      cam.AntiAlias,
	}
}

// PixelData locates a rendered frame inside the engine's shared memory.
type PixelData struct {
	Offset int
	Length int
}

// Per-tracer statistics for the last rendered frame.
type TracerStat struct {
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration
}

// An Engine traces the scene into a linear RGBA memory region. An engine
// renders at most one frame at a time; a concurrent Render call fails with
// ErrBusy.
type Engine struct {
	mu sync.Mutex

	params Params
	height int

	// Linear memory holding the pixel region. When external is set the
	// region was supplied by UseMemory and is never reallocated here.
	memory   []byte
	external bool

	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	frame      uint32
	lastRender time.Duration
	closed     bool
}

// Construct a new engine instance. Init must have completed before the
// returned engine can render.
func New(params Params) (*Engine, error) {
	if params.Width <= 0 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidDimensions, params.Width)
	}
	if params.Aspect.W <= 0 || params.Aspect.H <= 0 {
		return nil, fmt.Errorf("%w: aspect %s", ErrInvalidDimensions, params.Aspect)
	}
	if params.Width > MaxDimension {
		return nil, fmt.Errorf("%w: width %d exceeds %d", ErrInvalidDimensions, params.Width, MaxDimension)
	}
	height := params.Aspect.Height(params.Width)
	if height <= 0 || height > MaxDimension {
		return nil, fmt.Errorf("%w: width %d yields height %d", ErrInvalidDimensions, params.Width, height)
	}
	if !scene.PositiveFinite(float64(params.FocalLength)) || !scene.PositiveFinite(float64(params.ViewportHeight)) {
		return nil, ErrInvalidCamera
	}
	if params.AntiAlias > scene.MaxAntiAlias {
		params.AntiAlias = scene.MaxAntiAlias
	}
	if params.Scene == nil {
		params.Scene = scene.Default()
	}
	if err := params.Scene.Validate(); err != nil {
		return nil, err
	}
	if params.Workers <= 0 {
		params.Workers = runtime.NumCPU()
	}

	e := &Engine{
		params:    params,
		height:    height,
		memory:    make([]byte, params.Width*height*4),
		scheduler: tracer.PerfectScheduler(),
	}
	for idx := 0; idx < params.Workers; idx++ {
		e.tracers = append(e.tracers, tracer.NewCPUTracer(fmt.Sprintf("cpu-%d", idx), 1))
	}

	logger.Debugf("constructed %dx%d engine with %d tracers", params.Width, height, params.Workers)
	return e, nil
}

// Get the frame width.
func (e *Engine) Width() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Width
}

// Get the frame height.
func (e *Engine) Height() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.height
}

// Get the current engine parameters.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Get the time it took to render the last frame.
func (e *Engine) LastRenderTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRender
}

// Render a frame into the shared memory region.
func (e *Engine) Render() (PixelData, error) {
	if !e.mu.TryLock() {
		return PixelData{}, ErrBusy
	}
	defer e.mu.Unlock()

	if e.closed {
		return PixelData{}, ErrClosed
	}
	if !initialized() {
		return PixelData{}, ErrNotInitialized
	}

	start := time.Now()
	setup := e.frameSetup()
	blocks := e.scheduler.Schedule(e.tracers, uint32(e.height))

	doneChan := make(chan uint32, len(e.tracers))
	errChan := make(chan error, len(e.tracers))
	var blockY uint32
	pending := 0
	for idx, blockH := range blocks {
		if blockH == 0 {
			continue
		}
		e.tracers[idx].Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          blockH,
			SamplesPerPixel: setup.samples,
			Seed:            e.frame,
			Kernel:          setup.trace,
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockY += blockH
		pending++
	}

	var renderErr error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			if renderErr == nil {
				renderErr = err
			}
		}
	}

	e.frame++
	e.lastRender = time.Since(start)
	if renderErr != nil {
		return PixelData{}, fmt.Errorf("engine: render failed: %w", renderErr)
	}

	return PixelData{Offset: 0, Length: len(setup.pixels)}, nil
}

// Get the engine's shared memory. The returned slice is only valid until the
// next ChangeWidth or UseMemory call.
func (e *Engine) SharedMemory() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memory
}

// Render directly into a caller-provided region. The region must be exactly
// width * height * 4 bytes long.
func (e *Engine) UseMemory(region []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if exp := e.params.Width * e.height * 4; len(region) != exp {
		return fmt.Errorf("%w: region is %d bytes; expected %d", ErrInvalidDimensions, len(region), exp)
	}
	e.memory = region
	e.external = true
	return nil
}

// Change the frame width; the height is recomputed from the aspect ratio.
// An externally supplied region is released since its size no longer
// matches; callers that render zero-copy must call UseMemory again.
func (e *Engine) ChangeWidth(width int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	height := e.params.Aspect.Height(width)
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		logger.Warningf("ignoring invalid frame width %d", width)
		return
	}
	if width == e.params.Width && !e.external {
		return
	}

	e.params.Width = width
	e.height = height
	e.memory = make([]byte, width*height*4)
	e.external = false
}

// Point the camera using {pitch, yaw, roll} angles.
func (e *Engine) RotateToPointer(angles types.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Rotation = angles
}

// Move the camera by MoveStep along a view axis.
func (e *Engine) MoveAlong(dir scene.CameraDirection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cam := e.camera().Move(dir, MoveStep)
	e.params.Position = cam.Position
}

// Set the number of samples per pixel.
func (e *Engine) SetAntiAlias(samples uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if samples > scene.MaxAntiAlias {
		samples = scene.MaxAntiAlias
	}
	e.params.AntiAlias = samples
}

// Set the camera position.
func (e *Engine) SetPosition(pos types.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Position = pos
}

// Set the camera focal length. Non-positive values are ignored.
func (e *Engine) SetFocalLength(focalLength float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !scene.PositiveFinite(float64(focalLength)) {
		logger.Warningf("ignoring invalid focal length %f", focalLength)
		return
	}
	e.params.FocalLength = focalLength
}

// Get per-tracer statistics for the last rendered frame.
func (e *Engine) Stats() []TracerStat {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]TracerStat, 0, len(e.tracers))
	for _, tr := range e.tracers {
		stats := tr.Stats()
		out = append(out, TracerStat{
			Id:           tr.Id(),
			BlockH:       stats.BlockH,
			FramePercent: 100.0 * float32(stats.BlockH) / float32(e.height),
			RenderTime:   time.Duration(stats.BlockTime),
		})
	}
	return out
}

// Shutdown the engine and its tracers.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	for _, tr := range e.tracers {
		tr.Close()
	}
	e.closed = true
}

func (e *Engine) camera() scene.Camera {
	return scene.Camera{
		Position:       e.params.Position,
		Rotation:       e.params.Rotation,
		FocalLength:    e.params.FocalLength,
		ViewportHeight: e.params.ViewportHeight,
		Aspect:         e.params.Aspect,
		AntiAlias:      e.params.AntiAlias,
	}
}
