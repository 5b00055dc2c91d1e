package present

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/achilleasa/raylive/log"
)

var logger = log.New("present")

var (
	ErrInvalidFrame = errors.New("present: invalid frame dimensions")
	ErrShortFrame   = errors.New("present: pixel data shorter than frame")
	ErrNoFrame      = errors.New("present: no frame has been presented")
)

// Elapsed times below this floor are clamped before deriving a frame rate.
const minElapsed = time.Microsecond

// The Presenter copies rendered pixels into images it owns and paints them
// on a surface together with timing telemetry.
type Presenter struct {
	surface Surface

	last        *image.RGBA
	lastElapsed time.Duration
}

// Create a presenter for a surface.
func New(surface Surface) *Presenter {
	return &Presenter{surface: surface}
}

// Copy exactly width*height*4 bytes out of pixels, paint the copy and update
// the status line. pixels is typically a view into memory the engine writes
// to, so it is never retained.
func (p *Presenter) Present(pixels []byte, width, height int, elapsed time.Duration) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, width, height)
	}
	size := width * height * 4
	if len(pixels) < size {
		return nil, fmt.Errorf("%w: got %d bytes; expected %d", ErrShortFrame, len(pixels), size)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels[:size])

	if err := p.surface.Paint(img); err != nil {
		return nil, err
	}
	p.surface.SetStatus(StatusText(elapsed))

	p.last = img
	p.lastElapsed = elapsed
	return img, nil
}

// Resize the underlying surface.
func (p *Presenter) Resize(width, height int) error {
	return p.surface.Resize(width, height)
}

// Switch the status line to an error state.
func (p *Presenter) ShowError(err error) {
	logger.Errorf("render failed: %v", err)
	p.surface.SetStatus(fmt.Sprintf("Render failed: %v", err))
}

// Show an informational status line.
func (p *Presenter) ShowStatus(text string) {
	p.surface.SetStatus(text)
}

// Get the last presented frame and its render time.
func (p *Presenter) LastFrame() (*image.RGBA, time.Duration, error) {
	if p.last == nil {
		return nil, 0, ErrNoFrame
	}
	return p.last, p.lastElapsed, nil
}

// Format the status line for a frame's render time.
func StatusText(elapsed time.Duration) string {
	return fmt.Sprintf("Rendered in %dms (%s FPS)", elapsed.Milliseconds(), FormatFPS(elapsed))
}

// Format the frame rate derived from a render time; 1000/ms rounded to an
// integer when it is at least 1 and with two decimals otherwise.
func FormatFPS(elapsed time.Duration) string {
	if elapsed < minElapsed {
		elapsed = minElapsed
	}
	fps := 1000 / (float64(elapsed) / float64(time.Millisecond))
	if fps >= 1 {
		return fmt.Sprintf("%d", int64(math.Round(fps)))
	}
	return fmt.Sprintf("%.2f", fps)
}
