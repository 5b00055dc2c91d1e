package present

import (
	"image"
	"sync"
)

// A Surface displays presented frames and a one-line status text.
type Surface interface {
	// Resize the drawable area.
	Resize(width, height int) error

	// Paint an image at the surface origin. The surface may keep a
	// reference to img; presenters never modify an image after painting it.
	Paint(img *image.RGBA) error

	// Update the status line.
	SetStatus(text string)
}

// ImageSurface is a headless surface that keeps the last painted frame in
// memory. It is safe for concurrent use.
type ImageSurface struct {
	mu sync.Mutex

	width  int
	height int
	frame  *image.RGBA
	status string
	paints int
}

// Create a headless surface with the given size.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{width: width, height: height}
}

func (s *ImageSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	return nil
}

func (s *ImageSurface) Paint(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = img
	s.paints++
	return nil
}

func (s *ImageSurface) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

// Get the surface size.
func (s *ImageSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Get the last painted frame or nil if nothing was painted yet.
func (s *ImageSurface) Frame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Get the current status text.
func (s *ImageSurface) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Get the number of Paint calls.
func (s *ImageSurface) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}
