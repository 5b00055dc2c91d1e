package renderer

import "errors"

var (
	ErrEngineFault     = errors.New("renderer: engine fault")
	ErrBridgeClosed    = errors.New("renderer: bridge event channel closed")
	ErrInvalidViewport = errors.New("renderer: invalid viewport")
)
