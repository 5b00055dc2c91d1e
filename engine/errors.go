package engine

import "errors"

var (
	ErrNotInitialized    = errors.New("engine: Init has not completed")
	ErrInvalidDimensions = errors.New("engine: invalid frame dimensions")
	ErrInvalidCamera     = errors.New("engine: focal length and viewport height must be positive")
	ErrBusy              = errors.New("engine: a frame is already being rendered")
	ErrClosed            = errors.New("engine: engine is closed")
)
