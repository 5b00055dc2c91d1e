package bridge

import "errors"

var (
	ErrNotReady        = errors.New("bridge: engine is not ready")
	ErrRequestInFlight = errors.New("bridge: a frame request is already in flight")
	ErrWorkerExited    = errors.New("bridge: render worker exited")
	ErrProtocol        = errors.New("bridge: protocol violation")
	ErrAlreadyStarted  = errors.New("bridge: already started")
	ErrClosed          = errors.New("bridge: bridge is closed")
)
