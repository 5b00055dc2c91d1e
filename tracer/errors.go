package tracer

import "errors"

var (
	ErrNoKernel     = errors.New("tracer: block request has no kernel")
	ErrTracerClosed = errors.New("tracer: tracer is closed")
)
