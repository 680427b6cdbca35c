package engine

import "errors"

// Sentinel errors for engine lifecycle and streaming.
var (
	ErrLoadFailed    = errors.New("engine load failed")
	ErrModelMismatch = errors.New("handle is ready with a different model")
	ErrStreamClosed  = errors.New("stream closed")
)
