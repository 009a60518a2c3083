package sink

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrWriteFailed = errors.New("sink write failed")
	ErrClosed      = errors.New("sink closed")
)
