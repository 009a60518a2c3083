package simulation

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrInvalidParams = errors.New("invalid simulation params")
)
