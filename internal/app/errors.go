package service

import "errors"

// Sentinel kinds for run errors.
var (
	ErrDuplicateRecord = errors.New("duplicate performance record")
	ErrMissingRecords  = errors.New("no performance records generated")
)
