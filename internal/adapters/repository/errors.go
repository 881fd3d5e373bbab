package repository

import "errors"

// Sentinel kinds for record table errors.
var (
	ErrEmptyBatch = errors.New("empty record batch")
	ErrClosed     = errors.New("store closed")
)
