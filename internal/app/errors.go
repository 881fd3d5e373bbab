package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrValidation  = errors.New("invalid analytics request")
	ErrComputation = errors.New("analytics computation failed")
)
