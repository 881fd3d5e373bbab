package engine

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrConnect = errors.New("archive connect failed")
	ErrQuery   = errors.New("archive query failed")
)
