package filtering

import "errors"

// Sentinel kinds for filter execution errors.
var (
	// ErrExecution marks a failure of the underlying table engine during
	// a scan, as opposed to a malformed request (which is rejected at the
	// validation boundary before reaching this package).
	ErrExecution = errors.New("filter execution failed")
)
