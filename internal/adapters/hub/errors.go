package hub

import (
	"errors"
)

// Sentinel kinds for hub errors.
var (
	// ErrUnscoreable marks a viewer update whose numbers cannot produce a
	// valid score, e.g. a bodyweight outside the scoreable range or a zero
	// lift. Such updates never enter the activity feed.
	ErrUnscoreable = errors.New("update cannot be scored")
)
