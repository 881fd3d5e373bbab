package hub

import "time"

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithFeedSize bounds the activity ring buffer.
func WithFeedSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.feedSize = n
		}
	}
}

// WithBroadcastInterval sets the cadence of periodic stats broadcasts.
func WithBroadcastInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.broadcastInterval = d
		}
	}
}
