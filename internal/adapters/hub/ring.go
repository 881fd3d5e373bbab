package hub

import (
	"sync"
	"time"

	"github.com/irongraph/irongraph/internal/domain/model"
)

// Ring is a fixed-capacity buffer of activity events. Appending beyond
// capacity overwrites the oldest event. All methods are safe for
// concurrent use.
type Ring struct {
	mu    sync.RWMutex
	buf   []model.ActivityEvent
	head  int // next write position
	count int
}

// NewRing creates a ring holding at most capacity events.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{buf: make([]model.ActivityEvent, capacity)}
}

// Append adds an event, evicting the oldest when full.
func (r *Ring) Append(e model.ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Snapshot returns the buffered events ordered oldest to newest.
func (r *Ring) Snapshot() []model.ActivityEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ActivityEvent, 0, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Len returns the number of buffered events.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// CountSince counts buffered events at or after t.
func (r *Ring) CountSince(t time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		if !r.buf[(start+i)%len(r.buf)].At.Before(t) {
			n++
		}
	}
	return n
}
