// Package hub maintains live websocket sessions and the shared activity
// feed they observe.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/irongraph/irongraph/internal/adapters/mq/queue"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/pkg/logger"
	"github.com/irongraph/irongraph/pkg/metrics"
)

const recentWindow = 60 * time.Second

// ServerMessage is the envelope for every outbound hub message.
type ServerMessage struct {
	Type    string `json:"type"` // "feed", "activity", "stats", "error"
	Payload any    `json:"payload"`
}

// Hub fans activity events out to connected sessions and broadcasts
// periodic aggregate stats. Events arrive through the bounded queue;
// the hub never blocks producers.
type Hub struct {
	ring   *Ring
	roster *xsync.Map[string, *Session]
	q      queue.Queue
	log    logger.Logger

	feedSize          int
	broadcastInterval time.Duration

	stop chan struct{}
	once sync.Once
}

// New creates a hub consuming from q.
func New(q queue.Queue, opts ...Option) *Hub {
	h := &Hub{
		roster:            xsync.NewMap[string, *Session](),
		q:                 q,
		log:               logger.Named("hub"),
		feedSize:          256,
		broadcastInterval: 5 * time.Second,
		stop:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.ring = NewRing(h.feedSize)
	return h
}

// Run consumes the activity queue and drives the periodic stats
// broadcast. It blocks until ctx is cancelled, the hub is closed, or
// the queue's dequeue channel closes.
func (h *Hub) Run(ctx context.Context) {
	events := h.q.Dequeue(ctx)
	ticker := time.NewTicker(h.broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			h.fold(ctx, e)
		case <-ticker.C:
			h.broadcast(ctx, ServerMessage{Type: "stats", Payload: h.Stats()})
		}
	}
}

// fold records an event into the feed and fans it out.
func (h *Hub) fold(ctx context.Context, e model.ActivityEvent) {
	h.ring.Append(e)
	metrics.RecordActivityEvent()
	metrics.UpdateActivityFeedSize(h.ring.Len())
	h.broadcast(ctx, ServerMessage{Type: "activity", Payload: e})
}

// Stats returns the current aggregate view of hub activity. The load
// metric is the recent event rate per second over the trailing window.
func (h *Hub) Stats() model.StatsUpdate {
	recent := h.ring.CountSince(time.Now().Add(-recentWindow))
	return model.StatsUpdate{
		ActiveSessions:   h.roster.Size(),
		RecentEventCount: recent,
		LoadMetric:       float64(recent) / recentWindow.Seconds(),
	}
}

// Feed returns the buffered activity events, oldest first.
func (h *Hub) Feed() []model.ActivityEvent {
	return h.ring.Snapshot()
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	return h.roster.Size()
}

// broadcast fans a message out to every session. Sessions whose send
// buffer is full are dropped: a stalled reader must not hold up the
// rest of the room.
func (h *Hub) broadcast(ctx context.Context, msg ServerMessage) {
	delivered := 0
	var stalled []*Session
	h.roster.Range(func(_ string, s *Session) bool {
		if s.enqueue(msg) {
			delivered++
		} else {
			stalled = append(stalled, s)
		}
		return true
	})
	for _, s := range stalled {
		h.log.Warn(ctx, "dropping stalled session", logger.String("session", s.id))
		metrics.RecordBroadcastFailure()
		h.detach(s)
	}
	if delivered > 0 {
		metrics.RecordBroadcastSent()
	}
}

// attach registers a session and sends it the current feed snapshot.
func (h *Hub) attach(s *Session) {
	h.roster.Store(s.id, s)
	metrics.UpdateLiveSessions(h.roster.Size())
	s.enqueue(ServerMessage{Type: "feed", Payload: h.ring.Snapshot()})
	s.enqueue(ServerMessage{Type: "stats", Payload: h.Stats()})
}

// detach removes a session and closes its outbound channel.
func (h *Hub) detach(s *Session) {
	if _, loaded := h.roster.LoadAndDelete(s.id); !loaded {
		return
	}
	s.closeSend()
	metrics.UpdateLiveSessions(h.roster.Size())
}

// Publish enqueues an activity event for the hub. Returns false when
// the queue is full or closed and the event was dropped.
func (h *Hub) Publish(ctx context.Context, e model.ActivityEvent) bool {
	return h.q.Enqueue(ctx, e)
}

// Close stops Run and detaches every session.
func (h *Hub) Close() error {
	h.once.Do(func() {
		close(h.stop)
		h.roster.Range(func(_ string, s *Session) bool {
			h.detach(s)
			return true
		})
	})
	return nil
}
