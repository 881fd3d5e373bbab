package hub

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/scoring"
	"github.com/irongraph/irongraph/internal/domain/types"
	"github.com/irongraph/irongraph/pkg/logger"
)

const (
	sendBufferSize = 64
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// clientMessage is an inbound viewer update: their current numbers and
// which lift the update refers to.
type clientMessage struct {
	Sex          string  `json:"sex"`
	BodyweightKg float64 `json:"bodyweight_kg"`
	SquatKg      float64 `json:"squat_kg"`
	BenchKg      float64 `json:"bench_kg"`
	DeadliftKg   float64 `json:"deadlift_kg"`
	Lift         string  `json:"lift"`
}

// Session is one connected websocket viewer.
type Session struct {
	id   string
	conn *websocket.Conn
	send chan ServerMessage
	hub  *Hub

	closed chan struct{}
}

// ServeWS upgrades the request and runs the session until the peer
// disconnects or the hub drops it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	s := &Session{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		hub:    h,
		closed: make(chan struct{}),
	}

	h.log.Debug(r.Context(), "session connected",
		logger.String("session", s.id),
		logger.String("remote_addr", r.RemoteAddr))

	h.attach(s)

	go s.writePump()
	s.readPump(r)

	h.detach(s)
	_ = conn.Close()

	h.log.Debug(r.Context(), "session disconnected", logger.String("session", s.id))
}

// enqueue offers a message to the session without blocking.
func (s *Session) enqueue(msg ServerMessage) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend signals the write pump to flush and stop.
func (s *Session) closeSend() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// writePump drains the send channel to the connection and keeps the
// peer alive with periodic pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			_ = s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		case msg := <-s.send:
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump consumes viewer updates until the connection dies. Each
// valid update is scored and folded into the shared activity feed.
func (s *Session) readPump(r *http.Request) {
	ctx := r.Context()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Debug(ctx, "session read error",
					logger.String("session", s.id), logger.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		e, err := scoreUpdate(msg)
		if err != nil {
			s.enqueue(ServerMessage{Type: "error", Payload: map[string]string{"message": err.Error()}})
			continue
		}
		if !s.hub.Publish(ctx, e) {
			s.hub.log.Warn(ctx, "activity queue full, event dropped", logger.String("session", s.id))
		}
	}
}

// scoreUpdate turns a viewer update into a scored activity event.
func scoreUpdate(msg clientMessage) (model.ActivityEvent, error) {
	sex, err := types.ParseSex(msg.Sex)
	if err != nil {
		return model.ActivityEvent{}, err
	}
	lift, err := types.ParseLiftType(msg.Lift)
	if err != nil {
		return model.ActivityEvent{}, err
	}

	var kg float64
	switch lift {
	case types.Squat:
		kg = msg.SquatKg
	case types.Bench:
		kg = msg.BenchKg
	case types.Deadlift:
		kg = msg.DeadliftKg
	default:
		kg = msg.SquatKg + msg.BenchKg + msg.DeadliftKg
	}

	// An invalid score must never enter the feed: NaN is not
	// JSON-encodable and would fail every session's write.
	dots := scoring.Dots(kg, msg.BodyweightKg, sex)
	if !scoring.Valid(dots) {
		return model.ActivityEvent{}, ErrUnscoreable
	}
	tier := scoring.StrengthTier(dots, lift, sex)

	return model.ActivityEvent{
		Dots: dots,
		Tier: tier.String(),
		Lift: lift,
		At:   time.Now().UTC(),
	}, nil
}
