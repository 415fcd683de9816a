package app

import (
	"sync"

	"team_portal_service/internal/chat/domain"
	"team_portal_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventBuffer is the per-connection queue depth. A client that stops reading
// long enough to fill it is treated as dead and dropped.
const eventBuffer = 64

// Connection is one open live stream for a user. Its event channel is
// unbounded in duration and not restartable: events published before
// Subscribe are never replayed, and a closed channel means the connection
// was dropped.
type Connection struct {
	ID     string
	UserID string
	events chan domain.StreamEvent
}

// Events is the sink the stream handler drains into the transport.
func (c *Connection) Events() <-chan domain.StreamEvent {
	return c.events
}

// Hub owns the set of open connections and fans every published event out to
// all of them in one global order.
type Hub struct {
	buffer int

	mu    sync.Mutex
	conns map[string]*Connection
}

// NewHub create an empty hub.
func NewHub() *Hub {
	return &Hub{
		buffer: eventBuffer,
		conns:  make(map[string]*Connection),
	}
}

// Subscribe registers a new connection for userID. The same user may hold
// several connections (multiple tabs); each receives its own copy of every
// event.
func (h *Hub) Subscribe(userID string) *Connection {
	conn := &Connection{
		ID:     uuid.New().String(),
		UserID: userID,
		events: make(chan domain.StreamEvent, h.buffer),
	}

	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()

	logger.Log.Debug("chat stream subscribed",
		zap.String("connection_id", conn.ID),
		zap.String("user_id", userID),
	)
	return conn
}

// Unsubscribe removes conn and closes its event channel. Safe to call more
// than once, and safe to race with Publish dropping the same connection.
func (h *Hub) Unsubscribe(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(conn)
}

// Publish delivers evt to every open connection. The hub lock is held for
// the whole fan-out: publishes are serialized, so every connection that
// receives two events receives them in publish order. A connection whose
// buffer is full is dropped silently rather than allowed to stall or skew
// delivery to the rest.
func (h *Hub) Publish(evt domain.StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.conns {
		select {
		case conn.events <- evt:
		default:
			logger.Log.Warn("dropping stalled chat connection",
				zap.String("connection_id", conn.ID),
				zap.String("user_id", conn.UserID),
			)
			h.drop(conn)
		}
	}
}

// ConnectionCount reports how many streams are currently open.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// drop removes conn from the set and closes its channel. Callers hold h.mu;
// the registry check keeps the close from happening twice.
func (h *Hub) drop(conn *Connection) {
	if _, ok := h.conns[conn.ID]; !ok {
		return
	}
	delete(h.conns, conn.ID)
	close(conn.events)
}
