package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// queueLen is the per-session backlog. Theme messages carry full state, so
// when a session falls this far behind its oldest message is discarded.
const queueLen = 32

// writeTimeout bounds a single frame write to a slow peer.
const writeTimeout = 5 * time.Second

// Session is one connected dashboard or site tab.
type Session struct {
	conn   *websocket.Conn
	user   string
	queue  chan Message
	logger *zap.Logger
}

func newSession(conn *websocket.Conn, user string, depth int, logger *zap.Logger) *Session {
	return &Session{conn: conn, user: user, queue: make(chan Message, depth), logger: logger}
}

// offer enqueues msg, evicting the oldest queued message when full. It
// reports whether anything was evicted.
func (s *Session) offer(msg Message) (evicted bool) {
	for {
		select {
		case s.queue <- msg:
			return evicted
		default:
		}
		select {
		case <-s.queue:
			evicted = true
		default:
		}
	}
}

// write streams queued messages to the peer until ctx ends, the queue is
// closed by Leave, or a write fails.
func (s *Session) write(ctx context.Context) {
	for {
		var msg Message
		select {
		case <-ctx.Done():
			return
		case m, open := <-s.queue:
			if !open {
				return
			}
			msg = m
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(wctx, s.conn, msg)
		cancel()
		if err != nil {
			s.logger.Debug("websocket write failed", zap.String("user_id", s.user), zap.Error(err))
			return
		}
	}
}

// drain discards inbound frames until the peer disconnects; clients send
// nothing the server acts on.
func (s *Session) drain(ctx context.Context) {
	for {
		if _, _, err := s.conn.Read(ctx); err != nil {
			return
		}
	}
}

// Hub fans theme and site messages out to every session.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{sessions: make(map[*Session]struct{}), logger: logger}
}

// Join adds s to the broadcast set.
func (h *Hub) Join(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	wsClients.Set(float64(len(h.sessions)))
	h.mu.Unlock()
	h.logger.Debug("websocket session joined", zap.String("user_id", s.user))
}

// Leave removes s and closes its queue. Leaving twice is a no-op.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
		close(s.queue)
	}
	wsClients.Set(float64(len(h.sessions)))
	h.mu.Unlock()
	if ok {
		h.logger.Debug("websocket session left", zap.String("user_id", s.user))
	}
}

// Broadcast offers msg to every session.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		if s.offer(msg) {
			wsDropped.Inc()
			h.logger.Debug("websocket session behind, oldest message evicted",
				zap.String("user_id", s.user), zap.String("type", string(msg.Type)))
		}
	}
}

// Len returns the number of joined sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
