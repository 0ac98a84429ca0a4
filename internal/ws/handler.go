// Package ws streams theme previews and saves to dashboard and site
// clients over WebSocket.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

// Handler provides the live preview WebSocket endpoint.
type Handler struct {
	hub     *Hub
	tokens  *auth.TokenService
	current func() theme.Config
	logger  *zap.Logger
	unsubs  []func()
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to theme and site
// events. current supplies the theme sent to each client on connect; it
// may be nil.
func NewHandler(tokens *auth.TokenService, bus plugin.Subscriber, current func() theme.Config, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:     NewHub(logger),
		tokens:  tokens,
		current: current,
		logger:  logger,
	}
	h.subscribeToEvents(bus)
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/theme", h.handleThemeStream)
}

// Hub returns the client hub.
func (h *Handler) Hub() *Hub {
	return h.hub
}

// Close drops the bus subscriptions.
func (h *Handler) Close() {
	for _, unsub := range h.unsubs {
		unsub()
	}
	h.unsubs = nil
}

// handleThemeStream upgrades the connection and streams theme events.
func (h *Handler) handleThemeStream(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on a WebSocket handshake, so the JWT
	// arrives as a query parameter.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Any origin; the token is the credential.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	sess := newSession(conn, claims.UserID, queueLen, h.logger)
	if h.current != nil {
		sess.offer(Message{
			Type:      MessageThemeCurrent,
			Timestamp: time.Now().UTC(),
			Data:      theme.NewUpdate(h.current()),
		})
	}
	h.hub.Join(sess)

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.write(ctx)
	}()

	// Blocks until the peer disconnects.
	sess.drain(ctx)

	h.hub.Leave(sess)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards theme and site events to every client.
func (h *Handler) subscribeToEvents(bus plugin.Subscriber) {
	if bus == nil {
		return
	}

	forward := func(typ MessageType) plugin.EventHandler {
		return func(_ context.Context, e plugin.Event) {
			h.hub.Broadcast(Message{Type: typ, Timestamp: e.Timestamp, Data: e.Payload})
		}
	}

	h.unsubs = append(h.unsubs,
		bus.Subscribe(event.TopicThemePreview, forward(MessageThemePreview)),
		bus.Subscribe(event.TopicThemeSaved, forward(MessageThemeSaved)),
		bus.Subscribe(event.TopicSiteSaved, forward(MessageSiteSaved)),
	)

	h.logger.Info("subscribed to theme events for WebSocket broadcasting")
}
