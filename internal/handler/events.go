package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/fleetrent/internal/events"
)

// EventsHandler streams rental lifecycle events over a WebSocket
type EventsHandler struct {
	broker         *events.Broker
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broker *events.Broker, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		broker:         broker,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

const eventsPingInterval = 30 * time.Second

// upgrader is initialized per-request to use instance's allowed origins
func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	feed, cancel := h.broker.Subscribe()
	defer cancel()

	h.logger.Debug("event feed subscriber connected", slog.String("remote", r.RemoteAddr))

	// Drain the read side so client close frames are processed.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventsPingInterval)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.WriteJSON(event); err != nil {
				h.logger.Debug("event feed write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
