package status

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests to status-channel
// subscriptions. Grounded on
// internal/infrastructure/websocket/handler.go's plain net/http +
// gorilla/websocket upgrade flow (the teacher does not route this surface
// through gin either).
type Handler struct {
	hub    *Hub
	auth   Authenticator
	logger *slog.Logger
}

// NewHandler builds a Handler serving subscriptions off hub, gated by auth.
func NewHandler(hub *Hub, auth Authenticator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hub: hub, auth: auth, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID, err := h.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("status channel upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	client := NewClient(uuid.New().String(), runID, h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
