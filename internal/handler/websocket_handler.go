package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alivehamster/elliptical/internal/service"
	ws "github.com/alivehamster/elliptical/internal/websocket"
)

// WebSocketHandler upgrades connections and hands them to the hub.
// Connections are anonymous; the ephemeral id is assigned here and dies
// with the socket.
type WebSocketHandler struct {
	hub      *ws.Hub
	chat     *service.ChatService
	admin    *service.AdminService
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigins
// gates the upgrade handshake; "*" admits any origin.
func NewWebSocketHandler(hub *ws.Hub, chat *service.ChatService, admin *service.AdminService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		chat:  chat,
		admin: admin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleConnection handles WebSocket upgrade and connection
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	// The request context dies when this handler returns; the client
	// lives until the socket closes, so it gets its own context.
	client := ws.NewClient(context.Background(), h.hub, conn, h.chat, h.admin)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
