package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	ws "github.com/rstanikk/dopamine/internal/websocket"
)

// WebSocketHandler upgrades connections and registers them with the hub so
// the server can push state-synced and inquiries-updated events.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-user app, the browser client may run on any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and holds the connection open until the client
// disconnects. Incoming frames are drained and ignored, the socket is
// push-only.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocketHandler: upgrade failed: %v", err)
		return
	}

	client := h.hub.Register(conn)
	if client == nil {
		return
	}
	defer h.hub.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
