package api

import (
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/gmail"
	ws "github.com/rstanikk/dopamine/internal/websocket"
)

// PollHandler triggers one inquiry-poller run on demand. The same Run method
// is driven on a timer from main.
type PollHandler struct {
	poller *gmail.Poller
	hub    *ws.Hub
}

// NewPollHandler creates a new PollHandler instance. poller is nil when the
// server is missing Google or Gemini credentials or a storage backend.
func NewPollHandler(poller *gmail.Poller, hub *ws.Hub) *PollHandler {
	return &PollHandler{poller: poller, hub: hub}
}

// Poll runs the poller once and reports how many inquiries were found.
func (h *PollHandler) Poll(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": "Missing credentials"})
		return
	}

	result, err := h.poller.Run(r.Context())
	if err != nil {
		log.Printf("PollHandler: poll run failed: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Poll run failed"))
		return
	}

	if result.NewCount > 0 && h.hub != nil {
		h.hub.Broadcast("inquiries-updated", map[string]any{"newCount": result.NewCount})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"newCount": result.NewCount,
		"total":    result.Total,
	})
}
