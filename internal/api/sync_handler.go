package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/kv"
	ws "github.com/rstanikk/dopamine/internal/websocket"
)

// SyncHandler reads and writes the opaque AppState document. The handler
// never interprets the state beyond checking that it is valid JSON.
type SyncHandler struct {
	store kv.Store
	hub   *ws.Hub
}

// NewSyncHandler creates a new SyncHandler instance.
func NewSyncHandler(store kv.Store, hub *ws.Hub) *SyncHandler {
	return &SyncHandler{store: store, hub: hub}
}

// GetState returns the stored AppState blob, or null when none is stored
// (including local-only mode without a backend).
func (h *SyncHandler) GetState(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.Get(r.Context(), kv.KeyState)
	if errors.Is(err, kv.ErrNotFound) || errors.Is(err, kv.ErrUnavailable) {
		WriteRawJSON(w, http.StatusOK, "null")
		return
	}
	if err != nil {
		log.Printf("SyncHandler: Failed to read state: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read state"))
		return
	}

	WriteRawJSON(w, http.StatusOK, raw)
}

// PostState stores the request body as the new AppState. Without a backend
// the write is a silent no-op reported as persisted: false.
func (h *SyncHandler) PostState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody("Failed to read request body"))
		return
	}

	if !json.Valid(body) {
		WriteJSON(w, http.StatusBadRequest, errorBody("State must be valid JSON"))
		return
	}

	err = h.store.Put(r.Context(), kv.KeyState, string(body))
	if errors.Is(err, kv.ErrUnavailable) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "persisted": false})
		return
	}
	if err != nil {
		log.Printf("SyncHandler: Failed to write state: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to save state"))
		return
	}

	if h.hub != nil {
		h.hub.Broadcast("state-synced", nil)
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "persisted": true})
}
