package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/kv"
)

// InquiriesHandler exposes the stored inquiry list: listing, patching single
// records (read / addedAsShoot flags), and dismissing them.
type InquiriesHandler struct {
	store kv.Store
}

// NewInquiriesHandler creates a new InquiriesHandler instance.
func NewInquiriesHandler(store kv.Store) *InquiriesHandler {
	return &InquiriesHandler{store: store}
}

// GetInquiries returns the stored inquiry list, empty when none is stored.
func (h *InquiriesHandler) GetInquiries(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.Get(r.Context(), kv.KeyInquiries)
	if errors.Is(err, kv.ErrNotFound) || errors.Is(err, kv.ErrUnavailable) {
		WriteRawJSON(w, http.StatusOK, "[]")
		return
	}
	if err != nil {
		log.Printf("InquiriesHandler: Failed to read inquiries: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read inquiries"))
		return
	}

	WriteRawJSON(w, http.StatusOK, raw)
}

// PatchInquiry applies a partial update to the inquiry with the given id.
// The update is a free-form field map so the client can flip read or
// addedAsShoot without the server enumerating mutable fields.
func (h *InquiriesHandler) PatchInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ID      string         `json:"id"`
		Updates map[string]any `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("id and updates are required"))
		return
	}

	if !kv.Available(h.store) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}

	list, err := h.loadRaw(ctx)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read inquiries"))
		return
	}

	for i, inquiry := range list {
		if id, _ := inquiry["id"].(string); id == req.ID {
			for key, value := range req.Updates {
				list[i][key] = value
			}
		}
	}

	if err := h.saveRaw(ctx, list); err != nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to save inquiries"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// DeleteInquiry removes the inquiry with the id given in the query string.
func (h *InquiriesHandler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}

	if !kv.Available(h.store) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}

	list, err := h.loadRaw(ctx)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read inquiries"))
		return
	}

	remaining := list[:0]
	for _, inquiry := range list {
		if inquiryID, _ := inquiry["id"].(string); inquiryID != id {
			remaining = append(remaining, inquiry)
		}
	}

	if err := h.saveRaw(ctx, remaining); err != nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to save inquiries"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// loadRaw reads inquiries as generic maps so patches can touch any field.
func (h *InquiriesHandler) loadRaw(ctx context.Context) ([]map[string]any, error) {
	raw, err := h.store.Get(ctx, kv.KeyInquiries)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("InquiriesHandler: discarding unreadable inquiry list: %v", err)
		return nil, nil
	}
	return list, nil
}

func (h *InquiriesHandler) saveRaw(ctx context.Context, list []map[string]any) error {
	if list == nil {
		list = []map[string]any{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return h.store.Put(ctx, kv.KeyInquiries, string(raw))
}
