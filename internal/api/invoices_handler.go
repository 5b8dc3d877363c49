package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/invoices"
	"github.com/rstanikk/dopamine/internal/kv"
	"github.com/rstanikk/dopamine/internal/models"
)

// InvoicesHandler stores and merges invoice records from the Pixieset scraper
// and manual entry.
type InvoicesHandler struct {
	store kv.Store
}

// NewInvoicesHandler creates a new InvoicesHandler instance.
func NewInvoicesHandler(store kv.Store) *InvoicesHandler {
	return &InvoicesHandler{store: store}
}

// GetInvoices returns the stored invoice list, empty when none is stored.
func (h *InvoicesHandler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.Get(r.Context(), kv.KeyInvoices)
	if errors.Is(err, kv.ErrNotFound) || errors.Is(err, kv.ErrUnavailable) {
		WriteRawJSON(w, http.StatusOK, "[]")
		return
	}
	if err != nil {
		log.Printf("InvoicesHandler: Failed to read invoices: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read invoices"))
		return
	}

	WriteRawJSON(w, http.StatusOK, raw)
}

// PostInvoices merges the incoming list into the stored one. Incoming records
// replace stored records with the same id.
func (h *InvoicesHandler) PostInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var incoming []models.Invoice
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	if !kv.Available(h.store) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "persisted": false})
		return
	}

	var existing []models.Invoice
	raw, err := h.store.Get(ctx, kv.KeyInvoices)
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			log.Printf("InvoicesHandler: discarding unreadable invoice list: %v", err)
			existing = nil
		}
	} else if !errors.Is(err, kv.ErrNotFound) {
		log.Printf("InvoicesHandler: Failed to read invoices: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to read invoices"))
		return
	}

	merged := invoices.Merge(existing, incoming)

	encoded, err := json.Marshal(merged)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to encode invoices"))
		return
	}
	if err := h.store.Put(ctx, kv.KeyInvoices, string(encoded)); err != nil {
		log.Printf("InvoicesHandler: Failed to write invoices: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to save invoices"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "persisted": true, "count": len(merged)})
}
