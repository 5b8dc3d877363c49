package api

import (
	"net/http"

	"github.com/rstanikk/dopamine/internal/config"
	"github.com/rstanikk/dopamine/internal/googleauth"
	"github.com/rstanikk/dopamine/internal/kv"
)

// GmailStatusHandler reports per-account connection status, so the UI can
// tell "not connected" apart from "connected but quiet".
type GmailStatusHandler struct {
	cfg   *config.Config
	store kv.Store
	creds *googleauth.CredentialStore
}

// NewGmailStatusHandler creates a new GmailStatusHandler instance. creds may
// be nil when no OAuth client is configured.
func NewGmailStatusHandler(cfg *config.Config, store kv.Store, creds *googleauth.CredentialStore) *GmailStatusHandler {
	return &GmailStatusHandler{cfg: cfg, store: store, creds: creds}
}

// GetStatus returns a connected flag per configured account. ?debug=1 adds
// environment diagnostics.
func (h *GmailStatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := make(map[string]any, len(h.cfg.GmailAccounts)+1)
	for _, account := range h.cfg.GmailAccounts {
		status[account] = h.creds != nil && h.creds.Connected(ctx, account)
	}

	if r.URL.Query().Get("debug") == "1" {
		debug := map[string]any{
			"kvAvailable":     kv.Available(h.store),
			"clientIdSet":     h.cfg.GoogleClientID != "",
			"clientSecretSet": h.cfg.GoogleClientSecret != "",
			"geminiKeySet":    h.cfg.GeminiAPIKey != "",
		}
		if kv.Available(h.store) {
			for _, account := range h.cfg.GmailAccounts {
				sealed, err := h.store.Get(ctx, kv.TokensKey(account))
				if err != nil {
					sealed = ""
				}
				debug[account+"TokenLength"] = len(sealed)
			}
		}
		status["_debug"] = debug
	}

	WriteJSON(w, http.StatusOK, status)
}
