package statesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rstanikk/dopamine/internal/models"
)

// HTTPRemote talks to the /api/sync endpoint. The state shape is opaque to
// the transport; it only cares about the top-level envelope.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote creates a remote for the server at baseURL.
func NewHTTPRemote(baseURL string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPRemote{baseURL: baseURL, client: client}
}

// Fetch returns the stored state, or nil when the server has none.
func (r *HTTPRemote) Fetch(ctx context.Context) (*models.AppState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/sync", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync response: %w", err)
	}

	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse sync response: %w", err)
	}

	return &state, nil
}

// Push writes the state to the server.
func (r *HTTPRemote) Push(ctx context.Context, state *models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/sync", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync push failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync push returned status %d", resp.StatusCode)
	}

	return nil
}
