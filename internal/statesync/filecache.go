package statesync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rstanikk/dopamine/internal/models"
)

// FileCache stores the AppState as a JSON file on local disk. It plays the
// role the browser's localStorage plays for the web client: instant reads on
// startup, synchronous writes on every mutation.
type FileCache struct {
	path string
}

// NewFileCache creates a FileCache writing to path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load reads and decodes the cached state. A missing file returns (nil, nil);
// unreadable or invalid JSON also yields no prior state, with the error
// returned for logging.
func (f *FileCache) Load() (*models.AppState, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state cache: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state cache: %w", err)
	}

	return &state, nil
}

// Store encodes the state and writes it atomically (write to a temp file in
// the same directory, then rename).
func (f *FileCache) Store(state *models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state cache: %w", err)
	}

	return nil
}
