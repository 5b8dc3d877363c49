package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSON encodes v to a buffer first to prevent partial writes, then sends
// it with the given status code. This is the shared response path for every
// handler.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("API: Failed to encode response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("API: Failed to write response: %v", err)
	}
}

// WriteRawJSON sends an already-encoded JSON document verbatim.
func WriteRawJSON(w http.ResponseWriter, status int, raw string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(raw)); err != nil {
		log.Printf("API: Failed to write response: %v", err)
	}
}

// errorBody is the uniform error envelope: {"error": "..."}.
func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
