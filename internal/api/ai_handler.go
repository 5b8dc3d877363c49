package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/rstanikk/dopamine/internal/ai"
)

// AIHandler turns free-text prompts into structured projects or shoots.
type AIHandler struct {
	parser *ai.Parser
}

// NewAIHandler creates a new AIHandler instance. parser is nil when no
// Gemini API key is configured.
func NewAIHandler(parser *ai.Parser) *AIHandler {
	return &AIHandler{parser: parser}
}

// Parse handles POST /api/ai.
func (h *AIHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("Missing prompt"))
		return
	}

	if h.parser == nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("GEMINI_API_KEY not configured"))
		return
	}

	parsed, err := h.parser.Parse(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("AIHandler: parse failed: %v", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, parsed)
}
