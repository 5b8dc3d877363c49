package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/calendar"
	"github.com/rstanikk/dopamine/internal/googleauth"
)

// CalendarHandler exposes the calendar connector: connection status and
// shoot event creation. The endpoints carry permissive CORS headers because
// the client can run on a different origin than the API.
type CalendarHandler struct {
	service *calendar.Service
}

// NewCalendarHandler creates a new CalendarHandler instance.
func NewCalendarHandler(service *calendar.Service) *CalendarHandler {
	return &CalendarHandler{service: service}
}

func (h *CalendarHandler) setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// Options answers CORS preflight requests.
func (h *CalendarHandler) Options(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus reports whether a calendar credential with a refresh token is on
// file.
func (h *CalendarHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w)

	connected := false
	if h.service != nil {
		connected = h.service.Connected(r.Context())
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// CreateEvent creates a calendar event for a shoot.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w)

	if h.service == nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("Calendar connector not configured"))
		return
	}

	var req calendar.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}

	created, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		var upstream *calendar.UpstreamError
		switch {
		case errors.Is(err, googleauth.ErrNotConnected):
			WriteJSON(w, http.StatusUnauthorized, errorBody("Calendar not connected"))
		case errors.As(err, &upstream):
			// Event creation is user-initiated, so the upstream verdict is
			// forwarded as-is.
			log.Printf("CalendarHandler: event creation rejected upstream: %v", err)
			WriteJSON(w, upstream.Status, errorBody(upstream.Message))
		default:
			WriteJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"event": created,
	})
}
