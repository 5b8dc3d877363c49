// Package calendar creates events in the photography Google Calendar from
// booked shoots.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rstanikk/dopamine/internal/googleauth"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// eventDuration is how long a timed shoot event lasts.
const eventDuration = 4 * time.Hour

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// EventRequest describes the event to create. ShootDate accepts either a
// plain YYYY-MM-DD or a full ISO timestamp (date values serialize as ISO
// strings on the wire). A valid HH:MM ShootTime produces a timed event;
// otherwise the event is all-day.
type EventRequest struct {
	Title      string  `json:"title"`
	ShootDate  string  `json:"shootDate"`
	ShootTime  string  `json:"shootTime,omitempty"`
	Location   string  `json:"location,omitempty"`
	ClientName string  `json:"clientName,omitempty"`
	Price      float64 `json:"price,omitempty"`
}

// CreatedEvent is returned after a successful insert.
type CreatedEvent struct {
	EventID  string `json:"eventId"`
	HTMLLink string `json:"htmlLink"`
}

// UpstreamError carries the Calendar API's status and message so the handler
// can propagate them for this user-initiated action.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("calendar API returned status %d: %s", e.Status, e.Message)
}

// Service inserts events using a refreshed access token from the stored
// calendar credential.
type Service struct {
	creds      *googleauth.CredentialStore
	calendarID string
	baseURL    string
	httpClient *http.Client
}

// NewService creates a calendar Service for the given calendar id.
func NewService(creds *googleauth.CredentialStore, calendarID string, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		creds:      creds,
		calendarID: calendarID,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// Connected reports whether a calendar credential is stored.
func (s *Service) Connected(ctx context.Context) bool {
	return s.creds.Connected(ctx, "")
}

// CreateEvent inserts the event and returns its id and link.
func (s *Service) CreateEvent(ctx context.Context, req EventRequest) (*CreatedEvent, error) {
	if req.ShootDate == "" {
		return nil, fmt.Errorf("shootDate is required")
	}

	accessToken, err := s.creds.AccessToken(ctx, "")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildEvent(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", s.baseURL, url.PathEscape(s.calendarID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calendar insert failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var upstream struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&upstream)
		message := upstream.Error.Message
		if message == "" {
			message = "Calendar API error"
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Message: message}
	}

	var created CreatedEvent
	var payload struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode created event: %w", err)
	}
	created.EventID = payload.ID
	created.HTMLLink = payload.HTMLLink

	return &created, nil
}

// event matches the Calendar v3 insert payload.
type event struct {
	Summary     string     `json:"summary"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Start       eventPoint `json:"start"`
	End         eventPoint `json:"end"`
}

type eventPoint struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func buildEvent(req EventRequest) event {
	// Date values arrive as either YYYY-MM-DD or a full ISO timestamp.
	dateStr := strings.SplitN(req.ShootDate, "T", 2)[0]

	var descriptionParts []string
	if req.ClientName != "" {
		descriptionParts = append(descriptionParts, "Client: "+req.ClientName)
	}
	if req.Price > 0 {
		descriptionParts = append(descriptionParts, fmt.Sprintf("Fee: £%g", req.Price))
	}

	title := req.Title
	if title == "" {
		title = "Photography Shoot"
	}

	e := event{
		Summary:     title,
		Location:    req.Location,
		Description: strings.Join(descriptionParts, "\n"),
	}

	if timePattern.MatchString(req.ShootTime) {
		start, err := time.Parse(time.RFC3339, dateStr+"T"+req.ShootTime+":00Z")
		if err == nil {
			e.Start = eventPoint{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"}
			e.End = eventPoint{DateTime: start.Add(eventDuration).Format(time.RFC3339), TimeZone: "UTC"}
			return e
		}
	}

	e.Start = eventPoint{Date: dateStr}
	e.End = eventPoint{Date: dateStr}
	return e
}
