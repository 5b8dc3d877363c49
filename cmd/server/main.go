package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rstanikk/dopamine/internal/ai"
	"github.com/rstanikk/dopamine/internal/api"
	"github.com/rstanikk/dopamine/internal/calendar"
	"github.com/rstanikk/dopamine/internal/config"
	"github.com/rstanikk/dopamine/internal/crypto"
	"github.com/rstanikk/dopamine/internal/gmail"
	"github.com/rstanikk/dopamine/internal/googleauth"
	"github.com/rstanikk/dopamine/internal/kv"
	ws "github.com/rstanikk/dopamine/internal/websocket"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var store kv.Store
	if cfg.HasDatabase() {
		pool, err := kv.NewConnection(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		pg := kv.NewPostgres(pool)
		defer pg.Close()
		store = pg
		log.Printf("Successfully connected to database")
	} else {
		store = kv.NewDisabled()
		log.Printf("No database configured, running in local-only mode")
	}

	server, poller, hub := NewServer(ctx, cfg, store)

	if poller != nil {
		go runBackgroundPoller(ctx, poller, hub, cfg.PollInterval)
	}

	address := ":" + cfg.Port
	log.Printf("Dopamine backend server starting on %s (environment: %s)", address, cfg.Environment)

	if err := http.ListenAndServe(address, server); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// NewServer wires the handlers and returns the HTTP handler plus the poller
// (nil when Gmail polling is not configured) and the push hub.
func NewServer(ctx context.Context, cfg *config.Config, store kv.Store) (http.Handler, *gmail.Poller, *ws.Hub) {
	sealer, err := crypto.NewSealer(cfg.EncryptionKeyBase64)
	if err != nil {
		log.Fatalf("Failed to create sealer: %v", err)
	}

	wsHub := ws.NewHub(10)

	var gmailCreds, calendarCreds *googleauth.CredentialStore
	if cfg.HasGoogleCredentials() {
		gmailConf := googleauth.NewConfig(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.BaseURL+"/api/gmail/callback", googleauth.ScopeGmailReadonly)
		gmailCreds = googleauth.NewCredentialStore(store, sealer, gmailConf, kv.TokensKey)

		calendarConf := googleauth.NewConfig(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.BaseURL+"/api/calendar/callback", googleauth.ScopeCalendar)
		calendarCreds = googleauth.NewCredentialStore(store, sealer, calendarConf,
			func(string) string { return kv.KeyCalTokens })
	} else {
		log.Printf("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, Gmail and Calendar connectors disabled")
	}

	var parser *ai.Parser
	var poller *gmail.Poller
	if cfg.GeminiAPIKey != "" {
		parser, err = ai.NewParser(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create AI parser: %v", err)
		}

		// The poller needs somewhere to store inquiries and its bookmark, so
		// local-only mode runs without it.
		if gmailCreds != nil && kv.Available(store) {
			classifier, err := ai.NewClassifier(ctx, cfg.GeminiAPIKey)
			if err != nil {
				log.Fatalf("Failed to create AI classifier: %v", err)
			}
			poller = gmail.NewPoller(store, gmailCreds, gmail.NewClient(nil), classifier, cfg.GmailAccounts)
		}
	} else {
		log.Printf("GEMINI_API_KEY not set, inquiry classification and smart input disabled")
	}

	var calendarService *calendar.Service
	if calendarCreds != nil {
		calendarService = calendar.NewService(calendarCreds, cfg.CalendarID, nil)
	}

	defaultAccount := cfg.GmailAccounts[0]

	syncHandler := api.NewSyncHandler(store, wsHub)
	invoicesHandler := api.NewInvoicesHandler(store)
	inquiriesHandler := api.NewInquiriesHandler(store)
	pollHandler := api.NewPollHandler(poller, wsHub)
	statusHandler := api.NewGmailStatusHandler(cfg, store, gmailCreds)
	gmailAuthHandler := api.NewOAuthHandler(gmailCreds, defaultAccount, "gmail-auth-complete", cfg.BaseURL)
	calendarAuthHandler := api.NewOAuthHandler(calendarCreds, "", "calendar-auth-complete", cfg.BaseURL)
	calendarHandler := api.NewCalendarHandler(calendarService)
	aiHandler := api.NewAIHandler(parser)
	wsHandler := api.NewWebSocketHandler(wsHub)

	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)

	mux.Handle("/api/sync", methods(map[string]http.HandlerFunc{
		http.MethodGet:  syncHandler.GetState,
		http.MethodPost: syncHandler.PostState,
	}))
	mux.Handle("/api/invoices", methods(map[string]http.HandlerFunc{
		http.MethodGet:  invoicesHandler.GetInvoices,
		http.MethodPost: invoicesHandler.PostInvoices,
	}))
	mux.Handle("/api/gmail/inquiries", methods(map[string]http.HandlerFunc{
		http.MethodGet:    inquiriesHandler.GetInquiries,
		http.MethodPost:   inquiriesHandler.PatchInquiry,
		http.MethodPatch:  inquiriesHandler.PatchInquiry,
		http.MethodDelete: inquiriesHandler.DeleteInquiry,
	}))
	mux.Handle("/api/gmail/poll", methods(map[string]http.HandlerFunc{
		http.MethodGet:  pollHandler.Poll,
		http.MethodPost: pollHandler.Poll,
	}))
	mux.Handle("/api/gmail/status", methods(map[string]http.HandlerFunc{
		http.MethodGet: statusHandler.GetStatus,
	}))
	mux.Handle("/api/gmail/auth", methods(map[string]http.HandlerFunc{
		http.MethodGet: gmailAuthHandler.Authorize,
	}))
	mux.Handle("/api/gmail/callback", methods(map[string]http.HandlerFunc{
		http.MethodGet: gmailAuthHandler.Callback,
	}))
	mux.Handle("/api/calendar", methods(map[string]http.HandlerFunc{
		http.MethodGet:     calendarHandler.GetStatus,
		http.MethodPost:    calendarHandler.CreateEvent,
		http.MethodOptions: calendarHandler.Options,
	}))
	mux.Handle("/api/calendar/auth", methods(map[string]http.HandlerFunc{
		http.MethodGet: calendarAuthHandler.Authorize,
	}))
	mux.Handle("/api/calendar/callback", methods(map[string]http.HandlerFunc{
		http.MethodGet: calendarAuthHandler.Callback,
	}))
	mux.Handle("/api/ai", methods(map[string]http.HandlerFunc{
		http.MethodPost: aiHandler.Parse,
	}))
	mux.Handle("/api/ws", http.HandlerFunc(wsHandler.Handle))

	return mux, poller, wsHub
}

// methods dispatches by HTTP method and rejects everything else.
func methods(handlers map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

// runBackgroundPoller drives the inquiry poller on a fixed interval and
// pushes a notification when new inquiries arrive.
func runBackgroundPoller(ctx context.Context, poller *gmail.Poller, hub *ws.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := poller.Run(ctx)
			if err != nil {
				log.Printf("Background poll failed: %v", err)
				continue
			}
			if result.NewCount > 0 {
				hub.Broadcast("inquiries-updated", map[string]any{"newCount": result.NewCount})
			}
		}
	}
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Dopamine API is running")
}
