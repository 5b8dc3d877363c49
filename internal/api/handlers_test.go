package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstanikk/dopamine/internal/calendar"
	"github.com/rstanikk/dopamine/internal/config"
	"github.com/rstanikk/dopamine/internal/crypto"
	"github.com/rstanikk/dopamine/internal/googleauth"
	"github.com/rstanikk/dopamine/internal/kv"
	"github.com/rstanikk/dopamine/internal/models"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSyncHandler(t *testing.T) {
	t.Run("returns null when nothing is stored", func(t *testing.T) {
		handler := NewSyncHandler(kv.NewMemory(), nil)

		rec := httptest.NewRecorder()
		handler.GetState(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", rec.Body.String())
	})

	t.Run("returns null without a storage backend", func(t *testing.T) {
		handler := NewSyncHandler(kv.NewDisabled(), nil)

		rec := httptest.NewRecorder()
		handler.GetState(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", rec.Body.String())
	})

	t.Run("stores and returns the posted state verbatim", func(t *testing.T) {
		handler := NewSyncHandler(kv.NewMemory(), nil)
		state := `{"projects":[{"id":"p1","name":"Wedding"}],"shoots":[]}`

		rec := httptest.NewRecorder()
		handler.PostState(rec, httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(state)))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, true, body["persisted"])

		rec = httptest.NewRecorder()
		handler.GetState(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))
		assert.Equal(t, state, rec.Body.String())
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		handler := NewSyncHandler(kv.NewMemory(), nil)

		rec := httptest.NewRecorder()
		handler.PostState(rec, httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader("{not json")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reports persisted false without a storage backend", func(t *testing.T) {
		handler := NewSyncHandler(kv.NewDisabled(), nil)

		rec := httptest.NewRecorder()
		handler.PostState(rec, httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"projects":[]}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, false, body["persisted"])
	})
}

func TestInvoicesHandler(t *testing.T) {
	ctx := context.Background()

	postInvoices := func(t *testing.T, handler *InvoicesHandler, invoices []models.Invoice) *httptest.ResponseRecorder {
		t.Helper()

		payload, err := json.Marshal(invoices)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.PostInvoices(rec, httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(payload)))
		return rec
	}

	t.Run("returns empty list when nothing is stored", func(t *testing.T) {
		handler := NewInvoicesHandler(kv.NewMemory())

		rec := httptest.NewRecorder()
		handler.GetInvoices(rec, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", rec.Body.String())
	})

	t.Run("merges incoming records into stored ones", func(t *testing.T) {
		store := kv.NewMemory()
		handler := NewInvoicesHandler(store)

		rec := postInvoices(t, handler, []models.Invoice{
			{ID: "pix-1", Client: "Alice", Status: models.InvoiceStatusUnpaid, CreatedDate: "2026-01-10"},
			{ID: "pix-2", Client: "Bob", Status: models.InvoiceStatusUnpaid, CreatedDate: "2026-02-01"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postInvoices(t, handler, []models.Invoice{
			{ID: "pix-1", Client: "Alice", Status: models.InvoiceStatusPaid, CreatedDate: "2026-01-10"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(2), body["count"])

		raw, err := store.Get(ctx, kv.KeyInvoices)
		require.NoError(t, err)
		var stored []models.Invoice
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		require.Len(t, stored, 2)
		// Newest first; pix-1 keeps its slot but carries the updated status.
		assert.Equal(t, "pix-2", stored[0].ID)
		assert.Equal(t, models.InvoiceStatusPaid, stored[1].Status)
	})

	t.Run("reports persisted false without a storage backend", func(t *testing.T) {
		handler := NewInvoicesHandler(kv.NewDisabled())

		rec := postInvoices(t, handler, []models.Invoice{{ID: "pix-1"}})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, false, body["persisted"])
	})

	t.Run("rejects a non-array body", func(t *testing.T) {
		handler := NewInvoicesHandler(kv.NewMemory())

		rec := httptest.NewRecorder()
		handler.PostInvoices(rec, httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(`{"id":"pix-1"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInquiriesHandler(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, store kv.Store) {
		t.Helper()
		raw, err := json.Marshal([]map[string]any{
			{"id": "in-1", "subject": "Wedding inquiry", "read": false},
			{"id": "in-2", "subject": "Portrait session", "read": false},
		})
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, kv.KeyInquiries, string(raw)))
	}

	stored := func(t *testing.T, store kv.Store) []map[string]any {
		t.Helper()
		raw, err := store.Get(ctx, kv.KeyInquiries)
		require.NoError(t, err)
		var list []map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &list))
		return list
	}

	t.Run("patch updates only the matching inquiry", func(t *testing.T) {
		store := kv.NewMemory()
		seed(t, store)
		handler := NewInquiriesHandler(store)

		payload := `{"id":"in-1","updates":{"read":true,"addedAsShoot":true}}`
		rec := httptest.NewRecorder()
		handler.PatchInquiry(rec, httptest.NewRequest(http.MethodPatch, "/api/gmail/inquiries", strings.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		list := stored(t, store)
		require.Len(t, list, 2)
		assert.Equal(t, true, list[0]["read"])
		assert.Equal(t, true, list[0]["addedAsShoot"])
		assert.Equal(t, false, list[1]["read"])
	})

	t.Run("patch without id is rejected", func(t *testing.T) {
		handler := NewInquiriesHandler(kv.NewMemory())

		rec := httptest.NewRecorder()
		handler.PatchInquiry(rec, httptest.NewRequest(http.MethodPatch, "/api/gmail/inquiries", strings.NewReader(`{"updates":{}}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete removes the inquiry", func(t *testing.T) {
		store := kv.NewMemory()
		seed(t, store)
		handler := NewInquiriesHandler(store)

		rec := httptest.NewRecorder()
		handler.DeleteInquiry(rec, httptest.NewRequest(http.MethodDelete, "/api/gmail/inquiries?id=in-2", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		list := stored(t, store)
		require.Len(t, list, 1)
		assert.Equal(t, "in-1", list[0]["id"])
	})

	t.Run("writes without a storage backend report ok false", func(t *testing.T) {
		handler := NewInquiriesHandler(kv.NewDisabled())

		rec := httptest.NewRecorder()
		handler.PatchInquiry(rec, httptest.NewRequest(http.MethodPatch, "/api/gmail/inquiries",
			strings.NewReader(`{"id":"in-1","updates":{"read":true}}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["ok"])
	})
}

func TestPollHandlerWithoutPoller(t *testing.T) {
	handler := NewPollHandler(nil, nil)

	rec := httptest.NewRecorder()
	handler.Poll(rec, httptest.NewRequest(http.MethodPost, "/api/gmail/poll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Missing credentials", body["reason"])
}

func TestGmailStatusHandler(t *testing.T) {
	cfg := &config.Config{
		GmailAccounts:  []string{"photography", "personal"},
		GoogleClientID: "client-id",
	}

	t.Run("unconfigured accounts report not connected", func(t *testing.T) {
		handler := NewGmailStatusHandler(cfg, kv.NewMemory(), nil)

		rec := httptest.NewRecorder()
		handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["photography"])
		assert.Equal(t, false, body["personal"])
		assert.NotContains(t, body, "_debug")
	})

	t.Run("debug flag adds environment diagnostics", func(t *testing.T) {
		handler := NewGmailStatusHandler(cfg, kv.NewDisabled(), nil)

		rec := httptest.NewRecorder()
		handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/status?debug=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		debug, ok := body["_debug"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, debug["kvAvailable"])
		assert.Equal(t, true, debug["clientIdSet"])
		assert.Equal(t, false, debug["clientSecretSet"])
	})

	t.Run("debug reports stored token lengths when storage is available", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Put(context.Background(), kv.TokensKey("photography"), "sealed-value"))
		handler := NewGmailStatusHandler(cfg, store, nil)

		rec := httptest.NewRecorder()
		handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/status?debug=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		debug, ok := body["_debug"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, debug["kvAvailable"])
		assert.Equal(t, float64(len("sealed-value")), debug["photographyTokenLength"])
		assert.Equal(t, float64(0), debug["personalTokenLength"])
	})
}

func TestAIHandler(t *testing.T) {
	t.Run("missing prompt is rejected", func(t *testing.T) {
		handler := NewAIHandler(nil)

		rec := httptest.NewRecorder()
		handler.Parse(rec, httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(`{"prompt":"  "}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing API key reports a configuration error", func(t *testing.T) {
		handler := NewAIHandler(nil)

		rec := httptest.NewRecorder()
		handler.Parse(rec, httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(`{"prompt":"shoot for emma friday"}`)))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "GEMINI_API_KEY not configured", body["error"])
	})
}

func TestCalendarHandler(t *testing.T) {
	t.Run("status without a connector reports not connected", func(t *testing.T) {
		handler := NewCalendarHandler(nil)

		rec := httptest.NewRecorder()
		handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/calendar", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["connected"])
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("create without a stored credential returns 401", func(t *testing.T) {
		sealer, err := crypto.NewSealer(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32)))
		require.NoError(t, err)
		conf := googleauth.NewConfig("client-id", "client-secret",
			"http://localhost:8080/api/calendar/callback", googleauth.ScopeCalendar)
		creds := googleauth.NewCredentialStore(kv.NewMemory(), sealer, conf,
			func(string) string { return kv.KeyCalTokens })
		handler := NewCalendarHandler(calendar.NewService(creds, "primary", nil))

		rec := httptest.NewRecorder()
		handler.CreateEvent(rec, httptest.NewRequest(http.MethodPost, "/api/calendar",
			strings.NewReader(`{"title":"Portraits","shootDate":"2026-09-12"}`)))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Calendar not connected", body["error"])
	})

	t.Run("preflight gets no content", func(t *testing.T) {
		handler := NewCalendarHandler(nil)

		rec := httptest.NewRecorder()
		handler.Options(rec, httptest.NewRequest(http.MethodOptions, "/api/calendar", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestOAuthHandler(t *testing.T) {
	newCreds := func(t *testing.T, store kv.Store) *googleauth.CredentialStore {
		t.Helper()

		sealer, err := crypto.NewSealer(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32)))
		require.NoError(t, err)

		conf := googleauth.NewConfig("client-id", "client-secret",
			"http://localhost:8080/api/gmail/callback", googleauth.ScopeGmailReadonly)
		return googleauth.NewCredentialStore(store, sealer, conf, kv.TokensKey)
	}

	t.Run("authorize without an OAuth client fails", func(t *testing.T) {
		handler := NewOAuthHandler(nil, "photography", "gmail-auth-complete", "http://localhost:8080")

		rec := httptest.NewRecorder()
		handler.Authorize(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/auth", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "GOOGLE_CLIENT_ID not set", body["error"])
	})

	t.Run("authorize redirects to the consent screen", func(t *testing.T) {
		handler := NewOAuthHandler(newCreds(t, kv.NewMemory()), "photography", "gmail-auth-complete", "http://localhost:8080")

		rec := httptest.NewRecorder()
		handler.Authorize(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/auth?account=personal", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		location := rec.Header().Get("Location")
		assert.Contains(t, location, "accounts.google.com")
		assert.Contains(t, location, "state=personal")
		assert.Contains(t, location, "access_type=offline")
	})

	t.Run("callback without a code renders a failure page", func(t *testing.T) {
		handler := NewOAuthHandler(newCreds(t, kv.NewMemory()), "photography", "gmail-auth-complete", "http://localhost:8080")

		rec := httptest.NewRecorder()
		handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/api/gmail/callback?state=personal", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		page := rec.Body.String()
		assert.Contains(t, page, "success: false")
		assert.Contains(t, page, "account: 'personal'")
		assert.Contains(t, page, "gmail-auth-complete")
	})
}
