package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/rstanikk/dopamine/internal/googleauth"
)

// OAuthHandler runs the authorization-code flow for one connector (Gmail or
// Calendar). The callback renders an HTML page that reports the result to the
// opener window via postMessage and closes itself.
type OAuthHandler struct {
	creds          *googleauth.CredentialStore
	defaultAccount string
	messageType    string
	appOrigin      string
}

// NewOAuthHandler creates a new OAuthHandler instance. creds is nil when no
// OAuth client id/secret is configured. messageType names the postMessage
// event, e.g. "gmail-auth-complete".
func NewOAuthHandler(creds *googleauth.CredentialStore, defaultAccount, messageType, appOrigin string) *OAuthHandler {
	return &OAuthHandler{
		creds:          creds,
		defaultAccount: defaultAccount,
		messageType:    messageType,
		appOrigin:      appOrigin,
	}
}

// Authorize redirects to the Google consent screen. The account label rides
// in the OAuth state parameter.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	if h.creds == nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody("GOOGLE_CLIENT_ID not set"))
		return
	}

	account := r.URL.Query().Get("account")
	if account == "" {
		account = h.defaultAccount
	}

	http.Redirect(w, r, h.creds.AuthCodeURL(account), http.StatusFound)
}

// Callback exchanges the authorization code, stores the sealed tokens, and
// verifies the write before reporting success.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account := r.URL.Query().Get("state")
	if account == "" {
		account = h.defaultAccount
	}

	code := r.URL.Query().Get("code")
	if code == "" || h.creds == nil {
		h.renderResult(w, "Connection failed",
			"Missing authorization code or OAuth client configuration.", false, account)
		return
	}

	tokens, err := h.creds.Exchange(ctx, code)
	if err != nil {
		h.renderResult(w, "Token exchange failed", fmt.Sprintf("Google returned: %v.", err), false, account)
		return
	}

	if err := h.creds.Save(ctx, account, tokens); err != nil {
		log.Printf("OAuthHandler: failed to store tokens for %s: %v", account, err)
		h.renderResult(w, "Storage error",
			"Tokens obtained but could not be saved. Check the database configuration.", false, account)
		return
	}

	// Verify the write by reading the credential back.
	if _, err := h.creds.Load(ctx, account); err != nil {
		h.renderResult(w, "Verification failed",
			"Tokens were written but could not be read back.", false, account)
		return
	}

	h.renderResult(w, fmt.Sprintf("Connected for %s!", account),
		"Your account is now linked.", true, account)
}

func (h *OAuthHandler) renderResult(w http.ResponseWriter, title, message string, success bool, account string) {
	icon := "&#10007;"
	if success {
		icon = "&#10003;"
	}

	w.Header().Set("Content-Type", "text/html")
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>%[1]s</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #0f172a; color: #e2e8f0; }
  .card { text-align: center; padding: 3rem; max-width: 400px; }
  .icon { font-size: 3rem; margin-bottom: 1rem; }
  h2 { margin: 0 0 0.5rem; font-size: 1.5rem; }
  p { color: #94a3b8; font-size: 0.875rem; line-height: 1.5; }
</style>
</head><body>
<div class="card">
  <div class="icon">%[2]s</div>
  <h2>%[1]s</h2>
  <p>%[3]s</p>
  <p id="status" style="margin-top: 1rem; font-size: 0.75rem; color: #64748b;">This window will close automatically&hellip;</p>
</div>
<script>
  try {
    if (window.opener) {
      window.opener.postMessage({
        type: '%[4]s',
        success: %[5]t,
        account: '%[6]s'
      }, '%[7]s');
      setTimeout(function() { window.close(); }, 1500);
    } else {
      document.getElementById('status').textContent = 'Redirecting back to Dopamine…';
      setTimeout(function() { window.location.href = '%[7]s'; }, 2000);
    }
  } catch(e) {
    document.getElementById('status').textContent = 'You can close this tab and return to the app.';
  }
</script>
</body></html>`, title, icon, message, h.messageType, success, account, h.appOrigin)
	if err != nil {
		log.Printf("OAuthHandler: failed to write callback page: %v", err)
	}
}
