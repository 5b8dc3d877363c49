// Package googleauth handles the Google OAuth authorization-code flow and
// long-lived credential storage for the Gmail and Calendar connectors.
// Refresh tokens are sealed before they reach the KV store.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rstanikk/dopamine/internal/crypto"
	"github.com/rstanikk/dopamine/internal/kv"
	"github.com/rstanikk/dopamine/internal/models"
)

// OAuth scopes requested by the connectors.
const (
	ScopeGmailReadonly = "https://www.googleapis.com/auth/gmail.readonly"
	ScopeCalendar      = "https://www.googleapis.com/auth/calendar"
)

// ErrNotConnected is returned when no usable credential is stored for an account.
var ErrNotConnected = errors.New("googleauth: account not connected")

// NewConfig builds the oauth2 config for one connector.
func NewConfig(clientID, clientSecret, redirectURL string, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// CredentialStore persists sealed OAuth tokens per account label and mints
// fresh access tokens from the stored refresh tokens.
type CredentialStore struct {
	store  kv.Store
	sealer *crypto.Sealer
	conf   *oauth2.Config
	keyFor func(account string) string
}

// NewCredentialStore creates a CredentialStore. keyFor maps an account label
// to its KV key (e.g. kv.TokensKey for Gmail, a constant for Calendar).
func NewCredentialStore(store kv.Store, sealer *crypto.Sealer, conf *oauth2.Config, keyFor func(string) string) *CredentialStore {
	return &CredentialStore{store: store, sealer: sealer, conf: conf, keyFor: keyFor}
}

// AuthCodeURL returns the consent-screen URL. access_type=offline and
// prompt=consent force Google to issue a refresh token.
func (c *CredentialStore) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens. A response without a
// refresh token is an error: the credential would be useless after an hour.
func (c *CredentialStore) Exchange(ctx context.Context, code string) (*models.GoogleTokens, error) {
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	if token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token received")
	}

	return &models.GoogleTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}, nil
}

// Save seals the tokens and stores them under the account's key.
func (c *CredentialStore) Save(ctx context.Context, account string, tokens *models.GoogleTokens) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	sealed, err := c.sealer.Seal(string(raw))
	if err != nil {
		return fmt.Errorf("failed to seal tokens: %w", err)
	}

	if err := c.store.Put(ctx, c.keyFor(account), sealed); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	return nil
}

// Load returns the stored tokens for an account, or ErrNotConnected when
// nothing usable is stored. A value that fails to unseal counts as not
// connected rather than an error: the user just reconnects.
func (c *CredentialStore) Load(ctx context.Context, account string) (*models.GoogleTokens, error) {
	sealed, err := c.store.Get(ctx, c.keyFor(account))
	if errors.Is(err, kv.ErrNotFound) || errors.Is(err, kv.ErrUnavailable) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	raw, err := c.sealer.Open(sealed)
	if err != nil {
		return nil, ErrNotConnected
	}

	var tokens models.GoogleTokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, ErrNotConnected
	}

	if tokens.RefreshToken == "" {
		return nil, ErrNotConnected
	}

	return &tokens, nil
}

// Connected reports whether a usable credential is stored for the account.
func (c *CredentialStore) Connected(ctx context.Context, account string) bool {
	_, err := c.Load(ctx, account)
	return err == nil
}

// AccessToken refreshes and returns a short-lived access token for the account.
func (c *CredentialStore) AccessToken(ctx context.Context, account string) (string, error) {
	tokens, err := c.Load(ctx, account)
	if err != nil {
		return "", err
	}

	source := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: tokens.RefreshToken})
	fresh, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	return fresh.AccessToken, nil
}
