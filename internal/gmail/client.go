// Package gmail lists and fetches inbox messages over the Gmail REST API and
// runs the inquiry poller on top of them.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
)

const (
	defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

	// MaxBodyChars bounds how much body text is kept per message before
	// classification.
	MaxBodyChars = 2000

	// maxListResults caps the page size per poll run to bound per-run cost.
	maxListResults = 10
)

// MessageRef identifies a listed message.
type MessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// Message is the fetched content the classifier sees.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    string
	Body    string
}

// MailClient is the capability interface the poller depends on.
type MailClient interface {
	ListMessages(ctx context.Context, accessToken string, after time.Time) ([]MessageRef, error)
	GetMessage(ctx context.Context, accessToken, id string) (*Message, error)
}

// Client calls the Gmail REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gmail API client.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, httpClient: httpClient}
}

// listQuery narrows results at the mailbox side: inbox only, received after
// the bookmark, excluding the user's own outgoing mail and common
// bulk/automated senders.
func listQuery(after time.Time) string {
	return strings.Join([]string{
		"is:inbox",
		fmt.Sprintf("after:%d", after.Unix()),
		"-from:me",
		"-from:noreply",
		"-from:donotreply",
		"-from:no-reply",
		"-from:mailchimp",
		"-from:newsletter",
		"-from:notifications",
		"-category:promotions",
		"-category:updates",
		"-category:social",
	}, " ")
}

// ListMessages returns refs for inbox messages received after the given time.
func (c *Client) ListMessages(ctx context.Context, accessToken string, after time.Time) ([]MessageRef, error) {
	endpoint := fmt.Sprintf("%s/users/me/messages?q=%s&maxResults=%d",
		c.baseURL, url.QueryEscape(listQuery(after)), maxListResults)

	var response struct {
		Messages []MessageRef `json:"messages"`
	}
	if err := c.getJSON(ctx, accessToken, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return response.Messages, nil
}

// GetMessage fetches one message in raw RFC-822 form and extracts the headers
// and plain-text body, truncated to MaxBodyChars.
func (c *Client) GetMessage(ctx context.Context, accessToken, id string) (*Message, error) {
	endpoint := fmt.Sprintf("%s/users/me/messages/%s?format=raw", c.baseURL, url.PathEscape(id))

	var response struct {
		Raw string `json:"raw"`
	}
	if err := c.getJSON(ctx, accessToken, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(response.Raw, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}

	return parseRawMessage(id, raw)
}

// parseRawMessage extracts subject, sender, date, and body text from an
// RFC-822 message.
func parseRawMessage(id string, raw []byte) (*Message, error) {
	envelope, err := enmime.ReadEnvelope(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message %s: %w", id, err)
	}

	subject := envelope.GetHeader("Subject")
	if subject == "" {
		subject = "(no subject)"
	}

	// Truncate on rune boundaries so a multi-byte character at the limit is
	// dropped whole rather than split.
	body := envelope.Text
	if utf8.RuneCountInString(body) > MaxBodyChars {
		body = string([]rune(body)[:MaxBodyChars])
	}

	return &Message{
		ID:      id,
		Subject: subject,
		From:    envelope.GetHeader("From"),
		Date:    envelope.GetHeader("Date"),
		Body:    body,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gmail API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
