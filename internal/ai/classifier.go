// Package ai wraps the Gemini calls Dopamine makes: classifying inbox
// messages as booking enquiries and parsing free-text input into projects or
// shoots. Both use JSON response mode with low temperature; malformed model
// output is handled by the callers' contracts, never raised to users.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rstanikk/dopamine/internal/models"
)

// DefaultModel is used for both classification and smart-input parsing.
const DefaultModel = "gemini-3-flash"

// Classification is the classifier's verdict on one email.
type Classification struct {
	IsInquiry bool                 `json:"isInquiry"`
	Extracted models.ExtractedData `json:"extractedData"`
}

// Classifier decides whether an email is a genuine booking enquiry.
type Classifier struct {
	client *genai.Client
	model  string
}

// NewClassifier creates a Gemini-backed classifier.
func NewClassifier(ctx context.Context, apiKey string) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Classifier{client: client, model: DefaultModel}, nil
}

// Classify asks Gemini whether the email is a genuine shoot booking enquiry
// and extracts client details when it is. Upstream errors are returned;
// unparseable model output is not, it counts as a negative.
func (c *Classifier) Classify(ctx context.Context, subject, from, body string) (Classification, error) {
	prompt := buildClassifierPrompt(subject, from, body)

	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.1),
			MaxOutputTokens:  512,
		},
	)
	if err != nil {
		return Classification{}, fmt.Errorf("Gemini classification failed: %w", err)
	}

	return ParseClassification(result.Text()), nil
}

// ParseClassification decodes the classifier's raw output. Any malformed or
// unparseable response yields a negative classification rather than an error,
// so an ambiguous model answer can never enqueue an inquiry.
func ParseClassification(raw string) Classification {
	var parsed struct {
		IsInquiry   bool   `json:"isInquiry"`
		ClientName  string `json:"clientName"`
		ClientEmail string `json:"clientEmail"`
		ClientPhone string `json:"clientPhone"`
		ShootType   string `json:"shootType"`
		ShootDate   string `json:"shootDate"`
		Location    string `json:"location"`
		Notes       string `json:"notes"`
	}

	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return Classification{}
	}

	if !parsed.IsInquiry {
		return Classification{}
	}

	return Classification{
		IsInquiry: true,
		Extracted: models.ExtractedData{
			ClientName:  nullToEmpty(parsed.ClientName),
			ClientEmail: nullToEmpty(parsed.ClientEmail),
			ClientPhone: nullToEmpty(parsed.ClientPhone),
			ShootType:   nullToEmpty(parsed.ShootType),
			ShootDate:   nullToEmpty(parsed.ShootDate),
			Location:    nullToEmpty(parsed.Location),
			Notes:       nullToEmpty(parsed.Notes),
		},
	}
}

// stripFences removes a markdown code fence around a JSON payload. JSON
// response mode mostly prevents fences, but model output is not trusted.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}

// The model is told to use the string "null" for missing fields; treat it the
// same as an absent value.
func nullToEmpty(value string) string {
	if strings.EqualFold(value, "null") {
		return ""
	}
	return value
}

func buildClassifierPrompt(subject, from, body string) string {
	return fmt.Sprintf(`You are a strict email filter for Ryan Stanikk, a freelance commercial photographer based in Southampton, UK.

Your ONLY job is to identify genuine shoot booking enquiries from real potential clients — someone who actually wants to hire Ryan to photograph something for them.

Email to analyse:
Subject: %s
From: %s
Body: %s

IMMEDIATELY return isInquiry: false for ANY of the following — no exceptions:
- Photo editing, retouching, culling, or clipping mask services
- SEO, web design, digital marketing, or social media services
- Cold sales pitches or "we can help your business" emails
- Newsletters, mailing lists, or automated marketing emails
- Unsolicited offers from other photographers or creative agencies
- Anyone offering outsourced services (editing, printing, album design, etc.)
- Emails from noreply@, donotreply@, or obvious automated senders
- Emails that don't mention hiring a photographer or booking a shoot
- Generic "hi I found your website" opener with a sales pitch
- Any email where the sender is trying to sell Ryan something

Return isInquiry: true ONLY if ALL of these are true:
1. A real human is writing to Ryan to enquire about booking him as a photographer
2. The email is clearly about a specific shoot (wedding, portrait, commercial, event, product, etc.)
3. There is no sign the sender is a business trying to sell services

Return ONLY valid JSON, no markdown:
{"isInquiry": true/false, "clientName": "name or null", "clientEmail": "reply-to email or null", "clientPhone": "UK format or null", "shootType": "e.g. wedding/portrait/commercial/product/event or null", "shootDate": "YYYY-MM-DD or null", "location": "location or null", "notes": "budget, brief, or other key details or null"}`,
		subject, from, body)
}
