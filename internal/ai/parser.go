package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ParsedInput is the smart-input parser's discriminated union: a project with
// a title and task list, or a shoot with extracted client/scheduling fields.
type ParsedInput struct {
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Tasks       []string `json:"tasks,omitempty"`
	ClientName  string   `json:"clientName,omitempty"`
	ClientEmail string   `json:"clientEmail,omitempty"`
	ClientPhone string   `json:"clientPhone,omitempty"`
	ShootDate   string   `json:"shootDate,omitempty"`
	EditDueDate string   `json:"editDueDate,omitempty"`
	Location    string   `json:"location,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Parser turns free-text input into a project or shoot draft.
type Parser struct {
	client *genai.Client
	model  string
	now    func() time.Time
}

// NewParser creates a Gemini-backed smart-input parser.
func NewParser(ctx context.Context, apiKey string) (*Parser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Parser{client: client, model: DefaultModel, now: time.Now}, nil
}

// Parse sends the prompt to Gemini and decodes the union result. This is a
// user-initiated primary action, so upstream and parse failures are returned
// to the caller rather than swallowed.
func (p *Parser) Parse(ctx context.Context, prompt string) (*ParsedInput, error) {
	result, err := p.client.Models.GenerateContent(ctx,
		p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(p.systemPrompt(), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.1),
			MaxOutputTokens:   1024,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini parse failed: %w", err)
	}

	return DecodeParsedInput(result.Text())
}

// DecodeParsedInput validates the model's raw JSON against the union contract.
func DecodeParsedInput(raw string) (*ParsedInput, error) {
	var parsed ParsedInput
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	switch parsed.Type {
	case "project":
		if parsed.Title == "" || len(parsed.Tasks) == 0 {
			return nil, fmt.Errorf("project result is missing title or tasks")
		}
	case "shoot":
		// All shoot fields are optional extractions.
	default:
		return nil, fmt.Errorf("model returned unknown type %q", parsed.Type)
	}

	parsed.ClientName = nullToEmpty(parsed.ClientName)
	parsed.ClientEmail = nullToEmpty(parsed.ClientEmail)
	parsed.ClientPhone = nullToEmpty(parsed.ClientPhone)
	parsed.ShootDate = nullToEmpty(parsed.ShootDate)
	parsed.EditDueDate = nullToEmpty(parsed.EditDueDate)
	parsed.Location = nullToEmpty(parsed.Location)
	parsed.Notes = nullToEmpty(parsed.Notes)

	return &parsed, nil
}

func (p *Parser) systemPrompt() string {
	return fmt.Sprintf(`You are a strict JSON-only data parser for a commercial photographer's business tool.
Output ONLY valid JSON — no markdown, no code fences, no explanation whatsoever.

Current Date: %s

Determine if the input describes a 'project' (internal multi-step goal) or a 'shoot' (client photography job/appointment).

If PROJECT, return exactly:
{"type":"project","title":"concise project name","tasks":["task 1","task 2","task 3","task 4"]}

If SHOOT, return exactly:
{"type":"shoot","title":"shoot title or null","clientName":"name or null","clientEmail":"email or null","clientPhone":"UK format or null","shootDate":"YYYY-MM-DD or null","editDueDate":"YYYY-MM-DD (shootDate+14 if missing) or null","location":"full address or null","price":number or null,"notes":"extra info or null"}

Parse every detail from the input. Use null for any missing field. Output raw JSON only.`,
		p.now().UTC().Format(time.RFC3339))
}
