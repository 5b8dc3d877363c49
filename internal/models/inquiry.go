package models

// MaxInquiries caps the stored inquiry list at the most recent entries.
const MaxInquiries = 50

// EmailInquiry is a classifier-confirmed booking enquiry extracted from an
// inbox message. ID is the Gmail message id, unique across accounts.
type EmailInquiry struct {
	ID            string        `json:"id"`
	Account       string        `json:"account"`
	Subject       string        `json:"subject"`
	From          string        `json:"from"`
	Date          string        `json:"date"`
	Body          string        `json:"body"`
	ExtractedData ExtractedData `json:"extractedData"`
	Read          bool          `json:"read"`
	AddedAsShoot  bool          `json:"addedAsShoot"`
}

// ExtractedData holds the classifier's best-effort structured extraction.
type ExtractedData struct {
	ClientName  string `json:"clientName,omitempty"`
	ClientEmail string `json:"clientEmail,omitempty"`
	ClientPhone string `json:"clientPhone,omitempty"`
	ShootType   string `json:"shootType,omitempty"`
	ShootDate   string `json:"shootDate,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// GoogleTokens is the token payload stored (sealed) per connected account.
type GoogleTokens struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
