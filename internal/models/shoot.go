package models

import "time"

// Invoice status values for a shoot.
const (
	InvoiceUnsent  = "Unsent"
	InvoiceSent    = "Sent"
	InvoiceOverdue = "Overdue"
	InvoicePaid    = "Paid"
)

// Shoot is a scheduled client photography booking. Its lifecycle is tracked as
// five boolean stages in Progress; ExportUpload marks the shoot complete.
type Shoot struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	ClientName    string         `json:"clientName,omitempty"`
	ClientEmail   string         `json:"clientEmail,omitempty"`
	ClientContact string         `json:"clientContact,omitempty"`
	ShootDate     *time.Time     `json:"shootDate,omitempty"`
	EditDueDate   *time.Time     `json:"editDueDate,omitempty"`
	Location      string         `json:"location,omitempty"`
	Price         float64        `json:"price,omitempty"`
	InvoiceStatus string         `json:"invoiceStatus,omitempty"`
	Progress      ShootProgress  `json:"progress"`
	Assets        []Attachment   `json:"assets"`
	Notes         string         `json:"notes,omitempty"`
}

type ShootProgress struct {
	Shoot        bool `json:"shoot"`
	Tickoff      bool `json:"tickoff"`
	Cull         bool `json:"cull"`
	Edit         bool `json:"edit"`
	ExportUpload bool `json:"exportUpload"`
}
