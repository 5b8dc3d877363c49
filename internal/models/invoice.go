package models

// Invoice statuses as reported by Pixieset and manual entry.
const (
	InvoiceStatusPaid      = "paid"
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusDraft     = "draft"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice is a billing record, either scraped from Pixieset (ids of the form
// "pix-<number>") or entered manually. Identity is the ID; a later write with
// the same ID fully replaces the earlier record.
type Invoice struct {
	ID          string  `json:"id"`
	Number      string  `json:"number,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Client      string  `json:"client,omitempty"`
	Project     string  `json:"project,omitempty"`
	Status      string  `json:"status,omitempty"`
	DueDate     string  `json:"dueDate,omitempty"`
	CreatedDate string  `json:"createdDate,omitempty"`
}

// SortKey orders invoices newest-first: creation date when present, otherwise
// the id string, compared lexicographically.
func (i Invoice) SortKey() string {
	if i.CreatedDate != "" {
		return i.CreatedDate
	}
	return i.ID
}
