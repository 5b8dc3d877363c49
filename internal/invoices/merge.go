// Package invoices reconciles scraper-sourced and manually entered invoice
// records into one authoritative list.
package invoices

import (
	"sort"

	"github.com/rstanikk/dopamine/internal/models"
)

// Merge combines existing and incoming invoice lists by id. Incoming records
// always win, replacing the stored record field for field rather than patching
// it. The result is sorted newest-first by creation date, falling back to the
// id string for records without one.
func Merge(existing, incoming []models.Invoice) []models.Invoice {
	byID := make(map[string]models.Invoice, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	for _, inv := range existing {
		if _, seen := byID[inv.ID]; !seen {
			order = append(order, inv.ID)
		}
		byID[inv.ID] = inv
	}
	for _, inv := range incoming {
		if _, seen := byID[inv.ID]; !seen {
			order = append(order, inv.ID)
		}
		byID[inv.ID] = inv
	}

	merged := make([]models.Invoice, 0, len(byID))
	for _, id := range order {
		merged = append(merged, byID[id])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortKey() > merged[j].SortKey()
	})

	return merged
}
