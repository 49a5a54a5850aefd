package models

import (
	"strconv"
	"strings"
)

// Expense represents a single expense record as served by the API.
type Expense struct {
	// ID is the unique identifier assigned by the server (UUID format).
	ID string `json:"id"`

	// Group is the ID of the group this expense belongs to.
	Group string `json:"group,omitempty"`

	// Name is the short display name of the expense.
	Name string `json:"name"`

	// Description is an optional longer note.
	Description string `json:"description,omitempty"`

	// Amount is the expense amount as a decimal string, exactly as the
	// backend serializes it (e.g. "42.50").
	Amount string `json:"amount"`

	// PersonPaying is the user ID of the payer. Nil when the record
	// carries no payer.
	PersonPaying *int `json:"person_paying,omitempty"`

	// Date is the ISO timestamp the server assigned at creation.
	Date string `json:"date,omitempty"`

	// UpdatedAt is the ISO timestamp of the last server-side change.
	// Drives incremental sync.
	UpdatedAt string `json:"updated_at,omitempty"`

	// IsDeleted marks soft-deleted records. The server still returns
	// them from the listing endpoint.
	IsDeleted bool `json:"is_deleted,omitempty"`
}

// AmountValue parses the decimal amount string. A malformed amount counts
// as zero so that one bad record never breaks display aggregation.
func (e *Expense) AmountValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Amount), 64)
	if err != nil {
		return 0
	}
	return v
}
