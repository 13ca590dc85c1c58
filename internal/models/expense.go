package models

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Metadata is an opaque JSON document attached to an expense.
//
// A nil Metadata means "absent". The literal JSON null is a distinct,
// present value and is preserved as such.
type Metadata []byte

// IsNull reports whether the document is the JSON literal null.
func (m Metadata) IsNull() bool {
	return bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}

// Expense is a single payment event attributed to one paying member
// within one group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	// PayerID is the user who paid. Must have been a member of the group
	// when the expense was created.
	PayerID string

	// Amount is the positive amount paid, with at most two fractional digits.
	Amount decimal.Decimal

	// Description is optional free text (bounded length).
	Description string

	// Category is an optional label (bounded length). Uncategorized
	// expenses are left out of per-category summaries.
	Category string

	// Metadata is an optional structured document, returned verbatim.
	Metadata Metadata

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
