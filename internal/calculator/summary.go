package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Summarize aggregates a group's expenses into totals per category and
// per paying user. users maps payer IDs to their profiles; payers missing
// from it are labelled by ID.
func Summarize(groupID string, expenses []*models.Expense, users map[string]*models.User) *models.ExpenseSummary {
	summary := &models.ExpenseSummary{
		GroupID:    groupID,
		Total:      decimal.Zero,
		Count:      len(expenses),
		ByCategory: make(map[string]decimal.Decimal),
		ByUser:     make(map[string]decimal.Decimal),
	}

	for _, e := range expenses {
		summary.Total = summary.Total.Add(e.Amount)

		if e.Category != "" {
			summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Amount)
		}

		label := e.PayerID
		if u, ok := users[e.PayerID]; ok {
			label = u.Label()
		}
		summary.ByUser[label] = summary.ByUser[label].Add(e.Amount)
	}
	return summary
}
