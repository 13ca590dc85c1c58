package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// maxAmount is the exclusive upper bound on a single expense, matching
// NUMERIC(10, 2).
var maxAmount = decimal.New(1, 8)

// NewExpense is the input to CreateExpense.
type NewExpense struct {
	GroupID     string
	Amount      decimal.Decimal
	Description string
	Category    string
	Metadata    models.Metadata
}

// ExpensePatch edits an expense. Nil fields are left unchanged. For
// Metadata, a pointer to a nil document removes the metadata.
type ExpensePatch struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Metadata    *models.Metadata
}

// CreateExpense records a payment by payerID on behalf of a group. The payer
// must currently be a member.
func (l *Ledger) CreateExpense(ctx context.Context, payerID string, in NewExpense) (*models.Expense, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if err := checkLength("description", description, l.limits.MaxExpenseDescriptionLength); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if err := checkLength("category", category, l.limits.MaxCategoryLength); err != nil {
		return nil, err
	}
	if err := validateMetadata(in.Metadata); err != nil {
		return nil, err
	}

	now := l.now().Unix()
	expense := &models.Expense{
		ID:          l.newID(),
		GroupID:     in.GroupID,
		PayerID:     payerID,
		Amount:      in.Amount,
		Description: description,
		Category:    category,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, in.GroupID, payerID); err != nil {
			return err
		}
		return q.CreateExpense(ctx, expense)
	})
	if err != nil {
		l.logDenied("CreateExpense", err, "group_id", in.GroupID, "user_id", payerID)
		return nil, err
	}

	l.logger.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"user_id", payerID,
		"amount", expense.Amount.StringFixed(2),
	)
	return expense, nil
}

// GetExpense returns an expense by ID.
func (l *Ledger) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, notFound(err, "expense "+expenseID)
	}
	return expense, nil
}

// UpdateExpense applies a partial edit. Only the payer may edit; current
// membership is not re-checked.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID string, patch ExpensePatch, requestedBy string) (*models.Expense, error) {
	var updated *models.Expense
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		expense, err := requirePayer(ctx, q, expenseID, requestedBy)
		if err != nil {
			return err
		}

		if patch.Amount != nil {
			if err := validateAmount(*patch.Amount); err != nil {
				return err
			}
			expense.Amount = *patch.Amount
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			if err := checkLength("description", description, l.limits.MaxExpenseDescriptionLength); err != nil {
				return err
			}
			expense.Description = description
		}
		if patch.Category != nil {
			category := strings.TrimSpace(*patch.Category)
			if err := checkLength("category", category, l.limits.MaxCategoryLength); err != nil {
				return err
			}
			expense.Category = category
		}
		if patch.Metadata != nil {
			if err := validateMetadata(*patch.Metadata); err != nil {
				return err
			}
			expense.Metadata = *patch.Metadata
		}

		expense.UpdatedAt = l.now().Unix()
		if err := q.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		updated = expense
		return nil
	})
	if err != nil {
		l.logDenied("UpdateExpense", err, "expense_id", expenseID, "user_id", requestedBy)
		return nil, err
	}

	l.logger.Info("Expense updated", "expense_id", expenseID, "user_id", requestedBy)
	return updated, nil
}

// DeleteExpense removes an expense. Only the payer may delete.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID, requestedBy string) error {
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if _, err := requirePayer(ctx, q, expenseID, requestedBy); err != nil {
			return err
		}
		return notFound(q.DeleteExpense(ctx, expenseID), "expense "+expenseID)
	})
	if err != nil {
		l.logDenied("DeleteExpense", err, "expense_id", expenseID, "user_id", requestedBy)
		return err
	}

	l.logger.Info("Expense deleted", "expense_id", expenseID, "user_id", requestedBy)
	return nil
}

// ListGroupExpenses returns a page of a group's expenses, newest first.
func (l *Ledger) ListGroupExpenses(ctx context.Context, groupID, requestedBy string, page Page) ([]*models.Expense, error) {
	page, err := l.normalizePage(page)
	if err != nil {
		return nil, err
	}

	var expenses []*models.Expense
	err = l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}
		var listErr error
		expenses, listErr = q.ListExpensesByGroup(ctx, groupID, page)
		return listErr
	})
	if err != nil {
		l.logDenied("ListGroupExpenses", err, "group_id", groupID, "user_id", requestedBy)
		return nil, err
	}
	return expenses, nil
}

// ListUserExpenses returns a page of the expenses userID paid, across all
// groups, newest first.
func (l *Ledger) ListUserExpenses(ctx context.Context, userID string, page Page) ([]*models.Expense, error) {
	page, err := l.normalizePage(page)
	if err != nil {
		return nil, err
	}
	return l.store.ListExpensesByPayer(ctx, userID, page)
}

// SummarizeGroupExpenses aggregates a group's expenses by category and by
// paying user.
func (l *Ledger) SummarizeGroupExpenses(ctx context.Context, groupID, requestedBy string) (*models.ExpenseSummary, error) {
	var summary *models.ExpenseSummary
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}

		expenses, err := q.ListExpensesByGroup(ctx, groupID, Page{})
		if err != nil {
			return err
		}
		users, err := q.GetUsersByIDs(ctx, payerIDs(expenses))
		if err != nil {
			return err
		}

		summary = calculator.Summarize(groupID, expenses, users)
		return nil
	})
	if err != nil {
		l.logDenied("SummarizeGroupExpenses", err, "group_id", groupID, "user_id", requestedBy)
		return nil, err
	}
	return summary, nil
}

// requirePayer loads an expense and fails with ErrUnauthorized unless
// userID paid it.
func requirePayer(ctx context.Context, q storage.Queries, expenseID, userID string) (*models.Expense, error) {
	expense, err := q.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, notFound(err, "expense "+expenseID)
	}
	if expense.PayerID != userID {
		return nil, unauthorizedf("user %s did not pay expense %s", userID, expenseID)
	}
	return expense, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return validationf("amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return validationf("amount %s has more than two decimal places", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return validationf("amount must be less than %s", maxAmount)
	}
	return nil
}

// validateMetadata accepts absent metadata, the JSON literal null, or a
// JSON object.
func validateMetadata(m models.Metadata) error {
	if m == nil || m.IsNull() {
		return nil
	}
	if !json.Valid(m) {
		return validationf("metadata is not valid JSON")
	}
	if trimmed := bytes.TrimSpace(m); len(trimmed) == 0 || trimmed[0] != '{' {
		return validationf("metadata must be a JSON object or null")
	}
	return nil
}

// payerIDs returns the distinct payers of expenses, in first-seen order.
func payerIDs(expenses []*models.Expense) []string {
	seen := make(map[string]bool, len(expenses))
	var ids []string
	for _, e := range expenses {
		if !seen[e.PayerID] {
			seen[e.PayerID] = true
			ids = append(ids, e.PayerID)
		}
	}
	return ids
}
