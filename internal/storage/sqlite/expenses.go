package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, payer_id, amount, description, category, metadata, created_at, updated_at"

// CreateExpense persists a new expense to the database.
func (q *queries) CreateExpense(ctx context.Context, expense *models.Expense) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount.StringFixed(2),
		nullString(expense.Description), nullString(expense.Category), metadataValue(expense.Metadata),
		expense.CreatedAt, expense.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (q *queries) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense writes every mutable field of the expense.
func (q *queries) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses
		 SET amount = ?, description = ?, category = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Amount.StringFixed(2), nullString(expense.Description), nullString(expense.Category),
		metadataValue(expense.Metadata), expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense", expense.ID)
}

// DeleteExpense removes an expense by ID.
func (q *queries) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}

// ListExpensesByGroup retrieves a group's expenses, newest first.
func (q *queries) ListExpensesByGroup(ctx context.Context, groupID string, page storage.Page) ([]*models.Expense, error) {
	limit, args := limitClause(page)
	return q.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC"+limit,
		append([]any{groupID}, args...)...,
	)
}

// ListExpensesByPayer retrieves the expenses a user paid, newest first.
func (q *queries) ListExpensesByPayer(ctx context.Context, userID string, page storage.Page) ([]*models.Expense, error) {
	limit, args := limitClause(page)
	return q.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE payer_id = ? ORDER BY created_at DESC, rowid DESC"+limit,
		append([]any{userID}, args...)...,
	)
}

func (q *queries) listExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var (
		amount      string
		description sql.NullString
		category    sql.NullString
		metadata    sql.NullString
	)
	if err := row.Scan(
		&expense.ID, &expense.GroupID, &expense.PayerID, &amount,
		&description, &category, &metadata,
		&expense.CreatedAt, &expense.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	expense.Amount = d
	expense.Description = description.String
	expense.Category = category.String
	if metadata.Valid {
		expense.Metadata = models.Metadata(metadata.String)
	}
	return expense, nil
}

// metadataValue stores absent metadata as NULL and anything else,
// including the JSON literal null, as text.
func metadataValue(m models.Metadata) any {
	if m == nil {
		return nil
	}
	return string(m)
}
