// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

// Page selects a window of an ordered listing.
// A zero Limit returns every remaining row.
type Page struct {
	Limit  int
	Offset int
}

// Queries defines the record operations over users, groups, memberships
// and expenses. Implementations return fully materialized values; nothing
// is loaded lazily.
type Queries interface {
	// CreateUser persists a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser overwrites email, display name and updated_at.
	UpdateUser(ctx context.Context, user *models.User) error

	// CreateGroup persists a new group row. Memberships are added separately.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group without its roster, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns the groups the user belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup overwrites name, description and updated_at.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group with its memberships and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember inserts a membership. Returns ErrDuplicate if it exists.
	AddMember(ctx context.Context, membership *models.Membership) error

	// RemoveMember deletes a membership. Returns ErrNotFound if absent.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// IsMember reports whether the membership exists.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// ListMembers returns the roster ordered by join time.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// CreateExpense persists a new expense.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense overwrites the mutable expense fields.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense returns ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns the group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string, page Page) ([]*models.Expense, error)

	// ListExpensesByPayer returns the expenses a user paid, newest first.
	ListExpensesByPayer(ctx context.Context, userID string, page Page) ([]*models.Expense, error)
}

// Store is a transactional record store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
type Store interface {
	Queries

	// WithTx runs fn inside a single transaction. The transaction commits
	// if fn returns nil and rolls back otherwise. fn must only use the
	// Queries it is given.
	WithTx(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}
