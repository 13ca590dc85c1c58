// Package ledger is the shared-expense domain layer: identity, group
// membership, expense recording and balance computation. It is independent
// of transport and storage; collaborators are injected through interfaces.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/storage"
)

// Limits bounds user input. The zero value is not usable; start from
// DefaultLimits.
type Limits struct {
	MaxEmailLength              int
	MaxDisplayNameLength        int
	MinPasswordLength           int
	MaxPasswordLength           int
	MaxGroupNameLength          int
	MaxGroupDescriptionLength   int
	MaxExpenseDescriptionLength int
	MaxCategoryLength           int
	DefaultPageSize             int
	MaxPageSize                 int
}

// DefaultLimits returns the column-derived bounds used by the SQL schema.
func DefaultLimits() Limits {
	return Limits{
		MaxEmailLength:              255,
		MaxDisplayNameLength:        255,
		MinPasswordLength:           8,
		MaxPasswordLength:           72,
		MaxGroupNameLength:          255,
		MaxGroupDescriptionLength:   500,
		MaxExpenseDescriptionLength: 500,
		MaxCategoryLength:           100,
		DefaultPageSize:             100,
		MaxPageSize:                 1000,
	}
}

// Ledger is the command/query surface of the domain. It holds no mutable
// state; every call is request-scoped.
type Ledger struct {
	store  storage.Store
	hasher auth.PasswordHasher
	tokens auth.TokenIssuer
	limits Limits
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	// dummyDigest is compared against when a login names an unknown email,
	// so both failure paths cost one hash verification.
	dummyDigest string
}

// New creates a Ledger over the given collaborators. It fails if the hasher
// cannot produce the digest used for unknown-email logins.
func New(store storage.Store, hasher auth.PasswordHasher, tokens auth.TokenIssuer, limits Limits, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := hasher.Hash("splitledger-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("failed to precompute dummy digest: %w", err)
	}
	return &Ledger{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		limits:      limits,
		logger:      logger,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		dummyDigest: dummy,
	}, nil
}

// IsMember reports whether userID currently belongs to groupID.
// It is the universal authorization gate.
func (l *Ledger) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return l.store.IsMember(ctx, groupID, userID)
}

// Page is a caller-supplied listing window.
type Page = storage.Page

// normalizePage applies the default and maximum page sizes.
func (l *Ledger) normalizePage(page Page) (Page, error) {
	if page.Limit < 0 {
		return page, validationf("limit must not be negative")
	}
	if page.Offset < 0 {
		return page, validationf("offset must not be negative")
	}
	if page.Limit == 0 {
		page.Limit = l.limits.DefaultPageSize
	}
	if page.Limit > l.limits.MaxPageSize {
		page.Limit = l.limits.MaxPageSize
	}
	return page, nil
}

// requireMember fails with ErrUnauthorized unless userID belongs to groupID.
func requireMember(ctx context.Context, q storage.Queries, groupID, userID string) error {
	ok, err := q.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return unauthorizedf("user %s is not a member of group %s", userID, groupID)
	}
	return nil
}

// checkLength validates an optional text field against a character bound.
func checkLength(field, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return validationf("%s must be at most %d characters, got %d", field, max, n)
	}
	return nil
}

// notFound converts a storage miss into the domain's ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// normalizeEmail trims and lower-cases an email so uniqueness is
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// logDenied records an authorization failure; the caller only ever sees
// "not authorized".
func (l *Ledger) logDenied(op string, err error, attrs ...any) {
	if errors.Is(err, ErrUnauthorized) {
		l.logger.Warn(op+" denied", append(attrs, "error", err)...)
	}
}
