package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// NewUser is the input to CreateUser.
type NewUser struct {
	Email       string
	DisplayName string
	Password    string
}

// UserPatch changes a user's profile. Nil fields are left unchanged.
type UserPatch struct {
	Email       *string
	DisplayName *string
}

// Session is the result of a successful login.
type Session struct {
	User  *models.User
	Token string
}

// CreateUser registers a new account. Only the password digest is stored.
func (l *Ledger) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if err := l.validateEmail(email); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if err := checkLength("display name", displayName, l.limits.MaxDisplayNameLength); err != nil {
		return nil, err
	}
	if len(in.Password) < l.limits.MinPasswordLength {
		return nil, validationf("password must be at least %d characters", l.limits.MinPasswordLength)
	}
	if len(in.Password) > l.limits.MaxPasswordLength {
		return nil, validationf("password must be at most %d bytes", l.limits.MaxPasswordLength)
	}

	digest, err := l.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := l.now().Unix()
	user := &models.User{
		ID:           l.newID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := l.ensureEmailFree(ctx, q, email); err != nil {
			return err
		}
		return q.CreateUser(ctx, user)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		err = fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies credentials and issues a token. An unknown email
// and a wrong password fail identically with ErrInvalidCredentials.
func (l *Ledger) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := l.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if user == nil {
		l.hasher.Verify(password, l.dummyDigest)
		return nil, ErrInvalidCredentials
	}
	if !l.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := l.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// GetUser returns a user by ID.
func (l *Ledger) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := l.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user "+userID)
	}
	return user, nil
}

// UpdateUser applies a self-service profile change. userID must be the
// authenticated caller; nobody edits another user's profile.
func (l *Ledger) UpdateUser(ctx context.Context, userID string, patch UserPatch) (*models.User, error) {
	var updated *models.User
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		user, err := q.GetUserByID(ctx, userID)
		if err != nil {
			return notFound(err, "user "+userID)
		}

		if patch.Email != nil {
			email := normalizeEmail(*patch.Email)
			if err := l.validateEmail(email); err != nil {
				return err
			}
			if email != user.Email {
				if err := l.ensureEmailFree(ctx, q, email); err != nil {
					return err
				}
			}
			user.Email = email
		}
		if patch.DisplayName != nil {
			name := strings.TrimSpace(*patch.DisplayName)
			if err := checkLength("display name", name, l.limits.MaxDisplayNameLength); err != nil {
				return err
			}
			user.DisplayName = name
		}

		user.UpdatedAt = l.now().Unix()
		if err := q.UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if errors.Is(err, storage.ErrDuplicate) {
		err = fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("User updated", "user_id", userID)
	return updated, nil
}

// IssueToken creates a session token for userID.
func (l *Ledger) IssueToken(userID string) (string, error) {
	return l.tokens.Generate(userID)
}

// VerifyToken returns the user ID a token was issued for.
func (l *Ledger) VerifyToken(token string) (string, error) {
	userID, err := l.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return userID, nil
}

func (l *Ledger) validateEmail(email string) error {
	if email == "" {
		return validationf("email is required")
	}
	if err := checkLength("email", email, l.limits.MaxEmailLength); err != nil {
		return err
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return validationf("email %q is not a valid address", email)
	}
	return nil
}

func (l *Ledger) ensureEmailFree(ctx context.Context, q storage.Queries, email string) error {
	_, err := q.GetUserByEmail(ctx, email)
	if err == nil {
		return fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
