package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's login address. Stored trimmed and lower-cased,
	// so uniqueness is case-insensitive.
	Email string

	// DisplayName is the optional human-readable name shown to other members.
	DisplayName string

	// PasswordHash is the bcrypt digest of the user's password.
	// The raw password is never stored.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// Label returns the name shown for the user in summaries: the display name,
// or the email when no name has been set.
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
