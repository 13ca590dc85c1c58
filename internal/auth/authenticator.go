// Package auth provides the credential capabilities the ledger consumes:
// password hashing and bearer-token issuance.
package auth

// PasswordHasher hashes and verifies passwords.
// This abstraction allows swapping hashing schemes (bcrypt, argon2, etc.)
// without changing the ledger code.
type PasswordHasher interface {
	// Hash returns a digest suitable for storage. The raw password is never stored.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	Verify(password, digest string) bool
}

// TokenIssuer issues and verifies session tokens bound to a user ID.
type TokenIssuer interface {
	// Generate creates a token for the given user.
	Generate(userID string) (string, error)

	// Validate parses a token and returns the user ID it was issued for.
	Validate(token string) (string, error)
}
