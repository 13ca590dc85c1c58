package ledger

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the Ledger either wraps one of these
// or is a storage failure. Callers classify with errors.Is.
var (
	// ErrValidation marks malformed input: bad amount, oversized field.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a caller lacking the required relationship to a resource.
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate: email already registered, user already a member.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials is returned by Authenticate for an unknown email
	// and for a wrong password alike.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func unauthorizedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}
