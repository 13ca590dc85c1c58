package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
)

var (
	errNotAuthorized = errors.New("not authorized")
	errInternal      = errors.New("internal error")
)

// toConnectError classifies a ledger error. Authorization details and
// storage failures stay in the server log.
func toConnectError(logger *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, ledger.ErrInvalidCredentials)
	case errors.Is(err, ledger.ErrUnauthorized):
		return connect.NewError(connect.CodePermissionDenied, errNotAuthorized)
	case errors.Is(err, ledger.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		logger.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

// callerID returns the authenticated user, or Unauthenticated for
// procedures mounted behind OptionalAuth.
func callerID(ctx context.Context) (string, error) {
	if userID := middleware.GetUserID(ctx); userID != "" {
		return userID, nil
	}
	return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, connect.NewError(connect.CodeInvalidArgument, errors.New("amount must be a decimal number"))
	}
	return amount, nil
}
