package repository

import (
	"context"
	"errors"

	"github.com/elitecasino/crash-backend/internal/domain"
)

// ErrUserNotFound indicates a settlement for an identity that was never
// registered.
var ErrUserNotFound = errors.New("user not found")

// Ledger defines persistence operations for users and their transaction log.
type Ledger interface {
	// GetOrCreate looks a user up by Telegram ID, creating the record with
	// the starting balance on first login. Concurrent first logins for the
	// same identity must still produce exactly one row.
	GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error)

	// Settle applies the signed amount to the user's balance and appends the
	// matching transaction record as one atomic unit. Concurrent settlements
	// for the same user must not lose updates.
	Settle(ctx context.Context, userID int64, gameType string, amount float64) (newBalance float64, err error)
}
