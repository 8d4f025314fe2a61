// Package ledger converts reported game outcomes into balance mutations. It
// is the only writer of user balances; the client's view of money is never
// trusted.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elitecasino/crash-backend/internal/domain"
	apperr "github.com/elitecasino/crash-backend/internal/errors"
	"github.com/elitecasino/crash-backend/internal/game"
	"github.com/elitecasino/crash-backend/internal/repository"
	"github.com/elitecasino/crash-backend/pkg/metrics"
)

// Service provides business operations over the ledger.
type Service struct {
	repo repository.Ledger
	log  *slog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.Ledger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{repo: repo, log: log}
}

// GetOrCreate fetches the user for a verified identity, registering them with
// the starting balance on first login.
func (s *Service) GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error) {
	user, err := s.repo.GetOrCreate(ctx, id, username)
	if err != nil {
		return nil, apperr.NewDatabaseError(err)
	}

	return user, nil
}

// Settle applies one game result. The stake and the win are combined into a
// single net delta: won ? bet*multiplier - bet : -bet. The server never
// assumes the client pre-debited anything.
func (s *Service) Settle(ctx context.Context, userID int64, gameType string, bet, multiplier float64, won bool) (float64, error) {
	if gameType == "" {
		return 0, apperr.NewValidationError("game type is required")
	}
	if bet <= 0 {
		return 0, apperr.NewValidationError("bet must be positive")
	}
	if multiplier < 0 {
		return 0, apperr.NewValidationError("multiplier must not be negative")
	}

	delta := -bet
	if won {
		delta = game.Round2(bet*multiplier - bet)
	}

	newBalance, err := s.repo.Settle(ctx, userID, gameType, delta)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, apperr.NewNotFoundError(fmt.Sprintf("user %d is not registered", userID))
		}
		return 0, apperr.NewDatabaseError(err)
	}

	metrics.RecordSettlement(gameType, won)

	s.log.Info("settlement applied",
		slog.Int64("user_id", userID),
		slog.String("game", gameType),
		slog.Float64("delta", delta),
		slog.Float64("new_balance", newBalance),
	)

	return newBalance, nil
}
