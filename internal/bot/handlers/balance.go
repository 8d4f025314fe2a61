package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/elitecasino/crash-backend/internal/domain"
)

// LedgerService exposes the account lookup the /balance command needs.
type LedgerService interface {
	GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error)
}

// NewBalanceHandler returns a handler for the /balance command. First contact
// through the bot registers the player the same way a web-app login does.
func NewBalanceHandler(ledger LedgerService, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			return c.Send("Unable to load your balance right now.")
		}

		username := sender.Username
		if username == "" {
			username = sender.FirstName
		}

		user, err := ledger.GetOrCreate(context.Background(), sender.ID, username)
		if err != nil {
			if log != nil {
				log.Error("balance handler failed to fetch user",
					slog.Int64("telegram_id", sender.ID),
					slog.Any("error", err),
				)
			}
			return c.Send("Unable to load your balance right now. Please try again later.")
		}

		return c.Send(fmt.Sprintf("💰 Your balance: %.2f", user.Balance))
	}
}
