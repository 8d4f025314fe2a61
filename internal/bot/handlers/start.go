package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/elitecasino/crash-backend/internal/bot/keyboard"
)

const welcomeMessage = "🚀 <b>Welcome to Elite Crypto Casino!</b>\n\n" +
	"Tap the button below to open the app."

// NewStartHandler returns a handler for the /start command. It greets the
// player and offers the mini-app button that opens the casino front-end.
func NewStartHandler(kb *keyboard.Builder, webAppURL string, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender != nil && log != nil {
			log.Info("start command", slog.Int64("telegram_id", sender.ID))
		}

		return c.Send(welcomeMessage, kb.WebAppMenu(webAppURL), telebot.ModeHTML)
	}
}
