// Package keyboard builds the inline keyboards the casino bot sends.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// Builder creates inline keyboards for bot replies.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// WebAppMenu builds the single-button menu that opens the casino mini app.
func (b *Builder) WebAppMenu(webAppURL string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text:   "🎰 PLAY CASINO",
				WebApp: &telebot.WebApp{URL: webAppURL},
			},
		},
	}
	return markup
}
