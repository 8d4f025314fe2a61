// Package bot runs the Telegram entry point for the casino. Its only jobs
// are greeting players with the mini-app button and answering /balance; the
// game itself lives behind the web app.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/elitecasino/crash-backend/internal/bot/handlers"
	"github.com/elitecasino/crash-backend/internal/bot/keyboard"
	"github.com/elitecasino/crash-backend/pkg/config"
)

const defaultPollTimeout = 10 * time.Second

// Bot wraps telebot.Bot with the application dependencies it handles updates
// with.
type Bot struct {
	telebot *telebot.Bot
	log     *slog.Logger
}

// New builds a long-polling telegram bot configured according to the
// application settings.
func New(cfg config.Config, ledger handlers.LedgerService, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Bot.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Bot.Token,
		Poller: &telebot.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)

	tb.Handle("/start", telebot.HandlerFunc(handlers.NewStartHandler(kb, cfg.Bot.WebAppURL, log)))
	tb.Handle("/balance", telebot.HandlerFunc(handlers.NewBalanceHandler(ledger, log)))

	return &Bot{
		telebot: tb,
		log:     log,
	}, nil
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("telegram bot polling started")
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}
