package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"

	"github.com/elitecasino/crash-backend/internal/bot"
	apperr "github.com/elitecasino/crash-backend/internal/errors"
	"github.com/elitecasino/crash-backend/internal/ledger"
	"github.com/elitecasino/crash-backend/internal/repository"
	"github.com/elitecasino/crash-backend/pkg/config"
	"github.com/elitecasino/crash-backend/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log, _ := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	log.Info("starting casino bot", slog.String("env", cfg.AppEnv))

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := apperr.WithRetry(ctx, func() error { return db.PingContext(ctx) }); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(repository.NewPostgresLedger(db, log), log)

	b, err := bot.New(*cfg, ledgerSvc, log)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	b.Start()

	log.Info("casino bot stopped")
}
