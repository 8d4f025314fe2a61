package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"

	"github.com/elitecasino/crash-backend/internal/auth"
	"github.com/elitecasino/crash-backend/internal/database"
	apperr "github.com/elitecasino/crash-backend/internal/errors"
	"github.com/elitecasino/crash-backend/internal/game"
	"github.com/elitecasino/crash-backend/internal/health"
	"github.com/elitecasino/crash-backend/internal/ledger"
	"github.com/elitecasino/crash-backend/internal/lifecycle"
	"github.com/elitecasino/crash-backend/internal/middleware"
	"github.com/elitecasino/crash-backend/internal/ratelimit"
	"github.com/elitecasino/crash-backend/internal/repository"
	"github.com/elitecasino/crash-backend/internal/server"
	"github.com/elitecasino/crash-backend/internal/ws"
	"github.com/elitecasino/crash-backend/pkg/config"
	"github.com/elitecasino/crash-backend/pkg/graceful"
	"github.com/elitecasino/crash-backend/pkg/logger"
	"github.com/elitecasino/crash-backend/pkg/metrics"
	redispkg "github.com/elitecasino/crash-backend/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
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

	log, level := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	config.Watch(v,
		func(next config.Config) {
			level.Set(logger.ParseLevel(next.Logger.Level))
			log.Info("configuration reloaded", slog.String("log_level", next.Logger.Level))
		},
		func(err error) {
			log.Error("configuration reload failed", slog.Any("error", err))
		},
	)

	log.Info("starting crash casino server",
		slog.String("env", cfg.AppEnv),
		slog.String("port", cfg.Server.Port),
	)

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

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.NewMigrator(db, log).ApplyDir(ctx, migrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))

	var rdb *redispkg.Client
	if cfg.Redis.Enabled {
		rdb, err = redispkg.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
		checker.AddCheck("redis", health.NewRedisChecker(rdb))
	}

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		var limiter ratelimit.Limiter
		if rdb != nil {
			limiter = ratelimit.NewRedisLimiter(rdb.Client, log)
		} else {
			mem := ratelimit.NewMemoryLimiter(log)
			go mem.Run(ctx, cfg.RateLimit.CleanupInterval, cfg.RateLimit.BucketMaxAge)
			limiter = mem
		}
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
	}

	hub := ws.NewHub(allowOrigin(cfg.Server.AllowedOrigin), log)
	shutdown.Register("websocket hub", func(context.Context) error {
		hub.Close()
		return nil
	})

	engine := game.NewEngine(
		game.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano()))),
		hub,
		game.Timing{
			CountdownTicks: cfg.Game.CountdownTicks,
			TickInterval:   cfg.Game.TickInterval,
			FlyInterval:    cfg.Game.FlyInterval,
			CrashPause:     cfg.Game.CrashPause,
		},
		log,
		cfg.Game.HistorySeed...,
	)

	engineDone := make(chan error, 1)
	go func() { engineDone <- engine.Run(ctx) }()

	metricsSrv := metrics.NewServer(cfg.Metrics.Port, checker)
	metrics.Start(metricsSrv, log)
	shutdown.Register("metrics server", func(c context.Context) error {
		return metricsSrv.Shutdown(c)
	})

	srv := server.New(
		auth.NewValidator(cfg.Bot.Token),
		ledger.NewService(repository.NewPostgresLedger(db, log), log),
		hub,
		apperr.NewHandler(log, cfg.Sentry.Enabled),
		log,
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           srv.Handler(rateLimitMw),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := graceful.NewServer(log, httpSrv, cfg.Server.ShutdownTimeout).ListenAndServe(ctx); err != nil {
		log.Error("http server failed", slog.Any("error", err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	if err := <-engineDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("round engine stopped", slog.Any("error", err))
	}

	log.Info("crash casino server stopped")
}

// allowOrigin builds the websocket origin check. An empty allowed origin
// accepts every origin, which matches how the Telegram web view presents the
// mini app.
func allowOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" {
			return true
		}
		return strings.EqualFold(r.Header.Get("Origin"), allowed)
	}
}
