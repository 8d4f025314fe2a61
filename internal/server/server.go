// Package server exposes the public HTTP surface: login, settlement and the
// websocket push channel.
package server

import (
	"context"
	"log/slog"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/elitecasino/crash-backend/internal/auth"
	"github.com/elitecasino/crash-backend/internal/domain"
	apperr "github.com/elitecasino/crash-backend/internal/errors"
	"github.com/elitecasino/crash-backend/internal/middleware"
	"github.com/elitecasino/crash-backend/pkg/logger"
)

// Authenticator verifies a signed init-data payload and returns the caller.
type Authenticator interface {
	Validate(initData string) (*auth.Identity, error)
}

// LedgerService is the settlement entry point the handlers depend on.
type LedgerService interface {
	GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error)
	Settle(ctx context.Context, userID int64, gameType string, bet, multiplier float64, won bool) (float64, error)
}

// PushHandler serves the websocket upgrade for the event push channel.
type PushHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Server wires the authenticated settlement path to HTTP.
type Server struct {
	auth       Authenticator
	ledger     LedgerService
	push       PushHandler
	log        *slog.Logger
	errHandler *apperr.Handler
	validate   *validator.Validate
}

// New constructs the HTTP server component.
func New(authGate Authenticator, ledgerSvc LedgerService, push PushHandler, errHandler *apperr.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		auth:       authGate,
		ledger:     ledgerSvc,
		push:       push,
		log:        log,
		errHandler: errHandler,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler assembles the route table. The API routes go through correlation,
// logging and rate-limit middleware; the websocket route skips them because
// the upgrade needs the raw ResponseWriter and a push connection is not a
// request to be throttled.
func (s *Server) Handler(rateLimit *middleware.RateLimitMiddleware) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/login", s.handleLogin)
	api.HandleFunc("/api/finish_game", s.handleFinishGame)

	var apiHandler http.Handler = api
	if rateLimit != nil {
		apiHandler = rateLimit.Handle(apiHandler)
	}
	apiHandler = middleware.Logging(s.log)(apiHandler)
	apiHandler = logger.Middleware(apiHandler)

	root := http.NewServeMux()
	root.Handle("/api/", apiHandler)
	root.HandleFunc("/ws", s.push.ServeWS)

	return root
}
