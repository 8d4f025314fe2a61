package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elitecasino/crash-backend/internal/health"
)

const healthCheckTimeout = 500 * time.Millisecond

// NewServer builds a lightweight HTTP server that exposes only /metrics and
// /healthz, meant to listen on a port separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		results := checker.Check(ctx)

		status := http.StatusOK
		for _, state := range results {
			if state != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// Start runs srv in the background, logging a fatal listen error.
func Start(srv *http.Server, log *slog.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server error", slog.Any("error", err))
			}
		}
	}()
}
