package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/elitecasino/crash-backend/internal/ratelimit"
)

// RateLimitMiddleware enforces a per-client request budget on the API.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		log:     log,
	}
}

// Handle wraps next with the rate-limit check, keyed by client address. A
// limiter backend failure lets the request through: throttling is protection,
// not a dependency the API dies with.
func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil || m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := clientKey(r)

		result, err := m.limiter.Check(r.Context(), key, m.limit, m.window)
		if err != nil && result == nil {
			m.log.Warn("rate limiter error", slog.String("key", key), slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		if !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.String("key", key))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded, try again later"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
