package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/elitecasino/crash-backend/pkg/logger"
	"github.com/elitecasino/crash-backend/pkg/metrics"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging creates an HTTP middleware that logs request and response details
// and feeds the request-duration histogram.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			metrics.RecordRequest(r.URL.Path, strconv.Itoa(recorder.status), duration)

			loggerInstance := log
			if loggerInstance == nil {
				loggerInstance = slog.Default()
			}

			loggerInstance.Info(
				"handled http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", recorder.status),
				slog.Duration("duration", duration),
				slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
			)
		})
	}
}
