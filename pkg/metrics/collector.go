// Package metrics exposes Prometheus instrumentation for the crash game.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crash_rounds_total",
			Help: "Total number of completed rounds",
		},
	)
	crashPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crash_point",
			Help:    "Distribution of round crash points",
			Buckets: []float64{1, 1.2, 1.5, 2, 3, 5, 10, 25, 50, 100},
		},
	)
	phaseTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "round_phase_transitions_total",
			Help: "Total number of round phase transitions",
		},
		[]string{"from", "to"},
	)
	connectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Current number of connected websocket clients",
		},
	)
	clientsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_clients_dropped_total",
			Help: "Connections pruned after a failed or stalled delivery",
		},
	)
	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Total number of settlements labeled by game and outcome",
		},
		[]string{"game", "outcome"},
	)
	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "status"},
	)
)

// RecordRound tracks one finished round and its crash point.
func RecordRound(crashPoint float64) {
	roundsTotal.Inc()
	crashPoints.Observe(crashPoint)
}

// RecordPhaseTransition tracks round phase changes.
func RecordPhaseTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	phaseTransitionsTotal.WithLabelValues(from, to).Inc()
}

// SetConnectedClients updates the live websocket connection gauge.
func SetConnectedClients(count int) {
	connectedClients.Set(float64(count))
}

// RecordClientDropped counts a connection pruned by the hub.
func RecordClientDropped() {
	clientsDroppedTotal.Inc()
}

// RecordSettlement counts one settlement by game type and outcome.
func RecordSettlement(game string, won bool) {
	if game == "" {
		game = "unknown"
	}

	outcome := "loss"
	if won {
		outcome = "win"
	}

	settlementsTotal.WithLabelValues(game, outcome).Inc()
}

// RecordRequest tracks one handled HTTP request.
func RecordRequest(path, status string, duration time.Duration) {
	requestDurationSeconds.WithLabelValues(path, status).Observe(duration.Seconds())
}
