package api

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Every request and its outcome is counted, whatever the caller does
// with the error. Served via promhttp when dashboard watch mode runs
// with a metrics address configured.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitmate",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "splitmate",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// outcomeFor labels a finished request for the counter.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNetworkUnreachable):
		return "network"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "server"
	}
}
