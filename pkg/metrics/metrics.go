// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation modes reported on the counters.
const (
	ModeFreeform    = "freeform"
	ModeBranching   = "branching"
	ModeTranslation = "translation"
)

var (
	// GenerationRequests counts gateway calls by mode and outcome.
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogue_generation_requests_total",
		Help: "Text generation requests by mode and status.",
	}, []string{"mode", "status"})

	// GenerationLatency observes gateway round-trip time.
	GenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialogue_generation_duration_seconds",
		Help:    "Latency of text generation gateway calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// MalformedGenerations counts branching responses that broke the
	// DIALOGUE/OPTIONn format and were degraded to an empty node.
	MalformedGenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_malformed_generations_total",
		Help: "Branching generations that did not follow the structured format.",
	})

	// ActiveConnections tracks live realtime channels.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialogue_realtime_connections",
		Help: "Currently attached realtime connections.",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
