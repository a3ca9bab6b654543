// Package metrics holds the Prometheus collectors for the service, all
// registered on Registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "balancecup"

// Registry is the registry every collector below is attached to.
var Registry = prometheus.NewRegistry()

var (
	// RoundsServed counts generate calls by where the items came from:
	// cache, store, fresh, mixed, or fallback.
	RoundsServed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_served_total",
			Help:      "Rounds returned to callers, partitioned by item source.",
		},
		[]string{"source"},
	)

	// GenerateDuration observes end-to-end generate latency.
	GenerateDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Wall time of a generate call, including upstream calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
	)

	// UpstreamAttempts counts text-generation attempts per provider and outcome.
	UpstreamAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "text_upstream_attempts_total",
			Help:      "Text generation attempts, partitioned by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// ImageLookups counts image resolutions by outcome: hit, placeholder.
	ImageLookups = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_lookups_total",
			Help:      "Image keyword resolutions, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	// MalformedResponses counts upstream texts the draft parser rejected.
	MalformedResponses = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_responses_total",
			Help:      "Upstream responses that contained no parseable item list.",
		},
	)

	// PersistJobs counts background persistence jobs by outcome:
	// saved, failed, dropped.
	PersistJobs = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_jobs_total",
			Help:      "Background question persistence jobs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
