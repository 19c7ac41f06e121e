package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace for all metrics
const namespace = "y2logs"

// Collector holds the application metrics. It is fed by the follow and
// export commands; filter runs are too short-lived to scrape.
type Collector struct {
	// EntriesParsed counts successfully decoded entries by level.
	EntriesParsed *prometheus.CounterVec

	// EntriesMatched counts entries that passed the active query.
	EntriesMatched prometheus.Counter

	// ParseFailures counts records dropped by the streaming parser.
	ParseFailures prometheus.Counter

	// Rotations counts reopened files in follow mode.
	Rotations prometheus.Counter

	// ExportSent and ExportFailed count shipped entries by sink.
	ExportSent   *prometheus.CounterVec
	ExportFailed *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a new metrics collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		EntriesParsed: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "entries_total",
				Help:      "Total number of decoded log entries by level",
			},
			[]string{"level"},
		),
		EntriesMatched: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "entries_matched_total",
				Help:      "Total number of entries matching the active query",
			},
		),
		ParseFailures: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "failures_total",
				Help:      "Total number of records the streaming parser dropped",
			},
		),
		Rotations: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "follow",
				Name:      "rotations_total",
				Help:      "Total number of file rotations detected",
			},
		),
		ExportSent: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "entries_sent_total",
				Help:      "Total number of entries shipped by sink",
			},
			[]string{"sink"},
		),
		ExportFailed: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "entries_failed_total",
				Help:      "Total number of entries that failed to ship by sink",
			},
			[]string{"sink"},
		),
		registry: registry,
	}
}

// Handler returns an HTTP handler exposing the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr. It blocks; run it in a goroutine.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
