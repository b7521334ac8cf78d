package search

import (
	"errors"
	"time"

	"github.com/poiesic/attestor/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Inference call stages.
const (
	stageRoute = "route"
	stageMatch = "match"
)

// Inference call outcomes.
const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeTimeout   = "timeout"
	outcomeMalformed = "malformed"
)

// Metrics holds the Prometheus collectors for the search engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InferenceCalls   *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	RoutingFallbacks prometheus.Counter
	Results          *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
}

// NewMetrics creates the search collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		InferenceCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attestor_inference_calls_total",
				Help: "Inference service calls by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attestor_cache_lookups_total",
				Help: "Evidence cache lookups by result",
			},
			[]string{"result"},
		),
		RoutingFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "attestor_routing_fallbacks_total",
				Help: "Questions routed to the default categories after a routing failure",
			},
		),
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attestor_search_results_total",
				Help: "Completed question searches by status",
			},
			[]string{"status"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "attestor_search_duration_seconds",
				Help:    "Duration of a single question search in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
		),
	}

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	var errs []error
	for _, c := range []prometheus.Collector{m.InferenceCalls, m.CacheLookups, m.RoutingFallbacks, m.Results, m.SearchDuration} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) inferenceCall(stage, outcome string) {
	if m == nil {
		return
	}
	m.InferenceCalls.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) cacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) routingFallback() {
	if m == nil {
		return
	}
	m.RoutingFallbacks.Inc()
}

func (m *Metrics) searchFinished(status core.Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Results.WithLabelValues(string(status)).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
}
