package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	indicatorRequests *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		indicatorRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_flow_indicator_requests_total",
				Help: "Flow indicator computations by outcome",
			},
			[]string{"indicator", "status"},
		),
		queryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_flow_query_duration_seconds",
				Help:    "Duration of time-series store queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// RecordIndicator counts one indicator computation with its outcome.
func (r *Recorder) RecordIndicator(indicator, status string) {
	r.indicatorRequests.WithLabelValues(indicator, status).Inc()
}

// RecordQueryDuration records one store query duration in seconds.
func (r *Recorder) RecordQueryDuration(source string, seconds float64) {
	r.queryDuration.WithLabelValues(source).Observe(seconds)
}
