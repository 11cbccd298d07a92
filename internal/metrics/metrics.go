// Package metrics exposes Prometheus counters for relationship transitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relationship kinds used as label values
const (
	KindConnection = "connection"
	KindMentorship = "mentorship"
)

var (
	// RelationshipsCreated tracks new pending records
	RelationshipsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alumni_connect",
			Subsystem: "ledger",
			Name:      "created_total",
			Help:      "Total number of relationship records created",
		},
		[]string{"kind"},
	)

	// RelationshipsResolved tracks pending -> terminal transitions
	RelationshipsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alumni_connect",
			Subsystem: "ledger",
			Name:      "resolved_total",
			Help:      "Total number of relationship records resolved by status",
		},
		[]string{"kind", "status"},
	)

	// LedgerRejections tracks commands refused by an invariant check
	LedgerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alumni_connect",
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Total number of ledger commands refused, by reason",
		},
		[]string{"kind", "reason"},
	)

	// ApprovalDecisions tracks admin moderation actions
	ApprovalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alumni_connect",
			Subsystem: "approval",
			Name:      "decisions_total",
			Help:      "Total number of admin approval decisions",
		},
		[]string{"action"},
	)

	// HTTPRequestsTotal tracks inbound API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alumni_connect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alumni_connect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// RecordHTTPRequest records one served API request
func RecordHTTPRequest(method, route, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
