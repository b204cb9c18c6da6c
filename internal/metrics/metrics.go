// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of one server instance.
type Metrics struct {
	// Operations counts RPC calls by procedure and result code ("ok" on success).
	Operations *prometheus.CounterVec

	// Duration observes RPC latency by procedure.
	Duration *prometheus.HistogramVec

	// IgnoredPurchases counts purchases left out of a balance computation
	// because their shares sum to zero.
	IgnoredPurchases prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "operations_total",
			Help:      "RPC calls handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "operation_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		IgnoredPurchases: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "ignored_purchases_total",
			Help:      "Purchases skipped in balance computations because their shares sum to zero.",
		}),
	}
}
