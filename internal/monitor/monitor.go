// Package monitor exposes the dashboard's Prometheus metrics.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mgacha"

var (
	StoreQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_queries_total",
		Help:      "Store queries by operation and result",
	}, []string{"op", "result"})

	ViewReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_reloads_total",
		Help:      "Session view-state reloads from the store",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Shared cache lookups by result",
	}, []string{"result"})

	DroppedReferences = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_dropped_references_total",
		Help:      "Inventory entries skipped because their card does not exist",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live dashboard sessions",
	})

	RenderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_latency_seconds",
		Help:      "Time to prepare a session view",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

// ObserveQuery records the outcome of one store query.
func ObserveQuery(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreQueries.WithLabelValues(op, result).Inc()
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
