// Package metrics defines all custom Prometheus metrics for the console
// core. It is the single source of truth for metric names, labels, and help
// strings; the embedding application decides how and whether to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tms_console"

// ── Query path ────────────────────────────────────────────────────────────────

// QueriesTotal counts gateway queries issued.
// Labels:
//   - resource: "shipments", "stats", ...
//   - result: "ok", "error", or "retried" (the single automatic retry fired)
var QueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queries_total",
		Help:      "Total number of gateway queries issued, by resource and result.",
	},
	[]string{"resource", "result"},
)

// QueryDuration measures gateway query latency end-to-end.
var QueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Duration of gateway queries from issue to settle.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// StaleResponsesTotal counts query responses discarded because a newer query
// superseded them before they arrived.
var StaleResponsesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Total number of query responses discarded as stale.",
	},
)

// ── Cache ─────────────────────────────────────────────────────────────────────

// CacheRequestsTotal counts cache lookups.
// Labels:
//   - resource: cache resource name
//   - result: "hit", "stale", "miss", or "error"
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of cache lookups, by resource and result.",
	},
	[]string{"resource", "result"},
)

// CacheInvalidationsTotal counts imperative cache invalidations.
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache invalidations, by resource.",
	},
	[]string{"resource"},
)

// ── Mutation path ─────────────────────────────────────────────────────────────

// MutationsTotal counts shipment mutations settled.
// Labels:
//   - kind: "create", "update", "delete", "flag", "unflag"
//   - result: "ok" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of shipment mutations settled, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ToastsPublishedTotal counts toast events published on the bus.
// Label:
//   - type: "success", "error", or "info"
var ToastsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toasts_published_total",
		Help:      "Total number of toast events published, by type.",
	},
	[]string{"type"},
)
