// Package metrics defines and registers all custom Prometheus metrics for the
// presence API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "presence"

// ── Acquisition metrics ───────────────────────────────────────────────────────

// AcquisitionsTotal counts settled acquisition attempts.
// Label:
//   - status: terminal status reached ("found", "timeout", "permission-denied", …)
var AcquisitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "acquisitions_total",
		Help:      "Total number of location acquisition attempts, by terminal status.",
	},
	[]string{"status"},
)

// LocationCacheTotal counts cached-reading lookups.
// Label:
//   - result: "hit" (reading reused) or "miss" (sensor consulted)
var LocationCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_cache_total",
		Help:      "Total number of cached-reading lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Match metrics ─────────────────────────────────────────────────────────────

// MatchesComputedTotal counts completed match passes.
var MatchesComputedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_computed_total",
		Help:      "Total number of completed proximity match passes.",
	},
)

// MatchErrorsTotal counts failed match passes.
// Label:
//   - reason: short failure description (e.g. "invalid_input", "store_error")
var MatchErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_errors_total",
		Help:      "Total number of match passes that failed.",
	},
	[]string{"reason"},
)

// MatchResults observes how many shows survive filtering per pass.
var MatchResults = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_results",
		Help:      "Number of ranked results returned per match pass.",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50},
	},
)

// ── Donation metrics ──────────────────────────────────────────────────────────

// AllocationsTotal counts donation fee allocations.
// Label:
//   - result: "ok", "out_of_range", or "invalid_configuration"
var AllocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_total",
		Help:      "Total number of donation allocations, by result.",
	},
	[]string{"result"},
)
