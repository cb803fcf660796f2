// Package metrics exposes Prometheus instrumentation for the recurring
// obligation engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// Registry owns every collector below and backs the /metrics endpoint.
	Registry *prometheus.Registry

	syncDuration     *prometheus.HistogramVec
	entriesCreated   *prometheus.CounterVec
	entryFailures    *prometheus.CounterVec
	categoryActions  *prometheus.CounterVec
	heuristicMatches *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewMetrics creates a private registry and registers all collectors in it,
// so several instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		syncDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetry_sync_duration_seconds",
				Help:    "Duration of recurring sync operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		entriesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetry_recurring_entries_created_total",
				Help: "Ledger entries written by the recurring engine.",
			},
			[]string{"origin"},
		),
		entryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetry_recurring_failures_total",
				Help: "Recoverable failures during recurring sync, by step.",
			},
			[]string{"step"},
		),
		categoryActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetry_category_sync_actions_total",
				Help: "Synthetic category changes, by group and action.",
			},
			[]string{"group", "action"},
		),
		heuristicMatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetry_heuristic_matches_total",
				Help: "Ledger entries attributed to an obligation without an explicit link.",
			},
			[]string{"tier"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetry_http_requests_total",
				Help: "HTTP requests served, by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetry_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveSync records how long an operation took.
func (m *Metrics) ObserveSync(operation string, d time.Duration) {
	m.syncDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrEntryCreated counts an entry created by reconciliation or pay-ahead.
func (m *Metrics) IncrEntryCreated(origin string) {
	m.entriesCreated.WithLabelValues(origin).Inc()
}

// IncrFailure counts a recoverable failure.
func (m *Metrics) IncrFailure(step string) {
	m.entryFailures.WithLabelValues(step).Inc()
}

// IncrCategoryAction counts a create, update, zero or delete of a synthetic category.
func (m *Metrics) IncrCategoryAction(group, action string) {
	m.categoryActions.WithLabelValues(group, action).Inc()
}

// IncrHeuristicMatch counts an entry matched by a fallback tier.
func (m *Metrics) IncrHeuristicMatch(tier string) {
	m.heuristicMatches.WithLabelValues(tier).Inc()
}

// ObserveRequest records a served HTTP request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
