// Package metrics defines and registers all custom Prometheus metrics of the
// account console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered on the default registry at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account_console"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts outbound calls to the account backend.
// Labels:
//   - operation: client method (e.g. "login", "list_users", "delete_user")
//   - outcome: "ok", "transport", "rejected", "malformed"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of account backend requests, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// BackendRequestDuration measures backend round-trips.
// Label:
//   - operation: client method
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of account backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// GuardDecisionsTotal counts access guard evaluations.
// Labels:
//   - view: requested view (e.g. "admin")
//   - reason: "allowed", "unauthenticated", "role_mismatch"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by view and reason.",
	},
	[]string{"view", "reason"},
)

// SessionChangesTotal counts session store transitions.
// Label:
//   - kind: "save", "clear", "load"
var SessionChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_changes_total",
		Help:      "Total number of session store changes, by kind.",
	},
	[]string{"kind"},
)

// ── Editor and roster metrics ─────────────────────────────────────────────────

// EditorSubmitsTotal counts field editor submissions.
// Labels:
//   - field: edited field (e.g. "name", "description")
//   - result: "confirmed" or "failed"
var EditorSubmitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_submits_total",
		Help:      "Total number of field editor submissions, by field and result.",
	},
	[]string{"field", "result"},
)

// RosterSize tracks the number of entities held after the last applied fetch.
var RosterSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_size",
		Help:      "Number of entities in the roster after the last applied fetch.",
	},
)

// RosterFetchesTotal counts roster fetches.
// Label:
//   - result: "applied", "failed", "superseded"
var RosterFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_fetches_total",
		Help:      "Total number of roster fetches, by result.",
	},
	[]string{"result"},
)
