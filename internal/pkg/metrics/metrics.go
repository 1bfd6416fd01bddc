// Package metrics defines and registers the custom Prometheus metrics of the
// portal. It is the single source of truth for metric names, labels, and help
// strings. All metrics live on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts finished login attempts.
// Label:
//   - outcome: "success", "failure", "blocked" or "in_progress"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// RestoresTotal counts session restorations.
// Label:
//   - outcome: "already_loaded", "no_token", "restored" or "failed"
var RestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "restores_total",
		Help:      "Total number of session restorations, by outcome.",
	},
	[]string{"outcome"},
)

// LogoutsTotal counts logouts.
// Label:
//   - remote: "ok", "failed" or "skipped" for the best-effort server call
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "logouts_total",
		Help:      "Total number of logouts, by result of the remote notification.",
	},
	[]string{"remote"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts navigation guard verdicts.
// Labels:
//   - outcome: "allowed" or "redirected"
//   - rule: the rule that decided (e.g. "public", "session-required")
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Total number of navigation guard decisions, by outcome and rule.",
	},
	[]string{"outcome", "rule"},
)

// ── Remote API metrics ────────────────────────────────────────────────────────

// APIRequestDuration measures calls to the remote API.
// Labels:
//   - endpoint: logical endpoint name (e.g. "login", "me")
//   - code: HTTP status code, or "error" when no response was received
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of calls to the remote API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "code"},
)
