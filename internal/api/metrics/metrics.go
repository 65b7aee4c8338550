// Package metrics defines and registers all custom Prometheus metrics for the
// portal core. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Moderation metrics ────────────────────────────────────────────────────────

// ModerationDecisionsTotal counts decisions accepted by the authoritative store.
// Labels:
//   - kind: the entity kind ("article", "directory", "company")
//   - status: the resulting status ("APPROVED" or "REJECTED")
var ModerationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_decisions_total",
		Help:      "Total number of moderation decisions persisted.",
	},
	[]string{"kind", "status"},
)

// ConflictsTotal counts operations rejected because the entity or placement
// was no longer in the expected state.
// Label:
//   - operation: "decide" or "reposition"
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_conflicts_total",
		Help:      "Total number of operations lost to a concurrent change.",
	},
	[]string{"operation"},
)

// ── Banner metrics ────────────────────────────────────────────────────────────

// ReordersTotal counts placement reorders.
// Label:
//   - result: "ok", "conflict" or "error"
var ReordersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "banner_reorders_total",
		Help:      "Total number of banner placement reorders, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDroppedTotal counts notifications discarded because the worker
// channel was full or publishing failed.
// Label:
//   - reason: "queue_full" or "publish_failed"
var NotificationsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications that were not delivered.",
	},
	[]string{"reason"},
)

// NotificationsQueueDepth tracks pending notifications per worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Portal metrics ────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - reason: "public", "session_absent", "role_mismatch", "onboarding_incomplete" or "allowed"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by reason.",
	},
	[]string{"reason"},
)

// AuthorityRequestDuration measures calls from the portal to the
// authoritative API.
// Labels:
//   - operation: "list_pending", "decide", "list_banners" or "reposition"
//   - outcome: the failure kind, or "ok"
var AuthorityRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "authority_request_duration_seconds",
		Help:      "Duration of portal calls to the authoritative API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)
