// Package metrics defines and registers all custom Prometheus metrics for the
// moody API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moody"

// ── Pin and board metrics ─────────────────────────────────────────────────────

// PinsCreatedTotal counts newly created pins.
var PinsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pins_created_total",
		Help:      "Total number of pins created.",
	},
)

// PinsDeletedTotal counts deleted pins.
// Label:
//   - reason: "explicit", "board_cascade" or "account"
var PinsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pins_deleted_total",
		Help:      "Total number of pins deleted, by reason.",
	},
	[]string{"reason"},
)

// BoardsDeletedTotal counts completed board deletion cascades.
var BoardsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "boards_deleted_total",
		Help:      "Total number of boards deleted.",
	},
)

// MembershipChangesTotal counts pin/board membership mutations.
// Label:
//   - op: "save", "remove" or "move"
var MembershipChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_changes_total",
		Help:      "Total number of membership mutations, by operation.",
	},
	[]string{"op"},
)

// SagaCompensationsTotal counts multi-step mutations that were rolled back.
// Labels:
//   - saga: the mutation name (e.g. "delete_board")
//   - result: "ok" when every compensation succeeded, "failed" otherwise
var SagaCompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saga_compensations_total",
		Help:      "Total number of compensated multi-step mutations.",
	},
	[]string{"saga", "result"},
)

// ── Image metrics ─────────────────────────────────────────────────────────────

// ImageDeleteErrorsTotal counts image deletions that failed after the owning
// record was already gone.
var ImageDeleteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_delete_errors_total",
		Help:      "Total number of failed image deletions.",
	},
)

// ImageDeleteQueueDepth tracks the number of image deletions waiting in each
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImageDeleteQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_delete_queue_depth",
		Help:      "Current number of image deletions pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ImageDeleteDuration measures how long a single image deletion takes.
var ImageDeleteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_delete_duration_seconds",
		Help:      "Duration of image deletions from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── API metrics ───────────────────────────────────────────────────────────────

// GraphQLOperationsTotal counts executed GraphQL operations.
// Labels:
//   - type: "query" or "mutation"
//   - result: "ok" or "error"
var GraphQLOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graphql_operations_total",
		Help:      "Total number of GraphQL operations, by type and result.",
	},
	[]string{"type", "result"},
)

// UploadsTotal counts accepted image uploads.
// Label:
//   - kind: "pin" or "avatar"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of stored uploads, by kind.",
	},
	[]string{"kind"},
)
