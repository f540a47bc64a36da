// Package metrics defines and registers all custom Prometheus metrics for the
// attendance system. It is the single source of truth for metric names,
// labels, and help strings; metrics self-register via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

// --- Scan metrics ---

// ScansProcessedTotal counts scans that completed a ledger transition.
// Label:
//   - action: "check_in" or "check_out"
var ScansProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_processed_total",
		Help:      "Total number of scans that successfully mutated the ledger.",
	},
	[]string{"action"},
)

// ScanErrorsTotal counts scans rejected by the pipeline.
// Label:
//   - reason: "unknown_card", "wrong_mode", "already_checked_in",
//     "already_checked_out", "not_checked_in_yet", "internal"
var ScanErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_errors_total",
		Help:      "Total number of scans rejected, labelled by reason.",
	},
	[]string{"reason"},
)

// ScanDedupTotal counts debounce decisions.
// Label:
//   - result: "hit" (replayed, ledger untouched) or "miss" (processed)
var ScanDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_dedup_total",
		Help:      "Total number of debounce checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// --- Broadcast metrics ---

// SnapshotPublishedTotal counts dashboard snapshots delivered to the channel.
var SnapshotPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_published_total",
		Help:      "Total number of full dashboard snapshots published.",
	},
)

// SnapshotErrorsTotal counts failed snapshot rebuild or publish attempts.
// Label:
//   - stage: "build" or "publish"
var SnapshotErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_errors_total",
		Help:      "Total number of snapshot failures, labelled by stage.",
	},
	[]string{"stage"},
)

// SnapshotBuildDuration measures how long one full aggregate recomputation takes.
var SnapshotBuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_build_duration_seconds",
		Help:      "Duration of dashboard snapshot recomputation.",
		Buckets:   prometheus.DefBuckets,
	},
)

// BroadcastQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1")
var BroadcastQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broadcast_queue_depth",
		Help:      "Current number of ledger events pending in each broadcast worker channel.",
	},
	[]string{"worker_id"},
)
