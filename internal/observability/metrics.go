package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reconcilePasses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "reconciler",
		Name:      "passes_total",
		Help:      "Reconciliation passes run on foreground resume.",
	})

	corruptSnapshots = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "reconciler",
		Name:      "corrupt_snapshots_recovered_total",
		Help:      "Snapshots that failed to deserialize and were rebuilt from the ledger.",
	})

	partialWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "reconciler",
		Name:      "partial_writes_detected_total",
		Help:      "Stored streaks found disagreeing with the ledger-derived streak.",
	})

	snapshotPublishes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "snapshot",
		Name:      "publishes_total",
		Help:      "Full snapshot publishes by the main-process writer.",
	})

	droppedPublishJobs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "worker",
		Name:      "publish_jobs_dropped_total",
		Help:      "Publish jobs dropped because the worker queue was full.",
	})

	milestoneEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_engine",
		Subsystem: "streak",
		Name:      "milestone_events_total",
		Help:      "Milestone events emitted on exact streak matches.",
	})
)

func init() {
	prometheus.MustRegister(
		reconcilePasses,
		corruptSnapshots,
		partialWrites,
		snapshotPublishes,
		droppedPublishJobs,
		milestoneEvents,
	)
}

func RecordReconcilePass() { reconcilePasses.Inc() }

func RecordCorruptSnapshot() { corruptSnapshots.Inc() }

func RecordPartialWrite() { partialWrites.Inc() }

func RecordSnapshotPublish() { snapshotPublishes.Inc() }

func RecordDroppedPublishJob() { droppedPublishJobs.Inc() }

func RecordMilestoneEvent() { milestoneEvents.Inc() }
