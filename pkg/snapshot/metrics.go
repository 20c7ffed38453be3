package snapshot

import (
	"github.com/Sternrassler/cmc-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	factory = promauto.With(metrics.Registry)

	// SnapshotWrites tracks stored snapshots
	SnapshotWrites = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cmc_snapshot_writes_total",
			Help: "Total number of snapshots written",
		},
	)

	// SnapshotReads tracks reads by result
	SnapshotReads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmc_snapshot_reads_total",
			Help: "Total number of snapshot reads",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// SnapshotSize tracks the size of the last written snapshot
	SnapshotSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cmc_snapshot_size_bytes",
			Help: "Size of the last written snapshot in bytes",
		},
	)

	// SnapshotErrors tracks store operation errors
	SnapshotErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmc_snapshot_errors_total",
			Help: "Total number of snapshot store errors",
		},
		[]string{"operation"}, // "save", "load", "delete"
	)
)
