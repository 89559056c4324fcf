// Package metrics provides Prometheus metrics for the bramble resolver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks resolution runs by final status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of resolution runs by status",
		},
		[]string{"status"},
	)

	// StageDuration tracks how long each pipeline stage takes
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bramble",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	// RecordsProcessed tracks records read and normalized
	RecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "pipeline",
			Name:      "records_total",
			Help:      "Total number of account records normalized",
		},
	)

	// DuplicateRecords tracks input records dropped because their account ID was already seen
	DuplicateRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "pipeline",
			Name:      "duplicate_records_total",
			Help:      "Total number of input records dropped for a repeated account id",
		},
	)

	// CandidatePairs tracks candidate pairs emitted per blocking key, before deduplication
	CandidatePairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "blocking",
			Name:      "candidate_pairs_total",
			Help:      "Total number of candidate pairs emitted by blocking key",
		},
		[]string{"key"},
	)

	// SkippedBlocks tracks blocks skipped for exceeding the maximum block size
	SkippedBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "blocking",
			Name:      "skipped_blocks_total",
			Help:      "Total number of oversized blocks skipped by blocking key",
		},
		[]string{"key"},
	)

	// Decisions tracks rule engine verdicts by label
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "rules",
			Name:      "decisions_total",
			Help:      "Total number of match decisions by rule label",
		},
		[]string{"label"},
	)

	// ClusterSize tracks the member count of resolved customers
	ClusterSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bramble",
			Subsystem: "clustering",
			Name:      "cluster_size",
			Help:      "Member count of resolved customer clusters",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		},
	)

	// SinkWrites tracks output sink writes by sink and status
	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Total number of sink writes by sink and status",
		},
		[]string{"sink", "status"},
	)

	// EventsPublished tracks events published to Kafka by type
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bramble",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published by type",
		},
		[]string{"type"},
	)
)

// ObserveStage records the duration of a stage that started at start
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
