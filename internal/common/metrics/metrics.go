// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MutationsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_mutations_recorded_total",
			Help: "Total number of entity mutations recorded in the activity log",
		},
		[]string{"entity_type", "action"},
	)

	LogAppendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_log_append_failures_total",
			Help: "Total number of best-effort activity log appends that failed",
		},
		[]string{"entity_type"},
	)

	StatsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tracker_stats_compute_duration_seconds",
			Help: "Duration of derived statistics computation in seconds",
		},
		[]string{"kind"},
	)

	StatsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_stats_cache_hits_total",
			Help: "Stats cache lookups by outcome",
		},
		[]string{"kind", "outcome"},
	)
)
