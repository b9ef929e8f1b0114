package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sweepRunsTotal,
		sweepSkippedTotal,
		sweepDuration,
	)
}

var (
	sweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expiry_sweep_runs_total",
			Help: "Expiration sweep executions by outcome (ok/error).",
		},
		[]string{"outcome"},
	)

	sweepSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "expiry_sweep_skipped_total",
			Help: "Sweep ticks skipped because another replica held the lock.",
		},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "expiry_sweep_duration_seconds",
			Help:    "Wall time of one expiration sweep.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncSweepRun(outcome string) {
	sweepRunsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSweepSkipped() {
	sweepSkippedTotal.Inc()
}

func ObserveSweepDuration(seconds float64) {
	sweepDuration.Observe(seconds)
}
