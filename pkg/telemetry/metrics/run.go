package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// RunMetrics tracks whole runs and phases.
//
// Metrics:
//   - sentinel_runs_total{passed}
//   - sentinel_run_duration_seconds
//   - sentinel_phase_duration_seconds{phase,execution_type}
type RunMetrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_total",
				Help:      "Total number of guardrail runs by verdict",
			},
			[]string{"passed"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of guardrail runs in seconds",
				Buckets:   cfg.CheckDurationBuckets,
			},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "phase_duration_seconds",
				Help:      "Wall-clock duration of guardrail phases in seconds",
				Buckets:   cfg.CheckDurationBuckets,
			},
			[]string{"phase", "execution_type"},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.runDuration, rm.phaseDuration)
	return rm
}

// RecordRun counts one run and observes its duration in seconds.
func (rm *RunMetrics) RecordRun(passed bool, seconds float64) {
	rm.runsTotal.WithLabelValues(strconv.FormatBool(passed)).Inc()
	rm.runDuration.Observe(seconds)
}

// RecordPhase observes the duration of one executed phase.
func (rm *RunMetrics) RecordPhase(phase guardrail.Phase, mode guardrail.ExecutionType, seconds float64) {
	rm.phaseDuration.WithLabelValues(string(phase), string(mode)).Observe(seconds)
}
