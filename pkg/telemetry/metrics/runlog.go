package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"guardrail-hq/sentinel/pkg/config"
)

// RunLogMetrics tracks the asynchronous run-log writer.
//
// Metrics:
//   - sentinel_runlog_writes_total{status}
//   - sentinel_runlog_queue_depth
type RunLogMetrics struct {
	writesTotal *prometheus.CounterVec
	queueDepth  prometheus.Gauge
}

// NewRunLogMetrics creates and registers run-log metrics.
func NewRunLogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunLogMetrics {
	lm := &RunLogMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runlog_writes_total",
				Help:      "Total number of run log writes by status",
			},
			[]string{"status"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "runlog_queue_depth",
				Help:      "Number of run log entries waiting to be written",
			},
		),
	}

	registry.MustRegister(lm.writesTotal, lm.queueDepth)
	return lm
}

// RecordWrite counts one write attempt.
func (lm *RunLogMetrics) RecordWrite(status string) {
	lm.writesTotal.WithLabelValues(status).Inc()
}

// SetQueueDepth sets the current queue depth.
func (lm *RunLogMetrics) SetQueueDepth(depth int) {
	lm.queueDepth.Set(float64(depth))
}
