package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// Check outcomes.
const (
	OutcomePassed  = "passed"
	OutcomeBlocked = "blocked"
	OutcomeError   = "error"
)

// CheckMetrics tracks individual guardrail functions.
//
// Metrics:
//   - sentinel_checks_total{phase,function,outcome}
//   - sentinel_check_duration_seconds{function}
//   - sentinel_blocks_total{function,severity}
//   - sentinel_detector_errors_total{function,cause}
type CheckMetrics struct {
	checksTotal    *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	blocksTotal    *prometheus.CounterVec
	detectorErrors *prometheus.CounterVec
}

// NewCheckMetrics creates and registers check metrics.
func NewCheckMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CheckMetrics {
	cm := &CheckMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "checks_total",
				Help:      "Total number of guardrail function checks by outcome",
			},
			[]string{"phase", "function", "outcome"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of guardrail function checks in seconds",
				Buckets:   cfg.CheckDurationBuckets,
			},
			[]string{"function"},
		),
		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "blocks_total",
				Help:      "Total number of blocking evaluations by severity",
			},
			[]string{"function", "severity"},
		),
		detectorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "detector_errors_total",
				Help:      "Total number of failed checks by cause",
			},
			[]string{"function", "cause"},
		),
	}

	registry.MustRegister(cm.checksTotal, cm.checkDuration, cm.blocksTotal, cm.detectorErrors)
	return cm
}

// RecordFunction records one function result.
func (cm *CheckMetrics) RecordFunction(phase guardrail.Phase, fr guardrail.FunctionResult) {
	fn := string(fr.Function)
	cm.checkDuration.WithLabelValues(fn).Observe(fr.TimeTaken)

	switch {
	case fr.Error != nil:
		cause := string(fr.Error.Cause)
		if cause == "" {
			cause = string(fr.Error.Kind)
		}
		cm.detectorErrors.WithLabelValues(fn, cause).Inc()
		cm.checksTotal.WithLabelValues(string(phase), fn, OutcomeError).Inc()
	case fr.Blocked():
		for _, ev := range fr.Evaluations {
			if ev.Blocked {
				cm.blocksTotal.WithLabelValues(fn, string(ev.Severity)).Inc()
			}
		}
		cm.checksTotal.WithLabelValues(string(phase), fn, OutcomeBlocked).Inc()
	default:
		cm.checksTotal.WithLabelValues(string(phase), fn, OutcomePassed).Inc()
	}
}
