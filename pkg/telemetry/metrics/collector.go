package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// Collector owns every Prometheus metric of the engine. It is safe for
// concurrent use; a disabled collector records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics    *RunMetrics
	checkMetrics  *CheckMetrics
	runLogMetrics *RunLogMetrics
}

// NewCollector creates a collector registering into registry, or into a new
// registry when registry is nil.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "sentinel"
	}
	if len(cfg.CheckDurationBuckets) == 0 {
		// Detector round trips: 10ms to 10s.
		cfg.CheckDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		runMetrics:    NewRunMetrics(cfg, registry),
		checkMetrics:  NewCheckMetrics(cfg, registry),
		runLogMetrics: NewRunLogMetrics(cfg, registry),
	}
}

// RecordRun records a finished run: the run itself, each executed phase and
// every function result within it.
func (c *Collector) RecordRun(result *guardrail.RunResult) {
	if !c.config.Enabled || result == nil {
		return
	}

	c.runMetrics.RecordRun(result.Summary.Passed, result.TotalTime)
	for _, phase := range []*guardrail.PhaseResult{result.Input, result.Output} {
		if phase == nil || phase.Skipped {
			continue
		}
		c.runMetrics.RecordPhase(phase.Phase, phase.ExecutionType, phase.TimeTaken)
		for _, fr := range phase.Functions {
			c.checkMetrics.RecordFunction(phase.Phase, fr)
		}
	}
}

// RecordRunLogWrite counts a run-log write by status: success, error or
// dropped.
func (c *Collector) RecordRunLogWrite(status string) {
	if !c.config.Enabled {
		return
	}
	c.runLogMetrics.RecordWrite(status)
}

// SetRunLogQueueDepth reports the number of entries waiting to be written.
func (c *Collector) SetRunLogQueueDepth(depth int) {
	if !c.config.Enabled {
		return
	}
	c.runLogMetrics.SetQueueDepth(depth)
}

// ObserveCheckLatency records a detector call duration for fn outside of a
// full run, as the test command does.
func (c *Collector) ObserveCheckLatency(fn guardrail.FunctionID, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.checkMetrics.checkDuration.WithLabelValues(string(fn)).Observe(d.Seconds())
}

// Registry returns the registry the metrics are registered in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
