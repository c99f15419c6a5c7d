// Package metrics exposes guardrail activity as Prometheus metrics.
//
// # Metrics
//
//   - sentinel_runs_total{passed}: runs by verdict
//   - sentinel_run_duration_seconds: run wall-clock time
//   - sentinel_phase_duration_seconds{phase,execution_type}: phase wall-clock time
//   - sentinel_checks_total{phase,function,outcome}: outcome is passed, blocked or error
//   - sentinel_check_duration_seconds{function}: per-function time
//   - sentinel_blocks_total{function,severity}: blocking evaluations
//   - sentinel_detector_errors_total{function,cause}: failed checks
//   - sentinel_runlog_writes_total{status}: success, error or dropped
//   - sentinel_runlog_queue_depth: entries waiting for the run-log writer
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun(result)
//	http.Handle("/metrics", collector.Handler())
//
// The collector also satisfies the run-log recorder's Observer interface.
package metrics
