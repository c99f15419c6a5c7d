// Package health provides liveness and readiness probes.
//
// Liveness only reports that the process is up. Readiness runs the
// registered checks concurrently; the server registers one for the run-log
// storage and one for the detectors:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("run_log", health.StorageCheck(store))
//	checker.RegisterCheck("detectors", health.DetectorCheck(detector))
//	mux.Handle("/health", checker.LivenessHandler())
//	mux.Handle("/ready", checker.ReadinessHandler())
//
// A REST detector turns unhealthy after three consecutive failed calls and
// recovers on the next success.
package health
