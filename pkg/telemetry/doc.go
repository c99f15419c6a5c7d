// Package telemetry groups the observability of the guardrail engine.
//
// # Components
//
//   - logging: log/slog setup with run, user, phase and function fields
//     taken from the context, and PII redaction
//   - metrics: Prometheus counters and histograms for runs, phases, checks
//     and run-log writes
//   - tracing: OpenTelemetry spans for runs, phases and checks, exported over
//     OTLP gRPC
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, _ := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	e, _ := engine.New(&cfg.Guardrail, detector,
//		engine.WithLogger(logger),
//		engine.WithObserver(collector),
//		engine.WithTracer(tracer),
//	)
//
// # PII Protection
//
// Checked text routinely contains personal data. With redact_pii enabled
// (the default) emails, phone numbers, SSNs and card numbers are masked in
// every log attribute and message.
package telemetry
