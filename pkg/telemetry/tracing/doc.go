// Package tracing wraps OpenTelemetry for guardrail runs.
//
// A run produces one guardrail.run span, a guardrail.phase span per executed
// phase and a guardrail.check span per function:
//
//	guardrail.run
//	├── guardrail.phase (sentinel.phase=input, sentinel.execution_type=parallel)
//	│   ├── guardrail.check (sentinel.function=moderate_text, sentinel.blocked=true)
//	│   └── guardrail.check (sentinel.function=analyze_sentiment)
//	└── guardrail.phase (sentinel.phase=output)
//
// Spans are exported over OTLP gRPC. Tracing is off by default, in which
// case New returns a noop tracer. Incoming HTTP requests continue the W3C
// trace context of their caller through HTTPMiddleware.
package tracing
