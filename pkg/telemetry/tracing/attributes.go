package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Span names.
const (
	SpanRun   = "guardrail.run"
	SpanPhase = "guardrail.phase"
	SpanCheck = "guardrail.check"
)

// Attribute keys.
const (
	AttrRunID         = "sentinel.run_id"
	AttrUser          = "sentinel.user"
	AttrPhase         = "sentinel.phase"
	AttrExecutionType = "sentinel.execution_type"
	AttrFunction      = "sentinel.function"
	AttrBlocked       = "sentinel.blocked"
	AttrPassed        = "sentinel.passed"
	AttrFailureCount  = "sentinel.failure_count"
	AttrErrorCause    = "sentinel.error.cause"
	AttrErrorMessage  = "error.message"
)

// SetRunAttributes annotates a run span with its verdict.
func SetRunAttributes(span trace.Span, result *guardrail.RunResult) {
	span.SetAttributes(
		attribute.String(AttrRunID, result.RunID),
		attribute.Bool(AttrPassed, result.Summary.Passed),
	)
}

// SetPhaseAttributes annotates a phase span with its verdict.
func SetPhaseAttributes(span trace.Span, result *guardrail.PhaseResult) {
	span.SetAttributes(
		attribute.Bool(AttrPassed, result.Passed),
		attribute.Int(AttrFailureCount, len(result.Failures)),
	)
}

// SetCheckAttributes annotates a check span with its outcome.
func SetCheckAttributes(span trace.Span, result guardrail.FunctionResult) {
	span.SetAttributes(attribute.Bool(AttrBlocked, result.Blocked()))
	if result.Error != nil {
		span.SetAttributes(
			attribute.String(AttrErrorCause, string(result.Error.Cause)),
			attribute.String(AttrErrorMessage, result.Error.Message),
		)
	}
}

// PhaseStartAttributes returns the attributes a phase span starts with.
func PhaseStartAttributes(phase guardrail.Phase, mode guardrail.ExecutionType) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String(AttrPhase, string(phase)),
		attribute.String(AttrExecutionType, string(mode)),
	)
}

// CheckStartAttributes returns the attributes a check span starts with.
func CheckStartAttributes(phase guardrail.Phase, fn guardrail.FunctionID) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String(AttrPhase, string(phase)),
		attribute.String(AttrFunction, string(fn)),
	)
}
