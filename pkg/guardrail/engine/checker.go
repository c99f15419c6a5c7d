package engine

import (
	"context"

	"guardrail-hq/sentinel/pkg/detectors/regex"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/evaluators"
	"guardrail-hq/sentinel/pkg/guardrail/scheduler"
	"guardrail-hq/sentinel/pkg/telemetry/logging"
	"guardrail-hq/sentinel/pkg/telemetry/tracing"
)

// checkFunc returns the scheduler callback for one phase: precheck the text,
// collect detection records, then evaluate them.
func (e *Engine) checkFunc(phase guardrail.Phase) scheduler.CheckFunc {
	return func(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error) {
		ctx = logging.WithFunction(ctx, string(spec.Function))
		ctx, span := e.tracer.Start(ctx, tracing.SpanCheck, tracing.CheckStartAttributes(phase, spec.Function))
		defer span.End()

		evals, err := e.check(ctx, spec, text)
		fr := guardrail.FunctionResult{Function: spec.Function, Evaluations: evals}
		if err != nil {
			fr.Evaluations = nil
			fr.Error = guardrail.NewErrorInfo(err)
			tracing.SetError(span, err)
			e.logger.WarnContext(ctx, "guardrail check failed",
				"kind", fr.Error.Kind,
				"cause", fr.Error.Cause,
				"error", err,
			)
		}
		tracing.SetCheckAttributes(span, fr)
		return fr.Evaluations, err
	}
}

func (e *Engine) check(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error) {
	if err := evaluators.Precheck(spec, text); err != nil {
		return nil, err
	}
	records, err := e.detect(ctx, spec, text)
	if err != nil {
		return nil, err
	}
	return evaluators.Evaluate(spec, records)
}

// detect collects the raw records for a check. Entity checks call the API
// only for types it can report and add regex matches for the blocked types
// the regex detector knows.
func (e *Engine) detect(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.DetectionRecord, error) {
	opts := guardrail.DetectOptionsFor(spec)
	if spec.Function != guardrail.FunctionEntities || spec.Entity == nil {
		return e.detector.Detect(ctx, spec.Function, text, opts)
	}

	var records []guardrail.DetectionRecord
	if len(opts.EntityTypes) > 0 {
		api, err := e.detector.Detect(ctx, spec.Function, text, opts)
		if err != nil {
			return nil, err
		}
		records = api
	}
	return append(records, regex.Detect(text, spec.Entity.BlockedTypes)...), nil
}
