package evaluators

import (
	"fmt"
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Evaluator turns the raw detection records of one check into verdicts.
// Evaluators are pure: the same spec and records always give the same result.
type Evaluator func(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult

// table is the fixed dispatch from function id to evaluator.
var table = map[guardrail.FunctionID]Evaluator{
	guardrail.FunctionSentiment:  EvaluateSentiment,
	guardrail.FunctionEntities:   EvaluateEntities,
	guardrail.FunctionClassify:   EvaluateClassification,
	guardrail.FunctionModerate:   EvaluateModeration,
	guardrail.FunctionModelArmor: EvaluateModelArmor,
}

// For returns the evaluator registered for a function.
func For(fn guardrail.FunctionID) (Evaluator, bool) {
	ev, ok := table[fn]
	return ev, ok
}

// Evaluate dispatches records to the evaluator for spec.Function.
func Evaluate(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) ([]guardrail.EvaluationResult, error) {
	ev, ok := For(spec.Function)
	if !ok {
		return nil, fmt.Errorf("no evaluator for function %q", spec.Function)
	}
	return ev(spec, records), nil
}

// MinClassificationWords is the shortest text the classifier accepts.
const MinClassificationWords = 20

// Precheck rejects text a function cannot evaluate before any detector is
// called. It returns a *guardrail.ValidationError.
func Precheck(spec guardrail.CheckSpec, text string) error {
	if spec.Function == guardrail.FunctionClassify {
		if n := len(strings.Fields(text)); n < MinClassificationWords {
			return &guardrail.ValidationError{
				Function: spec.Function,
				Message:  fmt.Sprintf("text must contain at least %d words for classification, got %d", MinClassificationWords, n),
			}
		}
	}
	return nil
}

func threshold(v float64) *float64 {
	return &v
}
