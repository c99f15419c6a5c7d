package aggregator

import (
	"time"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// SkippedOutputMessage is recorded on an output phase that had no text.
const SkippedOutputMessage = "output phase skipped: no generated text provided"

// MergeFunctionResults folds the function results of one phase into a
// PhaseResult.
//
// The phase passes when no evaluation blocked. Function errors are always
// listed as failures; they only fail the phase when failClosed is set.
func MergeFunctionResults(phase guardrail.Phase, mode guardrail.ExecutionType, results []guardrail.FunctionResult, elapsed time.Duration, failClosed bool) *guardrail.PhaseResult {
	pr := &guardrail.PhaseResult{
		Phase:         phase,
		Functions:     results,
		Passed:        true,
		TimeTaken:     guardrail.Seconds(elapsed),
		ExecutionType: mode,
	}
	if pr.Functions == nil {
		pr.Functions = []guardrail.FunctionResult{}
	}

	for _, r := range results {
		if r.Error != nil {
			pr.Failures = append(pr.Failures, guardrail.Failure{
				Function: r.Function,
				Error:    r.Error.Message,
			})
			if failClosed {
				pr.Passed = false
			}
			continue
		}
		for _, ev := range r.Evaluations {
			if !ev.Blocked {
				continue
			}
			value := ev.Value
			pr.Failures = append(pr.Failures, guardrail.Failure{
				Function:   r.Function,
				Category:   ev.Category,
				Confidence: &value,
				Severity:   ev.Severity,
				Reason:     ev.Reason,
			})
			pr.Passed = false
		}
	}
	return pr
}

// SkippedPhase returns the result of a configured phase that had no text to
// check. A skipped phase passes.
func SkippedPhase(phase guardrail.Phase, mode guardrail.ExecutionType, message string) *guardrail.PhaseResult {
	return &guardrail.PhaseResult{
		Phase:         phase,
		Functions:     []guardrail.FunctionResult{},
		Passed:        true,
		ExecutionType: mode,
		Skipped:       true,
		Message:       message,
	}
}

// BuildSummary combines phase results into the request-level verdict. Absent
// phases are left out and do not affect the outcome.
func BuildSummary(input, output *guardrail.PhaseResult) guardrail.Summary {
	s := guardrail.Summary{Passed: true}
	if input != nil {
		s.Input = phaseSummary(input)
		s.Passed = s.Passed && input.Passed
	}
	if output != nil {
		s.Output = phaseSummary(output)
		s.Passed = s.Passed && output.Passed
	}
	return s
}

// RejectedSummary is the summary of a run refused before any check ran. The
// phase the run was anchored on fails with message as its only failure.
func RejectedSummary(phase guardrail.Phase, message string) guardrail.Summary {
	ps := &guardrail.PhaseSummary{Failures: []guardrail.Failure{{Error: message}}}
	s := guardrail.Summary{Passed: false}
	if phase == guardrail.PhaseOutput {
		s.Output = ps
	} else {
		s.Input = ps
	}
	return s
}

func phaseSummary(pr *guardrail.PhaseResult) *guardrail.PhaseSummary {
	ps := &guardrail.PhaseSummary{Passed: pr.Passed}
	if len(pr.Failures) > 0 {
		ps.Failures = pr.Failures
	}
	return ps
}
