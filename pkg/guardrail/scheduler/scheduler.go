package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// CheckFunc runs a single check against text and returns its verdicts.
// Errors are recorded on the function result; they never abort the phase.
type CheckFunc func(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error)

// Outcome is the output of one phase execution.
type Outcome struct {
	Results []guardrail.FunctionResult

	// Elapsed is the wall-clock time of the whole phase.
	Elapsed time.Duration
}

// Execute runs every check of plan against text using the plan's execution
// type. Results are returned in declared order under both strategies, and
// every check runs regardless of earlier blocks or failures.
func Execute(ctx context.Context, text string, plan *guardrail.PhasePlan, check CheckFunc) Outcome {
	start := time.Now()
	var results []guardrail.FunctionResult
	if plan.ExecutionType == guardrail.Parallel {
		results = parallel(ctx, text, plan, check)
	} else {
		results = sequential(ctx, text, plan, check)
	}
	return Outcome{Results: results, Elapsed: time.Since(start)}
}

func sequential(ctx context.Context, text string, plan *guardrail.PhasePlan, check CheckFunc) []guardrail.FunctionResult {
	results := make([]guardrail.FunctionResult, len(plan.Checks))
	for i, spec := range plan.Checks {
		results[i] = run(ctx, plan.Phase, spec, text, check)
	}
	return results
}

func parallel(ctx context.Context, text string, plan *guardrail.PhasePlan, check CheckFunc) []guardrail.FunctionResult {
	// Each goroutine owns exactly one slot, so no lock is needed.
	results := make([]guardrail.FunctionResult, len(plan.Checks))
	var wg sync.WaitGroup
	for i, spec := range plan.Checks {
		wg.Add(1)
		go func(i int, spec guardrail.CheckSpec) {
			defer wg.Done()
			results[i] = run(ctx, plan.Phase, spec, text, check)
		}(i, spec)
	}
	wg.Wait()
	return results
}

// run executes one check, timing it and converting failures and panics into
// the function result's error.
func run(ctx context.Context, phase guardrail.Phase, spec guardrail.CheckSpec, text string, check CheckFunc) (result guardrail.FunctionResult) {
	start := time.Now()
	result.Function = spec.Function

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in check",
				"component", "guardrail.scheduler",
				"phase", phase,
				"function", spec.Function,
				"error", r,
				"stack", string(debug.Stack()),
			)
			result.Evaluations = nil
			result.Error = guardrail.NewErrorInfo(fmt.Errorf("check panicked: %v", r))
		}
		result.TimeTaken = guardrail.Seconds(time.Since(start))
	}()

	evals, err := check(ctx, spec, text)
	if err != nil {
		result.Error = guardrail.NewErrorInfo(err)
		return result
	}
	if evals == nil {
		evals = []guardrail.EvaluationResult{}
	}
	result.Evaluations = evals
	return result
}
