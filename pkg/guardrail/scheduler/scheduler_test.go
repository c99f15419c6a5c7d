package scheduler

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"guardrail-hq/sentinel/pkg/guardrail"
)

func plan(mode guardrail.ExecutionType, fns ...guardrail.FunctionID) *guardrail.PhasePlan {
	p := &guardrail.PhasePlan{Phase: guardrail.PhaseInput, ExecutionType: mode}
	for _, fn := range fns {
		p.Checks = append(p.Checks, guardrail.CheckSpec{Function: fn})
	}
	return p
}

var allFunctions = []guardrail.FunctionID{
	guardrail.FunctionSentiment,
	guardrail.FunctionEntities,
	guardrail.FunctionClassify,
	guardrail.FunctionModerate,
	guardrail.FunctionModelArmor,
}

// staggered finishes later checks first so that completion order differs
// from declared order.
func staggered(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error) {
	for i, fn := range allFunctions {
		if fn == spec.Function {
			time.Sleep(time.Duration(len(allFunctions)-i) * 5 * time.Millisecond)
		}
	}
	switch spec.Function {
	case guardrail.FunctionModerate:
		return nil, guardrail.NewDetectorError(spec.Function, guardrail.CauseQuotaExhausted, errors.New("quota"))
	case guardrail.FunctionClassify:
		return nil, &guardrail.ValidationError{Function: spec.Function, Message: "too short"}
	}
	return []guardrail.EvaluationResult{{Category: string(spec.Function), Blocked: spec.Function == guardrail.FunctionSentiment}}, nil
}

func stripTiming(results []guardrail.FunctionResult) []guardrail.FunctionResult {
	out := make([]guardrail.FunctionResult, len(results))
	for i, r := range results {
		r.TimeTaken = 0
		out[i] = r
	}
	return out
}

func TestExecute_SequentialAndParallelAgree(t *testing.T) {
	ctx := context.Background()
	seq := Execute(ctx, "text", plan(guardrail.Sequential, allFunctions...), staggered)
	par := Execute(ctx, "text", plan(guardrail.Parallel, allFunctions...), staggered)

	if !reflect.DeepEqual(stripTiming(seq.Results), stripTiming(par.Results)) {
		t.Errorf("sequential and parallel results differ:\nseq: %+v\npar: %+v", seq.Results, par.Results)
	}
	for i, r := range par.Results {
		if r.Function != allFunctions[i] {
			t.Errorf("result %d function = %q, want %q", i, r.Function, allFunctions[i])
		}
	}
	if par.Elapsed >= seq.Elapsed {
		t.Errorf("parallel elapsed %v should be below sequential %v", par.Elapsed, seq.Elapsed)
	}
}

func TestExecute_ErrorIsolation(t *testing.T) {
	out := Execute(context.Background(), "text", plan(guardrail.Parallel, allFunctions...), staggered)

	mod := out.Results[3]
	if mod.Error == nil || mod.Error.Kind != guardrail.ErrorKindDetector || mod.Error.Cause != guardrail.CauseQuotaExhausted {
		t.Errorf("moderate error = %+v, want quota_exhausted detector error", mod.Error)
	}
	if mod.Evaluations != nil {
		t.Errorf("errored result carries evaluations: %+v", mod.Evaluations)
	}

	cls := out.Results[2]
	if cls.Error == nil || cls.Error.Kind != guardrail.ErrorKindValidation {
		t.Errorf("classify error = %+v, want validation error", cls.Error)
	}

	for _, i := range []int{0, 1, 4} {
		if out.Results[i].Error != nil || len(out.Results[i].Evaluations) != 1 {
			t.Errorf("result %d = %+v, want one evaluation and no error", i, out.Results[i])
		}
	}
}

func TestExecute_NoShortCircuit(t *testing.T) {
	var calls atomic.Int32
	check := func(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error) {
		calls.Add(1)
		return []guardrail.EvaluationResult{{Blocked: true}}, nil
	}
	Execute(context.Background(), "text", plan(guardrail.Sequential, allFunctions...), check)
	if got := calls.Load(); got != int32(len(allFunctions)) {
		t.Errorf("calls = %d, want %d", got, len(allFunctions))
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	check := func(ctx context.Context, spec guardrail.CheckSpec, text string) ([]guardrail.EvaluationResult, error) {
		if spec.Function == guardrail.FunctionEntities {
			panic("boom")
		}
		return nil, nil
	}

	for _, mode := range []guardrail.ExecutionType{guardrail.Sequential, guardrail.Parallel} {
		t.Run(string(mode), func(t *testing.T) {
			out := Execute(context.Background(), "text", plan(mode, guardrail.FunctionSentiment, guardrail.FunctionEntities), check)
			if out.Results[1].Error == nil || out.Results[1].Error.Kind != guardrail.ErrorKindInternal {
				t.Errorf("panicking check error = %+v, want internal error", out.Results[1].Error)
			}
			if out.Results[0].Error != nil || out.Results[0].Evaluations == nil {
				t.Errorf("healthy check = %+v, want empty evaluations", out.Results[0])
			}
		})
	}
}
