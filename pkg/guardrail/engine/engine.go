package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/aggregator"
	"guardrail-hq/sentinel/pkg/guardrail/resolver"
	"guardrail-hq/sentinel/pkg/guardrail/scheduler"
	"guardrail-hq/sentinel/pkg/runlog"
	"guardrail-hq/sentinel/pkg/telemetry/logging"
	"guardrail-hq/sentinel/pkg/telemetry/tracing"
)

// DefaultUserName is logged when neither the run nor the configuration
// names a user.
const DefaultUserName = "default"

// RunObserver receives every finished run. *metrics.Collector implements it.
type RunObserver interface {
	RecordRun(result *guardrail.RunResult)
}

// supporter is implemented by detectors that know which kinds they serve,
// such as *detectors.Router.
type supporter interface {
	Supports(kind guardrail.FunctionID) bool
}

// snapshot is the immutable configuration a run executes against.
type snapshot struct {
	plans      resolver.Plans
	failClosed bool
	userName   string
}

// Engine runs the configured guardrail phases against text and returns the
// verdicts. It is safe for concurrent use; Reload swaps the configuration
// without affecting runs already in flight.
type Engine struct {
	detector detectors.Detector
	sink     runlog.Sink
	observer RunObserver
	tracer   *tracing.Tracer
	logger   *slog.Logger

	current atomic.Pointer[snapshot]
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink appends every run to sink.
func WithSink(sink runlog.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithObserver reports every finished run to o.
func WithObserver(o RunObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// WithTracer records run, phase and check spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New resolves the guardrail configuration and builds an engine. All
// configuration problems surface here as *guardrail.ConfigError.
func New(cfg *config.GuardrailConfig, detector detectors.Detector, opts ...Option) (*Engine, error) {
	if detector == nil {
		return nil, &guardrail.ConfigError{Message: "detector is required"}
	}

	e := &Engine{
		detector: detector,
		tracer:   tracing.Noop(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "guardrail.engine")

	snap, err := e.build(cfg)
	if err != nil {
		return nil, err
	}
	e.current.Store(snap)
	return e, nil
}

// Reload resolves cfg and atomically replaces the running configuration.
// On error the previous configuration stays in effect.
func (e *Engine) Reload(cfg *config.GuardrailConfig) error {
	snap, err := e.build(cfg)
	if err != nil {
		return err
	}
	e.current.Store(snap)
	e.logger.Info("guardrail configuration reloaded",
		"input_functions", functionNames(snap.plans.Input),
		"output_functions", functionNames(snap.plans.Output),
		"fail_closed", snap.failClosed,
	)
	return nil
}

// Plans returns the resolved plans currently in effect.
func (e *Engine) Plans() resolver.Plans {
	return e.current.Load().plans
}

// Detector returns the detector checks are dispatched to.
func (e *Engine) Detector() detectors.Detector {
	return e.detector
}

func (e *Engine) build(cfg *config.GuardrailConfig) (*snapshot, error) {
	if cfg == nil {
		return nil, &guardrail.ConfigError{Message: "guardrail configuration is required"}
	}
	plans, err := resolver.ResolveGuardrail(cfg)
	if err != nil {
		return nil, err
	}
	if s, ok := e.detector.(supporter); ok {
		for _, plan := range []*guardrail.PhasePlan{plans.Input, plans.Output} {
			if plan == nil {
				continue
			}
			for _, fn := range plan.Functions() {
				if !s.Supports(fn) {
					return nil, &guardrail.ConfigError{
						Phase:   plan.Phase,
						Key:     "functions",
						Message: fmt.Sprintf("no detector configured for %s", fn),
						Cause:   guardrail.ErrNoDetector,
					}
				}
			}
		}
	}

	user := strings.TrimSpace(cfg.UserName)
	if user == "" {
		user = DefaultUserName
	}
	return &snapshot{plans: plans, failClosed: cfg.FailClosed, userName: user}, nil
}

// RunOption configures a single run.
type RunOption func(*runOptions)

type runOptions struct {
	user string
}

// WithUser names the caller in the run log, overriding the configured user.
// An empty name keeps the configured one.
func WithUser(name string) RunOption {
	return func(o *runOptions) {
		if name = strings.TrimSpace(name); name != "" {
			o.user = name
		}
	}
}

// request selects which phases a run executes.
type request struct {
	input, generated string
	runInput         bool
	runOutput        bool
}

// Run checks input with the input phase and generated with the output phase.
// Generated may be empty, in which case a configured output phase is reported
// as skipped. The returned error is non-nil only if ctx is already done;
// detector failures are recorded on the result.
func (e *Engine) Run(ctx context.Context, input, generated string, opts ...RunOption) (*guardrail.RunResult, error) {
	return e.run(ctx, request{input: input, generated: generated, runInput: true, runOutput: true}, opts)
}

// RunInput runs only the input phase.
func (e *Engine) RunInput(ctx context.Context, input string, opts ...RunOption) (*guardrail.RunResult, error) {
	return e.run(ctx, request{input: input, runInput: true}, opts)
}

// RunOutput runs only the output phase against generated text.
func (e *Engine) RunOutput(ctx context.Context, generated string, opts ...RunOption) (*guardrail.RunResult, error) {
	return e.run(ctx, request{generated: generated, runOutput: true}, opts)
}

func (e *Engine) run(ctx context.Context, req request, opts []RunOption) (*guardrail.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := e.current.Load()
	ro := runOptions{user: snap.userName}
	for _, opt := range opts {
		opt(&ro)
	}

	start := time.Now()
	result := &guardrail.RunResult{
		RunID: uuid.New().String(),
		Text:  guardrail.TextInfo{Input: req.input, Generated: req.generated},
	}

	ctx = logging.WithRunID(ctx, result.RunID)
	ctx = logging.WithUser(ctx, ro.user)
	ctx, span := e.tracer.Start(ctx, tracing.SpanRun)
	defer span.End()

	// The text the run is anchored on: input normally, generated for RunOutput.
	primary, primaryPhase, label := req.input, guardrail.PhaseInput, "Input"
	if !req.runInput {
		primary, primaryPhase, label = req.generated, guardrail.PhaseOutput, "Generated"
	}

	if strings.TrimSpace(primary) == "" {
		result.Error = label + " " + guardrail.ErrEmptyText.Error()
		result.Summary = aggregator.RejectedSummary(primaryPhase, result.Error)
		tracing.SetError(span, guardrail.ErrEmptyText)
		e.logger.WarnContext(ctx, "guardrail run rejected", "error", guardrail.ErrEmptyText)
	} else {
		if req.runInput && snap.plans.Input != nil {
			result.Input = e.runPhase(ctx, snap, snap.plans.Input, req.input)
		}
		if req.runOutput && snap.plans.Output != nil {
			if strings.TrimSpace(req.generated) == "" {
				result.Output = aggregator.SkippedPhase(guardrail.PhaseOutput, snap.plans.Output.ExecutionType, aggregator.SkippedOutputMessage)
			} else {
				result.Output = e.runPhase(ctx, snap, snap.plans.Output, req.generated)
			}
		}
		result.Summary = aggregator.BuildSummary(result.Input, result.Output)
	}

	result.TotalTime = guardrail.Seconds(time.Since(start))
	tracing.SetRunAttributes(span, result)

	e.logger.InfoContext(ctx, "guardrail run finished",
		"passed", result.Summary.Passed,
		"total_time_seconds", result.TotalTime,
		"input_failures", failureCount(result.Input),
		"output_failures", failureCount(result.Output),
	)

	if e.observer != nil {
		e.observer.RecordRun(result)
	}
	e.record(ctx, ro.user, result)
	return result, nil
}

func (e *Engine) runPhase(ctx context.Context, snap *snapshot, plan *guardrail.PhasePlan, text string) *guardrail.PhaseResult {
	ctx = logging.WithPhase(ctx, string(plan.Phase))
	ctx, span := e.tracer.Start(ctx, tracing.SpanPhase, tracing.PhaseStartAttributes(plan.Phase, plan.ExecutionType))
	defer span.End()

	outcome := scheduler.Execute(ctx, text, plan, e.checkFunc(plan.Phase))
	pr := aggregator.MergeFunctionResults(plan.Phase, plan.ExecutionType, outcome.Results, outcome.Elapsed, snap.failClosed)
	tracing.SetPhaseAttributes(span, pr)

	e.logger.DebugContext(ctx, "guardrail phase finished",
		"execution_type", plan.ExecutionType,
		"passed", pr.Passed,
		"failures", len(pr.Failures),
		"time_taken_seconds", pr.TimeTaken,
	)
	return pr
}

// record appends the run to the sink. The run has already finished, so a
// cancelled request context must not lose the entry.
func (e *Engine) record(ctx context.Context, user string, result *guardrail.RunResult) {
	if e.sink == nil {
		return
	}
	entry := &runlog.Entry{
		ID:         result.RunID,
		Timestamp:  time.Now(),
		UserName:   user,
		InputText:  result.Text.Input,
		OutputText: result.Text.Generated,
		Passed:     result.Summary.Passed,
		Result:     result,
	}
	if err := e.sink.Append(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.ErrorContext(ctx, "failed to append run log entry", "error", err)
	}
}

func failureCount(pr *guardrail.PhaseResult) int {
	if pr == nil {
		return 0
	}
	return len(pr.Failures)
}

func functionNames(plan *guardrail.PhasePlan) []guardrail.FunctionID {
	if plan == nil {
		return nil
	}
	return plan.Functions()
}
