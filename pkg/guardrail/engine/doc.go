// Package engine runs guardrail phases end to end.
//
// An Engine is built once from the guardrail configuration and a detector:
//
//	eng, err := engine.New(&cfg.Guardrail, router,
//	    engine.WithSink(recorder),
//	    engine.WithObserver(collector),
//	    engine.WithTracer(tracer),
//	)
//	result, err := eng.Run(ctx, prompt, reply)
//
// Every configured check runs; detector and validation failures are recorded
// on their function result and only fail the phase when fail_closed is set.
// Run returns an error only when ctx is already done before the run starts.
//
// Reload and Reloader replace the resolved configuration atomically. Runs in
// flight finish against the configuration they started with.
package engine
