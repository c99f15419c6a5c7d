// Package logging configures log/slog for the engine.
//
// The handler returned by New adds the request ID, run ID, user, phase and
// function stored in the context to every record logged through the
// *Context methods, and masks emails, phone numbers, SSNs, card numbers and
// credentials when RedactPII is set. Text previews logged by the engine
// therefore never carry the identifiers the entity checks look for.
//
//	logger, err := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging))
//	ctx = logging.WithRunID(ctx, runID)
//	slog.InfoContext(ctx, "run finished", "passed", passed)
package logging
