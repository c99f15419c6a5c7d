// Package server provides the HTTP check API.
//
// Routes:
//
//	POST /v1/check   run the guardrail engine on a CheckRequest
//	GET  /health     liveness probe
//	GET  /ready      readiness probe (run-log storage and detectors)
//	GET  /metrics    Prometheus scrape endpoint
//	GET  /version    build information
//
// A completed run is returned as a RunResult with status 200 whether or not
// it passed. Malformed requests get 400, oversized bodies 413.
//
// Every request carries an X-Request-ID, generated when the client does not
// send one, which is also attached to log records. The middleware chain is
// recovery, tracing (optional), request ID and logging, outermost first.
//
//	srv := server.NewServer(&cfg.Server, eng,
//	    server.WithHealth(checker, cfg.Telemetry.Health),
//	    server.WithMetrics(cfg.Telemetry.Metrics.Path, collector.Handler()),
//	)
//	err := srv.Start(ctx)
package server
