package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectorfactory"
	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
	"guardrail-hq/sentinel/pkg/runlog"
	"guardrail-hq/sentinel/pkg/runlog/recorder"
	"guardrail-hq/sentinel/pkg/runlog/storage"
	"guardrail-hq/sentinel/pkg/telemetry/logging"
	"guardrail-hq/sentinel/pkg/telemetry/metrics"
	"guardrail-hq/sentinel/pkg/telemetry/tracing"
)

// app holds the components shared by the check and serve commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	detector  *detectors.Router
	collector *metrics.Collector
	tracer    *tracing.Tracer
	storage   runlog.Storage
	recorder  *recorder.Recorder
	engine    *engine.Engine
}

// loadConfig loads the file named by --config with environment overrides
// into the process-wide configuration.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewCommandError("config", err)
	}
	return config.GetConfig(), nil
}

// setupLogging installs the configured logger as the slog default. --verbose
// forces debug level.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		lc.Level = "debug"
	}
	logger, err := logging.Setup(lc)
	if err != nil {
		return nil, cli.NewCommandError("logging", err)
	}
	return logger, nil
}

// newApp wires detectors, telemetry, run logging and the engine from cfg.
// The caller must Close the result.
func newApp(cfg *config.Config) (_ *app, err error) {
	logger, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.detector, err = detectorfactory.New(cfg.Detectors)
	if err != nil {
		return nil, cli.NewCommandError("detectors", err)
	}

	if cfg.Telemetry.Metrics.Enabled {
		a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, cli.NewCommandError("tracing", err)
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithTracer(a.tracer),
	}
	if a.collector != nil {
		opts = append(opts, engine.WithObserver(a.collector))
	}

	if cfg.RunLog.Enabled {
		a.storage, err = storage.New(cfg.RunLog)
		if err != nil {
			return nil, cli.NewCommandError("run log", err)
		}
		var recOpts []recorder.Option
		if a.collector != nil {
			recOpts = append(recOpts, recorder.WithObserver(a.collector))
		}
		a.recorder = recorder.NewRecorder(a.storage, &recorder.Config{
			AsyncBuffer:  cfg.RunLog.Recorder.AsyncBuffer,
			WriteTimeout: cfg.RunLog.Recorder.WriteTimeout,
		}, recOpts...)
		opts = append(opts, engine.WithSink(a.recorder))
	}

	a.engine, err = engine.New(&cfg.Guardrail, a.detector, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("guardrail engine ready",
		"detector_mode", cfg.Detectors.Mode,
		"input_functions", a.engine.Plans().Input.Functions(),
		"output_functions", a.engine.Plans().Output.Functions(),
		"run_log", cfg.RunLog.Enabled,
	)
	return a, nil
}

// Close drains the run-log recorder, then closes storage and flushes traces.
func (a *app) Close() error {
	var errs []error
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close recorder: %w", err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close run log storage: %w", err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}
