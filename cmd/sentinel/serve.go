package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
	"guardrail-hq/sentinel/pkg/runlog/retention"
	"guardrail-hq/sentinel/pkg/server"
	"guardrail-hq/sentinel/pkg/server/auth"
	"guardrail-hq/sentinel/pkg/telemetry/health"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP check API",
	Long: `Start the HTTP check API with the specified configuration.

Endpoints:
  POST /v1/check   run the guardrail phases, body {"input_text": "..."}
  GET  /health     liveness
  GET  /ready      readiness (run log storage and detector health)
  GET  /metrics    Prometheus metrics
  GET  /version    build information

Examples:
  # Start with default config
  sentinel serve

  # Override listen address and reload the guardrail section on change
  sentinel serve --listen 0.0.0.0:8080 --watch

  # Build every component without starting the server
  sentinel serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "build components without starting the server")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload the guardrail section when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.watch {
		cfg.Guardrail.Watch = true
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	if a.storage != nil && cfg.RunLog.Retention.Days > 0 && cfg.RunLog.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(a.storage, &retention.Config{
			Days:          cfg.RunLog.Retention.Days,
			PruneSchedule: cfg.RunLog.Retention.PruneSchedule,
			ArchiveDir:    cfg.RunLog.Retention.ArchiveDir,
		})
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("start retention pruner: %w", err))
		}
		defer pruner.Stop()
	}

	var validator *auth.Validator
	if cfg.Server.Auth.Enabled {
		validator = auth.NewValidator(authKeys(cfg.Server.Auth))
		if validator.Len() == 0 {
			return cli.NewCommandError("serve", fmt.Errorf("auth is enabled but no API key resolved"))
		}
	}

	if cfg.Guardrail.Watch {
		reloader, err := engine.NewReloader(a.engine, config.Path(), config.ReloadGuardrail, 0)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		if validator != nil {
			reloader.OnReload = func(err error) {
				if err == nil {
					validator.Replace(authKeys(config.GetConfig().Server.Auth))
				}
			}
		}
		defer reloader.Stop()
		go func() {
			if err := reloader.Watch(ctx); err != nil {
				a.logger.Error("configuration watcher stopped", "error", err)
			}
		}()
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("detectors", health.DetectorCheck(a.detector))
	if a.storage != nil {
		checker.RegisterCheck("run_log", health.StorageCheck(a.storage))
	}

	opts := []server.Option{
		server.WithHealth(checker, cfg.Telemetry.Health),
		server.WithVersion(Version, GitCommit, BuildDate),
		server.WithTracing(cfg.Telemetry.Tracing.Enabled),
	}
	if validator != nil {
		opts = append(opts, server.WithAuth(auth.NewMiddleware(validator, nil)))
	}
	if a.collector != nil {
		opts = append(opts, server.WithMetrics(cfg.Telemetry.Metrics.Path, a.collector.Handler()))
	}
	srv := server.NewServer(&cfg.Server, a.engine, opts...)

	printBanner(cmd, cfg, a)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	a.logger.Info("server stopped")
	return nil
}

// authKeys resolves the configured API keys.
func authKeys(cfg config.AuthConfig) []auth.Key {
	keys := make([]auth.Key, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		keys = append(keys, auth.Key{Key: k.Value(), UserName: k.UserName, Disabled: k.Disabled})
	}
	return keys
}

func printBanner(cmd *cobra.Command, cfg *config.Config, a *app) {
	out := cmd.OutOrStdout()
	plans := a.engine.Plans()
	fmt.Fprintf(out, "Sentinel %s\n", Version)
	fmt.Fprintf(out, "✓ Detectors: %s\n", cfg.Detectors.Mode)
	fmt.Fprintf(out, "✓ Input phase: %v (%s)\n", plans.Input.Functions(), executionType(plans.Input))
	fmt.Fprintf(out, "✓ Output phase: %v (%s)\n", plans.Output.Functions(), executionType(plans.Output))
	if a.storage != nil {
		fmt.Fprintf(out, "✓ Run log: %s\n", cfg.RunLog.Backend)
	}
	if cfg.Server.Auth.Enabled {
		fmt.Fprintf(out, "✓ API key auth: %d keys\n", len(cfg.Server.Auth.Keys))
	}
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
}
