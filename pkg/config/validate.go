package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Function names and option keys inside the guardrail phases are checked when
// an engine resolves them; Validate only checks the structural fields.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGuardrail(&cfg.Guardrail)...)
	errs = append(errs, validateDetectors(&cfg.Detectors)...)
	errs = append(errs, validateRunLog(&cfg.RunLog)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateGuardrail validates the guardrail section.
func validateGuardrail(cfg *GuardrailConfig) []FieldError {
	var errs []FieldError

	if strings.ContainsAny(cfg.UserName, `/\`) {
		errs = append(errs, FieldError{
			Field:   "guardrail.user_name",
			Message: "user name must not contain path separators",
		})
	}

	phases := map[string]*PhaseConfig{"input": cfg.Input, "output": cfg.Output}
	for _, name := range []string{"input", "output"} {
		phase := phases[name]
		if phase == nil {
			continue
		}
		switch strings.ToLower(phase.ExecutionType) {
		case "sequential", "parallel":
		default:
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("guardrail.%s.execution_type", name),
				Message: fmt.Sprintf("invalid execution type %q (must be: sequential, parallel)", phase.ExecutionType),
			})
		}
		for i, fn := range phase.Functions {
			if strings.TrimSpace(fn) == "" {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("guardrail.%s.functions[%d]", name, i),
					Message: "function name cannot be empty",
				})
			}
		}
	}

	return errs
}

// validateDetectors validates detector configuration.
func validateDetectors(cfg *DetectorsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "live":
	case "fixture":
		if cfg.Fixture.Path == "" {
			errs = append(errs, FieldError{
				Field:   "detectors.fixture.path",
				Message: "fixture path is required in fixture mode",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "detectors.mode",
			Message: fmt.Sprintf("invalid mode %q (must be: live, fixture)", cfg.Mode),
		})
	}

	if err := validateURL(cfg.Language.Endpoint); err != nil {
		errs = append(errs, FieldError{Field: "detectors.language.endpoint", Message: err.Error()})
	}
	if cfg.Language.APIVersion != "v1" && cfg.Language.APIVersion != "v2" {
		errs = append(errs, FieldError{
			Field:   "detectors.language.api_version",
			Message: fmt.Sprintf("invalid API version %q (must be: v1, v2)", cfg.Language.APIVersion),
		})
	}
	errs = append(errs, validateClientLimits("detectors.language", cfg.Language.Timeout, cfg.Language.RateLimit, cfg.Language.Burst, cfg.Language.MaxRetries)...)

	if err := validateURL(cfg.ModelArmor.Endpoint); err != nil {
		errs = append(errs, FieldError{Field: "detectors.model_armor.endpoint", Message: err.Error()})
	}
	if cfg.ModelArmor.Location == "" {
		errs = append(errs, FieldError{Field: "detectors.model_armor.location", Message: "location is required"})
	}
	if cfg.ModelArmor.TemplateID == "" {
		errs = append(errs, FieldError{Field: "detectors.model_armor.template_id", Message: "template id is required"})
	}
	errs = append(errs, validateClientLimits("detectors.model_armor", cfg.ModelArmor.Timeout, cfg.ModelArmor.RateLimit, cfg.ModelArmor.Burst, cfg.ModelArmor.MaxRetries)...)

	return errs
}

// validateClientLimits validates the timeout and rate limit of a detector client.
func validateClientLimits(prefix string, timeout time.Duration, rateLimit float64, burst, retries int) []FieldError {
	var errs []FieldError
	if timeout < 0 {
		errs = append(errs, FieldError{Field: prefix + ".timeout", Message: "timeout must be positive"})
	}
	if rateLimit < 0 {
		errs = append(errs, FieldError{Field: prefix + ".rate_limit", Message: "rate limit must be non-negative"})
	}
	if burst < 0 {
		errs = append(errs, FieldError{Field: prefix + ".burst", Message: "burst must be non-negative"})
	}
	if retries < 0 {
		errs = append(errs, FieldError{Field: prefix + ".max_retries", Message: "max retries must be non-negative"})
	}
	return errs
}

// validateRunLog validates run log configuration.
func validateRunLog(cfg *RunLogConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "json":
		if cfg.JSON.Directory == "" {
			errs = append(errs, FieldError{Field: "run_log.json.directory", Message: "directory is required"})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "run_log.sqlite.path", Message: "path is required"})
		}
		if cfg.SQLite.Driver != "sqlite3" && cfg.SQLite.Driver != "sqlite" {
			errs = append(errs, FieldError{
				Field:   "run_log.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q (must be: sqlite3, sqlite)", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{Field: "run_log.sqlite.max_open_conns", Message: "must be at least 1"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "run_log.backend",
			Message: fmt.Sprintf("invalid backend %q (must be: json, sqlite, memory)", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 1 {
		errs = append(errs, FieldError{Field: "run_log.recorder.async_buffer", Message: "must be at least 1"})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "run_log.recorder.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "run_log.retention.days", Message: "retention days must be non-negative"})
	}
	if len(strings.Fields(cfg.Retention.PruneSchedule)) != 5 {
		errs = append(errs, FieldError{
			Field:   "run_log.retention.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q (expected 5 fields)", cfg.Retention.PruneSchedule),
		})
	}

	return errs
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "max body bytes must be non-negative"})
	}
	if cfg.Auth.Enabled && len(cfg.Auth.Keys) == 0 {
		errs = append(errs, FieldError{Field: "server.auth.keys", Message: "at least one key is required when auth is enabled"})
	}
	for i, k := range cfg.Auth.Keys {
		field := fmt.Sprintf("server.auth.keys[%d]", i)
		if (k.Key == "") == (k.KeyEnv == "") {
			errs = append(errs, FieldError{Field: field, Message: "exactly one of key and key_env must be set"})
		}
		if k.UserName == "" {
			errs = append(errs, FieldError{Field: field + ".user_name", Message: "user name is required"})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be: debug, info, warn, error)", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be: json, text, console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}
	for i := 1; i < len(cfg.Metrics.CheckDurationBuckets); i++ {
		if cfg.Metrics.CheckDurationBuckets[i] <= cfg.Metrics.CheckDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.check_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be: always, never, ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %.2f", cfg.Tracing.SampleRatio),
		})
	}

	if cfg.Health.CheckTimeout < 0 {
		errs = append(errs, FieldError{Field: "telemetry.health.check_timeout", Message: "check timeout must be positive"})
	}

	return errs
}

// validateURL checks that s is an absolute http(s) URL.
func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
