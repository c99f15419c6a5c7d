package config

import (
	"os"
	"time"
)

// Config is the root configuration structure for Sentinel.
// It contains the guardrail phase definitions, the detector clients, run
// logging, the HTTP API and telemetry settings.
type Config struct {
	// Guardrail contains the phase configurations and engine-wide flags.
	Guardrail GuardrailConfig `yaml:"guardrail"`

	// Detectors contains configuration for the external detector clients.
	Detectors DetectorsConfig `yaml:"detectors"`

	// RunLog contains configuration for persisting run records.
	RunLog RunLogConfig `yaml:"run_log"`

	// Server contains configuration for the HTTP check API.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging, metrics, tracing and
	// health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GuardrailConfig contains the guardrail phases and decision flags.
type GuardrailConfig struct {
	// UserName identifies the caller in run logs when a run does not name one.
	// Default: "default"
	UserName string `yaml:"user_name"`

	// FailClosed makes a function execution error fail its phase. When false,
	// errors are reported in the failure list but do not flip the verdict.
	// Default: false
	FailClosed bool `yaml:"fail_closed"`

	// Watch enables hot reloading of the guardrail section when the
	// configuration file changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// Input configures checks on user-supplied text. Nil when not configured.
	Input *PhaseConfig `yaml:"input"`

	// Output configures checks on generated text. Nil when not configured.
	Output *PhaseConfig `yaml:"output"`
}

// PhaseConfig is the raw configuration of one phase. Function names and
// option keys are resolved into check specifications by the resolver package;
// nothing here is interpreted until an engine is built.
type PhaseConfig struct {
	// Functions is the ordered list of enabled function names or aliases.
	// Example: ["sentiment", "entities", "moderate_text", "armor"]
	Functions []string `yaml:"functions"`

	// ExecutionType selects scheduling for the phase.
	// Options: "sequential", "parallel"
	// Default: "sequential"
	ExecutionType string `yaml:"execution_type"`

	// Options holds the flat function option keys of the phase, such as
	// analyze_sentiment_score_threshold or moderate_text_thresholds.
	Options map[string]any `yaml:",inline"`
}

// DetectorsConfig contains configuration for the detector collaborators.
type DetectorsConfig struct {
	// Mode selects where detection records come from.
	// Options: "live" (Google Cloud APIs), "fixture" (canned records from a file)
	// Default: "live"
	Mode string `yaml:"mode"`

	// Language configures the Natural Language API client used for
	// sentiment, entity, classification and moderation checks.
	Language LanguageConfig `yaml:"language"`

	// ModelArmor configures the Model Armor client used for the AI-safety
	// filter set.
	ModelArmor ModelArmorConfig `yaml:"model_armor"`

	// Fixture configures the canned-record detector used in "fixture" mode.
	Fixture FixtureConfig `yaml:"fixture"`
}

// LanguageConfig contains configuration for the Natural Language API client.
type LanguageConfig struct {
	// Endpoint is the API base URL.
	// Default: "https://language.googleapis.com"
	Endpoint string `yaml:"endpoint"`

	// APIVersion is the REST API version path segment.
	// Options: "v1", "v2"
	// Default: "v1"
	APIVersion string `yaml:"api_version"`

	// APIKey authenticates requests with the key query parameter.
	APIKey string `yaml:"api_key"`

	// AccessToken authenticates requests with a bearer token. Takes
	// precedence over APIKey when both are set.
	AccessToken string `yaml:"access_token"`

	// Timeout bounds a single API call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the maximum number of requests per second (0 = unlimited).
	// Default: 10
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the number of requests allowed above RateLimit momentarily.
	// Default: 10
	Burst int `yaml:"burst"`

	// MaxRetries is the number of retries for calls that fail as unavailable.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// ModelArmorConfig contains configuration for the Model Armor client.
type ModelArmorConfig struct {
	// ProjectID is the Google Cloud project that owns the template.
	ProjectID string `yaml:"project_id"`

	// Location is the Model Armor region.
	// Default: "us-central1"
	Location string `yaml:"location"`

	// TemplateID is the policy template that decides filter match states.
	// Default: "litellm-gcp-guard"
	TemplateID string `yaml:"template_id"`

	// Endpoint overrides the regional endpoint derived from Location.
	// Default: "https://modelarmor.<location>.rep.googleapis.com"
	Endpoint string `yaml:"endpoint"`

	// AccessToken authenticates requests with a bearer token.
	AccessToken string `yaml:"access_token"`

	// Timeout bounds a single API call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the maximum number of requests per second (0 = unlimited).
	// Default: 10
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the number of requests allowed above RateLimit momentarily.
	// Default: 10
	Burst int `yaml:"burst"`

	// MaxRetries is the number of retries for calls that fail as unavailable.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// FixtureConfig contains configuration for the fixture detector.
type FixtureConfig struct {
	// Path is the YAML file holding canned detection records.
	Path string `yaml:"path"`
}

// RunLogConfig contains configuration for run record persistence.
type RunLogConfig struct {
	// Enabled controls whether every run is appended to the run log.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "json", "sqlite", "memory"
	// Default: "json"
	Backend string `yaml:"backend"`

	// JSON contains configuration for the per-user daily JSON file backend.
	JSON JSONLogConfig `yaml:"json"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains configuration for the asynchronous writer.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// JSONLogConfig contains configuration for the JSON file backend.
type JSONLogConfig struct {
	// Directory holds one {user}_{YYYY-MM-DD}.json file per user per day.
	// Default: "gcp_guardrail_log"
	Directory string `yaml:"directory"`

	// Indent pretty-prints log files.
	// Default: true
	Indent bool `yaml:"indent"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/runlog.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains run log recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing one entry to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain run records.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveDir, when set, receives a JSON export of the entries about
	// to be pruned.
	// Default: "" (no archive)
	ArchiveDir string `yaml:"archive_dir"`
}

// ServerConfig contains configuration for the HTTP check API.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Checks run inside this window.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next keep-alive request.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of a check request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Auth requires an API key on the check endpoint.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig contains API key authentication for the check endpoint.
type AuthConfig struct {
	// Enabled rejects check requests without a valid key.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Keys lists the accepted keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Key is the key value. KeyEnv names an environment variable holding it
	// instead; exactly one of the two is set.
	Key    string `yaml:"key"`
	KeyEnv string `yaml:"key_env"`

	// UserName is the user that runs made with this key are logged as.
	UserName string `yaml:"user_name"`

	// Disabled rejects the key without removing it from the file.
	Disabled bool `yaml:"disabled"`
}

// Value returns the key, reading KeyEnv when Key is empty.
func (k APIKeyConfig) Value() string {
	if k.Key != "" {
		return k.Key
	}
	if k.KeyEnv != "" {
		return os.Getenv(k.KeyEnv)
	}
	return ""
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks emails, phone numbers, SSNs and card numbers in log
	// attributes.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "sentinel"
	Namespace string `yaml:"namespace"`

	// CheckDurationBuckets defines histogram buckets for check duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0]
	CheckDurationBuckets []float64 `yaml:"check_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "sentinel"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
