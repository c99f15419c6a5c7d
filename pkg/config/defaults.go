package config

import (
	"fmt"
	"time"
)

// Default values for configuration fields.
const (
	// Guardrail defaults
	DefaultUserName      = "default"
	DefaultExecutionType = "sequential"

	// Detector defaults
	DefaultDetectorMode        = "live"
	DefaultLanguageEndpoint    = "https://language.googleapis.com"
	DefaultLanguageAPIVersion  = "v1"
	DefaultDetectorTimeout     = 30 * time.Second
	DefaultDetectorRateLimit   = 10.0
	DefaultDetectorBurst       = 10
	DefaultDetectorMaxRetries  = 2
	DefaultModelArmorLocation  = "us-central1"
	DefaultModelArmorTemplate  = "litellm-gcp-guard"
	modelArmorEndpointTemplate = "https://modelarmor.%s.rep.googleapis.com"

	// Run log defaults
	DefaultRunLogEnabled          = false
	DefaultRunLogBackend          = "json"
	DefaultRunLogDirectory        = "gcp_guardrail_log"
	DefaultRunLogIndent           = true
	DefaultSQLitePath             = "data/runlog.db"
	DefaultSQLiteDriver           = "sqlite3"
	DefaultSQLiteMaxOpenConns     = 10
	DefaultSQLiteMaxIdleConns     = 5
	DefaultSQLiteWALMode          = true
	DefaultSQLiteBusyTimeout      = 5 * time.Second
	DefaultRecorderAsyncBuffer    = 1000
	DefaultRecorderWriteTimeout   = 5 * time.Second
	DefaultRetentionDays          = 30
	DefaultRetentionPruneSchedule = "0 3 * * *"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(1048576) // 1MB

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "sentinel"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "sentinel"
	DefaultTracingInsecure    = true
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultCheckDurationBuckets are the histogram buckets for check duration.
var DefaultCheckDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := newBaseConfig()
	ApplyDefaults(cfg)
	return cfg
}

// newBaseConfig returns a Config holding only the boolean fields whose
// default is true. YAML is decoded on top of it so that an explicit false in
// the file survives; zero-valued fields are filled later by ApplyDefaults.
func newBaseConfig() *Config {
	cfg := &Config{}
	cfg.RunLog.Enabled = DefaultRunLogEnabled
	cfg.RunLog.JSON.Indent = DefaultRunLogIndent
	cfg.RunLog.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Logging.RedactPII = DefaultLoggingRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Guardrail defaults
	if cfg.Guardrail.UserName == "" {
		cfg.Guardrail.UserName = DefaultUserName
	}
	for _, phase := range []*PhaseConfig{cfg.Guardrail.Input, cfg.Guardrail.Output} {
		if phase != nil && phase.ExecutionType == "" {
			phase.ExecutionType = DefaultExecutionType
		}
	}

	// Detector defaults
	applyDetectorDefaults(&cfg.Detectors)

	// Run log defaults
	if cfg.RunLog.Backend == "" {
		cfg.RunLog.Backend = DefaultRunLogBackend
	}
	if cfg.RunLog.JSON.Directory == "" {
		cfg.RunLog.JSON.Directory = DefaultRunLogDirectory
	}
	if cfg.RunLog.SQLite.Path == "" {
		cfg.RunLog.SQLite.Path = DefaultSQLitePath
	}
	if cfg.RunLog.SQLite.Driver == "" {
		cfg.RunLog.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.RunLog.SQLite.MaxOpenConns == 0 {
		cfg.RunLog.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.RunLog.SQLite.MaxIdleConns == 0 {
		cfg.RunLog.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.RunLog.SQLite.BusyTimeout == 0 {
		cfg.RunLog.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.RunLog.Recorder.AsyncBuffer == 0 {
		cfg.RunLog.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if cfg.RunLog.Recorder.WriteTimeout == 0 {
		cfg.RunLog.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if cfg.RunLog.Retention.Days == 0 {
		cfg.RunLog.Retention.Days = DefaultRetentionDays
	}
	if cfg.RunLog.Retention.PruneSchedule == "" {
		cfg.RunLog.Retention.PruneSchedule = DefaultRetentionPruneSchedule
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Telemetry defaults
	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyDetectorDefaults applies default values to detector configuration.
func applyDetectorDefaults(cfg *DetectorsConfig) {
	if cfg.Mode == "" {
		cfg.Mode = DefaultDetectorMode
	}

	if cfg.Language.Endpoint == "" {
		cfg.Language.Endpoint = DefaultLanguageEndpoint
	}
	if cfg.Language.APIVersion == "" {
		cfg.Language.APIVersion = DefaultLanguageAPIVersion
	}
	if cfg.Language.Timeout == 0 {
		cfg.Language.Timeout = DefaultDetectorTimeout
	}
	if cfg.Language.RateLimit == 0 {
		cfg.Language.RateLimit = DefaultDetectorRateLimit
	}
	if cfg.Language.Burst == 0 {
		cfg.Language.Burst = DefaultDetectorBurst
	}
	if cfg.Language.MaxRetries == 0 {
		cfg.Language.MaxRetries = DefaultDetectorMaxRetries
	}

	if cfg.ModelArmor.Location == "" {
		cfg.ModelArmor.Location = DefaultModelArmorLocation
	}
	if cfg.ModelArmor.TemplateID == "" {
		cfg.ModelArmor.TemplateID = DefaultModelArmorTemplate
	}
	if cfg.ModelArmor.Endpoint == "" {
		cfg.ModelArmor.Endpoint = ModelArmorEndpoint(cfg.ModelArmor.Location)
	}
	if cfg.ModelArmor.Timeout == 0 {
		cfg.ModelArmor.Timeout = DefaultDetectorTimeout
	}
	if cfg.ModelArmor.RateLimit == 0 {
		cfg.ModelArmor.RateLimit = DefaultDetectorRateLimit
	}
	if cfg.ModelArmor.Burst == 0 {
		cfg.ModelArmor.Burst = DefaultDetectorBurst
	}
	if cfg.ModelArmor.MaxRetries == 0 {
		cfg.ModelArmor.MaxRetries = DefaultDetectorMaxRetries
	}
}

// applyTelemetryDefaults applies default values to telemetry configuration.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.CheckDurationBuckets) == 0 {
		cfg.Metrics.CheckDurationBuckets = append([]float64(nil), DefaultCheckDurationBuckets...)
	}
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// ModelArmorEndpoint returns the regional Model Armor endpoint for a location.
func ModelArmorEndpoint(location string) string {
	return fmt.Sprintf(modelArmorEndpointTemplate, location)
}
