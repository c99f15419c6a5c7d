package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every Sentinel environment variable override.
const EnvPrefix = "SENTINEL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// JSON files are accepted as well since JSON is a subset of YAML.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, defaults and validates configuration from raw YAML or JSON.
func Parse(data []byte) (*Config, error) {
	cfg := newBaseConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Apply defaults
	ApplyDefaults(cfg)

	// Validate
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SENTINEL_SECTION_FIELD (e.g., SENTINEL_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load .env files from the working directory and the config directory
// 2. Load YAML from file
// 3. Apply default values
// 4. Apply environment variable overrides
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if err := LoadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env from the working directory and from each extra
// directory. Variables already present in the environment are never replaced
// and missing files are ignored.
func LoadDotEnv(dirs ...string) error {
	candidates := []string{".env"}
	for _, dir := range dirs {
		if dir != "" && dir != "." {
			candidates = append(candidates, filepath.Join(dir, ".env"))
		}
	}
	for _, path := range candidates {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The unprefixed LOCATION, PROJECT_ID and TEMPLATE_ID variables are honoured
// first; SENTINEL_* variables take precedence over them.
func applyEnvOverrides(cfg *Config) {
	// Model Armor location variables
	if val := os.Getenv("LOCATION"); val != "" {
		setModelArmorLocation(&cfg.Detectors.ModelArmor, val)
	}
	if val := os.Getenv("PROJECT_ID"); val != "" {
		cfg.Detectors.ModelArmor.ProjectID = val
	}
	if val := os.Getenv("TEMPLATE_ID"); val != "" {
		cfg.Detectors.ModelArmor.TemplateID = val
	}

	// Guardrail overrides
	if val := os.Getenv(EnvPrefix + "GUARDRAIL_USER_NAME"); val != "" {
		cfg.Guardrail.UserName = val
	}
	if val := os.Getenv(EnvPrefix + "GUARDRAIL_FAIL_CLOSED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Guardrail.FailClosed = b
		}
	}
	if val := os.Getenv(EnvPrefix + "GUARDRAIL_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Guardrail.Watch = b
		}
	}

	// Detector overrides
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODE"); val != "" {
		cfg.Detectors.Mode = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_LANGUAGE_ENDPOINT"); val != "" {
		cfg.Detectors.Language.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_LANGUAGE_API_KEY"); val != "" {
		cfg.Detectors.Language.APIKey = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_LANGUAGE_ACCESS_TOKEN"); val != "" {
		cfg.Detectors.Language.AccessToken = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_LANGUAGE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Detectors.Language.Timeout = d
		}
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODEL_ARMOR_PROJECT_ID"); val != "" {
		cfg.Detectors.ModelArmor.ProjectID = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODEL_ARMOR_LOCATION"); val != "" {
		setModelArmorLocation(&cfg.Detectors.ModelArmor, val)
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODEL_ARMOR_TEMPLATE_ID"); val != "" {
		cfg.Detectors.ModelArmor.TemplateID = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODEL_ARMOR_ENDPOINT"); val != "" {
		cfg.Detectors.ModelArmor.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_MODEL_ARMOR_ACCESS_TOKEN"); val != "" {
		cfg.Detectors.ModelArmor.AccessToken = val
	}
	if val := os.Getenv(EnvPrefix + "DETECTORS_FIXTURE_PATH"); val != "" {
		cfg.Detectors.Fixture.Path = val
	}

	// Run log overrides
	if val := os.Getenv(EnvPrefix + "RUN_LOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RunLog.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "RUN_LOG_BACKEND"); val != "" {
		cfg.RunLog.Backend = val
	}
	if val := os.Getenv(EnvPrefix + "RUN_LOG_JSON_DIRECTORY"); val != "" {
		cfg.RunLog.JSON.Directory = val
	}
	if val := os.Getenv(EnvPrefix + "RUN_LOG_SQLITE_PATH"); val != "" {
		cfg.RunLog.SQLite.Path = val
	}
	if val := os.Getenv(EnvPrefix + "RUN_LOG_SQLITE_DRIVER"); val != "" {
		cfg.RunLog.SQLite.Driver = val
	}
	if val := os.Getenv(EnvPrefix + "RUN_LOG_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RunLog.Retention.Days = i
		}
	}

	// Server overrides
	if val := os.Getenv(EnvPrefix + "SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv(EnvPrefix + "SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// setModelArmorLocation changes the Model Armor location and moves a derived
// endpoint along with it. An explicitly configured endpoint is kept.
func setModelArmorLocation(cfg *ModelArmorConfig, location string) {
	if cfg.Endpoint == "" || cfg.Endpoint == ModelArmorEndpoint(cfg.Location) {
		cfg.Endpoint = ModelArmorEndpoint(location)
	}
	cfg.Location = location
}
