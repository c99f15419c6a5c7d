package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullConfigYAML = `
guardrail:
  user_name: alice
  fail_closed: true
  input:
    functions: [sentiment, entities]
    execution_type: parallel
    analyze_sentiment_score_threshold: -0.5
    analyze_entities_blocked_types: [PERSON, EMAIL]
  output:
    functions: [moderate_text]
    moderate_text_thresholds:
      Toxic: 0.4

detectors:
  mode: fixture
  fixture:
    path: fixtures.yaml
  model_armor:
    project_id: my-project
    location: europe-west4

run_log:
  enabled: true
  backend: sqlite
  sqlite:
    path: /tmp/runlog.db
    driver: sqlite
  retention:
    days: 7

server:
  listen_address: 0.0.0.0:9000
  write_timeout: 15s

telemetry:
  logging:
    level: debug
    redact_pii: false
  metrics:
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, fullConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	g := cfg.Guardrail
	if g.UserName != "alice" || !g.FailClosed {
		t.Errorf("guardrail = %+v", g)
	}
	if g.Input == nil || g.Input.ExecutionType != "parallel" {
		t.Fatalf("input phase = %+v", g.Input)
	}
	if got := strings.Join(g.Input.Functions, ","); got != "sentiment,entities" {
		t.Errorf("input functions = %s", got)
	}
	if v, ok := g.Input.Options["analyze_sentiment_score_threshold"]; !ok || v != -0.5 {
		t.Errorf("sentiment threshold option = %v (present %v)", v, ok)
	}
	if _, ok := g.Input.Options["functions"]; ok {
		t.Error("named fields must not leak into the options map")
	}
	if g.Output == nil || g.Output.ExecutionType != DefaultExecutionType {
		t.Fatalf("output phase = %+v", g.Output)
	}
	thresholds, ok := g.Output.Options["moderate_text_thresholds"].(map[string]any)
	if !ok || thresholds["Toxic"] != 0.4 {
		t.Errorf("moderation thresholds = %v", g.Output.Options["moderate_text_thresholds"])
	}

	if cfg.Detectors.Mode != "fixture" || cfg.Detectors.Fixture.Path != "fixtures.yaml" {
		t.Errorf("detectors = %+v", cfg.Detectors)
	}
	if want := ModelArmorEndpoint("europe-west4"); cfg.Detectors.ModelArmor.Endpoint != want {
		t.Errorf("model armor endpoint = %q, want %q", cfg.Detectors.ModelArmor.Endpoint, want)
	}
	if !cfg.RunLog.Enabled || cfg.RunLog.Backend != "sqlite" || cfg.RunLog.SQLite.Driver != "sqlite" {
		t.Errorf("run log = %+v", cfg.RunLog)
	}
	if !cfg.RunLog.SQLite.WALMode {
		t.Error("wal_mode should keep its true default")
	}
	if cfg.RunLog.Retention.Days != 7 {
		t.Errorf("retention days = %d, want 7", cfg.RunLog.Retention.Days)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" || cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want default", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_ExplicitFalseSurvivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, fullConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Telemetry.Logging.RedactPII {
		t.Error("redact_pii: false was overwritten by the default")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics.enabled: false was overwritten by the default")
	}
	if !cfg.Telemetry.Tracing.Insecure {
		t.Error("tracing.insecure should keep its true default")
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Guardrail.Input != nil || cfg.Guardrail.Output != nil {
		t.Error("no phases should be configured")
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.json")
	content := `{"guardrail": {"input": {"functions": ["armor"], "execution_type": "sequential"}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Guardrail.Input == nil || cfg.Guardrail.Input.Functions[0] != "armor" {
		t.Errorf("input = %+v", cfg.Guardrail.Input)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "guardrail: [unclosed",
			wantErr: "failed to parse configuration",
		},
		{
			name:    "invalid execution type",
			content: "guardrail:\n  input:\n    functions: [sentiment]\n    execution_type: random\n",
			wantErr: "guardrail.input.execution_type",
		},
		{
			name:    "fixture mode without path",
			content: "detectors:\n  mode: fixture\n",
			wantErr: "detectors.fixture.path",
		},
		{
			name:    "unknown run log backend",
			content: "run_log:\n  backend: postgres\n",
			wantErr: "run_log.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestParse_ValidationError(t *testing.T) {
	_, err := Parse([]byte("server:\n  max_body_bytes: -1\ntelemetry:\n  logging:\n    level: loud\n"))
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "guardrail",
			env: map[string]string{
				"SENTINEL_GUARDRAIL_USER_NAME":   "bob",
				"SENTINEL_GUARDRAIL_FAIL_CLOSED": "false",
				"SENTINEL_GUARDRAIL_WATCH":       "true",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Guardrail.UserName != "bob" || cfg.Guardrail.FailClosed || !cfg.Guardrail.Watch {
					t.Errorf("guardrail = %+v", cfg.Guardrail)
				}
			},
		},
		{
			name: "detectors",
			env: map[string]string{
				"SENTINEL_DETECTORS_LANGUAGE_API_KEY":        "secret",
				"SENTINEL_DETECTORS_LANGUAGE_TIMEOUT":        "3s",
				"SENTINEL_DETECTORS_MODEL_ARMOR_LOCATION":    "asia-east1",
				"SENTINEL_DETECTORS_MODEL_ARMOR_TEMPLATE_ID": "strict",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Detectors.Language.APIKey != "secret" || cfg.Detectors.Language.Timeout != 3*time.Second {
					t.Errorf("language = %+v", cfg.Detectors.Language)
				}
				ma := cfg.Detectors.ModelArmor
				if ma.Location != "asia-east1" || ma.Endpoint != ModelArmorEndpoint("asia-east1") || ma.TemplateID != "strict" {
					t.Errorf("model armor = %+v", ma)
				}
			},
		},
		{
			name: "unprefixed model armor variables",
			env: map[string]string{
				"LOCATION":    "us-east4",
				"PROJECT_ID":  "proj-1",
				"TEMPLATE_ID": "tmpl-1",
			},
			check: func(t *testing.T, cfg *Config) {
				ma := cfg.Detectors.ModelArmor
				if ma.Location != "us-east4" || ma.ProjectID != "proj-1" || ma.TemplateID != "tmpl-1" {
					t.Errorf("model armor = %+v", ma)
				}
			},
		},
		{
			name: "prefixed wins over unprefixed",
			env: map[string]string{
				"PROJECT_ID":                                "generic",
				"SENTINEL_DETECTORS_MODEL_ARMOR_PROJECT_ID": "specific",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Detectors.ModelArmor.ProjectID != "specific" {
					t.Errorf("project id = %q, want specific", cfg.Detectors.ModelArmor.ProjectID)
				}
			},
		},
		{
			name: "run log and server",
			env: map[string]string{
				"SENTINEL_RUN_LOG_ENABLED":        "false",
				"SENTINEL_RUN_LOG_BACKEND":        "memory",
				"SENTINEL_RUN_LOG_RETENTION_DAYS": "90",
				"SENTINEL_SERVER_LISTEN_ADDRESS":  "127.0.0.1:7000",
				"SENTINEL_SERVER_WRITE_TIMEOUT":   "5s",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.RunLog.Enabled || cfg.RunLog.Backend != "memory" || cfg.RunLog.Retention.Days != 90 {
					t.Errorf("run log = %+v", cfg.RunLog)
				}
				if cfg.Server.ListenAddress != "127.0.0.1:7000" || cfg.Server.WriteTimeout != 5*time.Second {
					t.Errorf("server = %+v", cfg.Server)
				}
			},
		},
		{
			name: "telemetry",
			env: map[string]string{
				"SENTINEL_TELEMETRY_LOGGING_LEVEL":        "warn",
				"SENTINEL_TELEMETRY_TRACING_ENABLED":      "true",
				"SENTINEL_TELEMETRY_TRACING_ENDPOINT":     "localhost:4317",
				"SENTINEL_TELEMETRY_TRACING_SAMPLE_RATIO": "0.25",
			},
			check: func(t *testing.T, cfg *Config) {
				tr := cfg.Telemetry.Tracing
				if cfg.Telemetry.Logging.Level != "warn" || !tr.Enabled || tr.Endpoint != "localhost:4317" || tr.SampleRatio != 0.25 {
					t.Errorf("telemetry = %+v", cfg.Telemetry)
				}
			},
		},
		{
			name: "unparseable values are ignored",
			env: map[string]string{
				"SENTINEL_GUARDRAIL_FAIL_CLOSED":  "maybe",
				"SENTINEL_SERVER_WRITE_TIMEOUT":   "soon",
				"SENTINEL_RUN_LOG_RETENTION_DAYS": "many",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Guardrail.FailClosed {
					t.Error("fail_closed from file should be kept")
				}
				if cfg.Server.WriteTimeout != 15*time.Second {
					t.Errorf("write timeout = %v, want 15s from file", cfg.Server.WriteTimeout)
				}
				if cfg.RunLog.Retention.Days != 7 {
					t.Errorf("retention days = %d, want 7 from file", cfg.RunLog.Retention.Days)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, fullConfigYAML))
			if err != nil {
				t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesOverrides(t *testing.T) {
	t.Setenv("SENTINEL_DETECTORS_MODE", "psychic")

	_, err := LoadConfigWithEnvOverrides(writeConfig(t, ""))
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("error = %v, want validation failure after overrides", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const (
		fromFile = "SENTINEL_TEST_DOTENV_VALUE"
		existing = "SENTINEL_TEST_DOTENV_EXISTING"
	)
	dir := t.TempDir()
	content := fromFile + "=from-dotenv\n" + existing + "=from-dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(existing, "from-environment")
	t.Cleanup(func() { os.Unsetenv(fromFile) })

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(fromFile); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", fromFile, got)
	}
	if got := os.Getenv(existing); got != "from-environment" {
		t.Errorf("%s = %q, existing variables must not be replaced", existing, got)
	}
}

func TestLoadDotEnv_MissingFiles(t *testing.T) {
	if err := LoadDotEnv(t.TempDir(), "", "."); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil for missing files", err)
	}
}

func TestAPIKeyConfig_Value(t *testing.T) {
	t.Setenv("SENTINEL_TEST_API_KEY", "from-env")

	tests := []struct {
		name string
		key  APIKeyConfig
		want string
	}{
		{"inline", APIKeyConfig{Key: "inline"}, "inline"},
		{"env", APIKeyConfig{KeyEnv: "SENTINEL_TEST_API_KEY"}, "from-env"},
		{"inline wins", APIKeyConfig{Key: "inline", KeyEnv: "SENTINEL_TEST_API_KEY"}, "inline"},
		{"unset env", APIKeyConfig{KeyEnv: "SENTINEL_TEST_API_KEY_UNSET"}, ""},
		{"empty", APIKeyConfig{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}
