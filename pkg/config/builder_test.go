package config

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig creates a new ConfigBuilder with every default applied.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: NewDefaultConfig()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithInputPhase configures the input phase.
func (b *ConfigBuilder) WithInputPhase(executionType string, functions ...string) *ConfigBuilder {
	b.cfg.Guardrail.Input = &PhaseConfig{Functions: functions, ExecutionType: executionType}
	return b
}

// WithOutputPhase configures the output phase.
func (b *ConfigBuilder) WithOutputPhase(executionType string, functions ...string) *ConfigBuilder {
	b.cfg.Guardrail.Output = &PhaseConfig{Functions: functions, ExecutionType: executionType}
	return b
}

// WithFixtureDetectors switches to canned detections from path.
func (b *ConfigBuilder) WithFixtureDetectors(path string) *ConfigBuilder {
	b.cfg.Detectors.Mode = "fixture"
	b.cfg.Detectors.Fixture.Path = path
	return b
}

// WithRunLog enables the run log on backend.
func (b *ConfigBuilder) WithRunLog(backend string) *ConfigBuilder {
	b.cfg.RunLog.Enabled = true
	b.cfg.RunLog.Backend = backend
	return b
}

// WithTracing enables tracing to endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// WithAuthKeys enables API key auth with keys.
func (b *ConfigBuilder) WithAuthKeys(keys ...APIKeyConfig) *ConfigBuilder {
	b.cfg.Server.Auth = AuthConfig{Enabled: true, Keys: keys}
	return b
}
