package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrNotInitialized is returned by the reload functions before Initialize
// has loaded a configuration file.
var ErrNotInitialized = errors.New("configuration not initialized: call Initialize first")

var (
	// configMutex protects globalConfig and globalPath.
	configMutex sync.RWMutex

	// globalConfig is the process configuration used by the CLI commands.
	globalConfig *Config

	// globalPath is the absolute path globalConfig was loaded from. Empty
	// when the configuration was installed with SetConfig.
	globalPath string
)

// Initialize loads the configuration file at path with .env files and
// environment overrides and installs it as the process configuration.
//
// Calling Initialize again with the same path keeps the configuration already
// loaded, so commands sharing a process read one consistent snapshot. A
// different path is loaded and replaces it. On error the previous
// configuration stays in place.
func Initialize(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration path %q: %w", path, err)
	}

	configMutex.RLock()
	loaded := globalConfig != nil && globalPath == abs
	configMutex.RUnlock()
	if loaded {
		return nil
	}

	cfg, err := LoadConfigWithEnvOverrides(abs)
	if err != nil {
		return err
	}

	configMutex.Lock()
	globalConfig, globalPath = cfg, abs
	configMutex.Unlock()
	return nil
}

// GetConfig returns the process configuration, or nil before Initialize or
// SetConfig. Prefer passing an explicit *Config below the command layer.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Path returns the absolute path of the loaded configuration file, or ""
// when none was loaded from disk.
func Path() string {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalPath
}

// SetConfig installs cfg as the process configuration without a backing
// file. Reload fails with ErrNotInitialized afterwards.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig, globalPath = cfg, ""
}

// Reload re-reads the file Initialize loaded and replaces the process
// configuration only if the new file loads and validates.
func Reload() (*Config, error) {
	path := Path()
	if path == "" {
		return nil, ErrNotInitialized
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	// Keep the newer path if Initialize switched files meanwhile.
	if globalPath == path {
		globalConfig = cfg
	}
	configMutex.Unlock()
	return cfg, nil
}

// ReloadGuardrail reloads the configuration file and returns its guardrail
// section. It has the shape the engine's file watcher expects, so
// `serve --watch` can hand it over directly. Structural errors are caught
// here; function names and options are checked when the engine resolves
// the section.
func ReloadGuardrail() (*GuardrailConfig, error) {
	cfg, err := Reload()
	if err != nil {
		return nil, err
	}
	return &cfg.Guardrail, nil
}
