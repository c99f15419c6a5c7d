// Package config provides configuration management for Sentinel.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. JSON files are accepted as
// well since JSON is a subset of YAML.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("sentinel.yaml")
//
//  2. From a YAML file with .env files and environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("sentinel.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SENTINEL_SECTION_FIELD.
// For example:
//
//   - SENTINEL_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - SENTINEL_DETECTORS_LANGUAGE_API_KEY overrides detectors.language.api_key
//   - SENTINEL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The unprefixed LOCATION, PROJECT_ID and TEMPLATE_ID variables configure
// Model Armor; the SENTINEL_DETECTORS_MODEL_ARMOR_* variables win over them.
// A .env file in the working directory or next to the configuration file is
// loaded first and never replaces variables that are already set.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the configuration file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// The CLI loads configuration once at startup:
//
//	if err := config.Initialize("sentinel.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Initializing again with the same path keeps the loaded snapshot; another
// path replaces it. Reload and ReloadGuardrail re-read the loaded file and
// replace the configuration only when the new file is valid. For testing,
// prefer explicit Config instances over the global singleton.
//
// # Validation
//
// Validate checks structural fields and collects every problem:
//
//	configuration validation failed with 2 errors:
//	  - guardrail.input.execution_type: invalid execution type "random" (must be: sequential, parallel)
//	  - detectors.fixture.path: fixture path is required in fixture mode
//
// Function names and option keys inside the guardrail phases are resolved
// when an engine is built, which reports them as guardrail configuration
// errors.
//
// # Example Configuration
//
//	guardrail:
//	  user_name: default
//	  input:
//	    functions: [sentiment, entities, armor]
//	    execution_type: parallel
//	    analyze_sentiment_score_threshold: -0.5
//	    analyze_entities_blocked_types: [PERSON, EMAIL]
//	  output:
//	    functions: [moderate_text]
//	    moderate_text_thresholds:
//	      Toxic: 0.5
//
//	detectors:
//	  model_armor:
//	    project_id: my-project
//
//	run_log:
//	  enabled: true
//	  backend: json
package config
