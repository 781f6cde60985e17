// Package config provides configuration management for the district
// heating network builder.
//
// This package handles loading and validation of application
// configuration from JSON files and environment variables.
//
// # Core Components
//
// Config: Main configuration structure covering scenario input location,
// coordinate projection, cluster reduction, checkpoint persistence, and
// the metrics and logging settings.
//
// Loader: Loads configuration with layer merging (base + overrides) and
// environment variable substitution for flexible deployment scenarios.
//
// # Basic Usage
//
// Loading configuration from files with layer merging:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/site.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Overrides
//
// Configuration values can be overridden using environment variables:
//
//	# Override the scenario directory
//	export SESMG_SCENARIO_DIR="/data/scenario"
//
//	# Override the checkpoint directory
//	export SESMG_CHECKPOINT_DIR="/data/checkpoint"
//
//	# Override the metrics port
//	export SESMG_METRICS_PORT="7070"
//
// # Layer Merging
//
// Configuration layers are merged with last-wins semantics:
//
//	base.json:
//	  {"logging": {"level": "debug", "format": "text"}}
//
//	site.json:
//	  {"logging": {"format": "json"}}
//
//	Result:
//	  {"logging": {"level": "debug", "format": "json"}}
//
// # Security
//
// The package includes security validation:
//   - File size limits (10MB max) to prevent memory exhaustion
//   - JSON depth validation (100 levels max) to prevent DoS attacks
//   - Regular file checks (no symlinks or device files)
//   - Owner-only permissions on saved config files
package config
