// Package config provides configuration management for the imagery engine.
//
// Configuration is read from a YAML file, completed with defaults, overridden
// from the environment and validated. Every problem found by validation is
// reported at once as a ValidationError.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("imagery.yaml")                 // file + defaults
//	cfg, err := config.LoadConfigWithEnvOverrides("imagery.yaml") // + environment
//
// # Environment Variable Overrides
//
// Environment variables follow the convention IMAGERY_<SECTION>_<FIELD>:
//
//   - IMAGERY_ENGINE_DEFAULT_PROVIDER overrides engine.default_provider
//   - IMAGERY_PROVIDERS_GEMINI_API_KEY overrides providers.gemini.api_key
//   - IMAGERY_STORAGE_BACKEND overrides storage.backend
//   - IMAGERY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over the file.
//
// # Singleton
//
// Commands that need application-wide access call Initialize once and then
// GetConfig. Library code should take an explicit *Config instead.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and invokes a
// callback, debounced, after it changes. The server uses it to rebuild the
// engine without a restart.
package config
