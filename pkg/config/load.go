package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGERY_"

// knownProviders receive environment overrides even when absent from the file.
var knownProviders = []string{"gemini", "imagen", "seedream"}

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. Environment variables
// are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	presetBooleans(cfg)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path starts from defaults.
//
// The loading sequence is:
//  1. Load YAML from file (or defaults)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies IMAGERY_<SECTION>_<FIELD> variables.
func applyEnvOverrides(cfg *Config) {
	// Engine
	envString("ENGINE_DEFAULT_PROVIDER", &cfg.Engine.DefaultProvider)
	envString("ENGINE_MODEL_TIER", &cfg.Engine.ModelTier)
	envList("ENGINE_PREMIUM_CATEGORIES", &cfg.Engine.PremiumCategories)
	envDuration("ENGINE_PROVIDER_TIMEOUT", &cfg.Engine.ProviderTimeout)
	envDuration("ENGINE_STORAGE_TIMEOUT", &cfg.Engine.StorageTimeout)

	// Providers
	for _, id := range providerIDs(cfg) {
		applyProviderEnvOverrides(cfg, id)
	}

	// Storage
	envString("STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("STORAGE_LOCAL_ROOT", &cfg.Storage.Local.Root)
	envString("STORAGE_LOCAL_URL_PREFIX", &cfg.Storage.Local.URLPrefix)
	envString("STORAGE_S3_BUCKET", &cfg.Storage.S3.Bucket)
	envString("STORAGE_S3_REGION", &cfg.Storage.S3.Region)
	envString("STORAGE_S3_PREFIX", &cfg.Storage.S3.Prefix)
	envString("STORAGE_S3_PUBLIC_BASE_URL", &cfg.Storage.S3.PublicBaseURL)
	envString("STORAGE_S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	envString("STORAGE_S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	envString("STORAGE_S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	envDuration("STORAGE_S3_TIMEOUT", &cfg.Storage.S3.Timeout)

	// Audit
	envBool("AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("AUDIT_DRIVER", &cfg.Audit.Driver)
	envString("AUDIT_DSN", &cfg.Audit.DSN)
	envInt("AUDIT_BUFFER_SIZE", &cfg.Audit.BufferSize)
	envInt("AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)
	envString("AUDIT_RETENTION_SCHEDULE", &cfg.Audit.Retention.Schedule)

	// Server
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envBool("SERVER_WATCH_CONFIG", &cfg.Server.WatchConfig)
	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	if val := os.Getenv(EnvPrefix + "SERVER_MAX_BODY_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = n
		}
	}

	// Secrets
	envString("SECRETS_DIR", &cfg.Secrets.Dir)

	// Telemetry
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// providerIDs returns configured ids plus the well-known ones, sorted.
func providerIDs(cfg *Config) []string {
	seen := make(map[string]bool, len(cfg.Providers)+len(knownProviders))
	var ids []string
	for id := range cfg.Providers {
		seen[id] = true
		ids = append(ids, id)
	}
	for _, id := range knownProviders {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// applyProviderEnvOverrides applies IMAGERY_PROVIDERS_<ID>_<FIELD>. A provider
// that is not in the file is added only when at least one variable is set.
func applyProviderEnvOverrides(cfg *Config, id string) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	provider, exists := cfg.Providers[id]
	prefix := "PROVIDERS_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_")) + "_"

	modified := false
	modified = envString(prefix+"TYPE", &provider.Type) || modified
	modified = envString(prefix+"BASE_URL", &provider.BaseURL) || modified
	modified = envString(prefix+"API_KEY", &provider.APIKey) || modified
	modified = envString(prefix+"MODEL", &provider.Model) || modified
	modified = envString(prefix+"PREMIUM_MODEL", &provider.PremiumModel) || modified
	modified = envDuration(prefix+"TIMEOUT", &provider.Timeout) || modified

	if modified || exists {
		cfg.Providers[id] = provider
	}
}

func envString(name string, dst *string) bool {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
		return true
	}
	return false
}

func envDuration(name string, dst *time.Duration) bool {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
			return true
		}
	}
	return false
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envList(name string, dst *[]string) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		out = []string{}
	}
	*dst = out
}
