package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Engine contains decision and orchestration settings.
	Engine EngineConfig `yaml:"engine"`

	// Providers configures image providers. Keys are provider ids used by
	// decisions (e.g., "gemini", "seedream").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Storage selects and configures the image storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Audit configures the job and event log.
	Audit AuditConfig `yaml:"audit"`

	// Server configures the HTTP service.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Secrets configures resolution of ${secret:name} references in
	// credential fields.
	Secrets SecretsConfig `yaml:"secrets"`
}

// EngineConfig contains orchestration settings.
type EngineConfig struct {
	// DefaultProvider is the provider id written into every live decision.
	// Unknown ids are served by the stub provider.
	// Default: "stub"
	DefaultProvider string `yaml:"default_provider"`

	// ModelTier is the tier used for categories not listed in
	// PremiumCategories. Options: "standard", "premium".
	// Default: "standard"
	ModelTier string `yaml:"model_tier"`

	// PremiumCategories upgrade their decisions to the premium tier.
	// Default: ["promotion"]
	PremiumCategories []string `yaml:"premium_categories"`

	// ProviderTimeout bounds a single provider call.
	// Default: 25s
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	// StorageTimeout bounds a single storage write.
	// Default: 15s
	StorageTimeout time.Duration `yaml:"storage_timeout"`
}

// ProviderConfig contains configuration for a single image provider.
type ProviderConfig struct {
	// Type is the adapter: "gemini", "imagen", "seedream" or "stub".
	// When empty it is inferred from the provider id.
	Type string `yaml:"type"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Prefer the
	// IMAGERY_PROVIDERS_<ID>_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// Model is the standard-tier model name.
	Model string `yaml:"model"`

	// PremiumModel is used for premium-tier decisions. Falls back to Model.
	PremiumModel string `yaml:"premium_model"`

	// Timeout overrides engine.provider_timeout for this provider.
	Timeout time.Duration `yaml:"timeout"`

	// HealthCheckInterval enables background health checks when positive.
	// Default: 0 (disabled)
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`

	// Watermark asks providers that support it to watermark output.
	Watermark bool `yaml:"watermark"`

	// MaxIdleConns and MaxIdleConnsPerHost size the HTTP connection pool.
	MaxIdleConns        int `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// StorageConfig selects the image storage backend.
type StorageConfig struct {
	// Backend is "local", "s3" or "memory".
	// Default: "local"
	Backend string `yaml:"backend"`

	// Local configures the filesystem backend.
	Local LocalStorageConfig `yaml:"local"`

	// S3 configures the S3 backend.
	S3 S3Config `yaml:"s3"`

	// Memory configures the in-process backend.
	Memory MemoryStorageConfig `yaml:"memory"`
}

// LocalStorageConfig configures the filesystem backend.
type LocalStorageConfig struct {
	// Root is the publicly served directory.
	// Default: "public"
	Root string `yaml:"root"`

	// URLPrefix is prepended to keys in returned URLs.
	// Default: ""
	URLPrefix string `yaml:"url_prefix"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Prefix          string        `yaml:"prefix"`
	PublicBaseURL   string        `yaml:"public_base_url"`
	Endpoint        string        `yaml:"endpoint"`
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	CacheControl    string        `yaml:"cache_control"`
	Timeout         time.Duration `yaml:"timeout"`
}

// MemoryStorageConfig configures the in-process backend.
type MemoryStorageConfig struct {
	URLPrefix string `yaml:"url_prefix"`
}

// AuditConfig configures job and event persistence.
type AuditConfig struct {
	// Enabled controls whether results are audited.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver is "sqlite3" (cgo), "sqlite" (pure Go), "postgres" or "memory".
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// DSN is the database data source name. For sqlite drivers it is a path.
	// Default: "data/imagery-audit.db"
	DSN string `yaml:"dsn"`

	// MaxOpenConns caps open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BufferSize is the async recorder channel size.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// WriteTimeout bounds a single audit write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention configures pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig configures audit pruning.
type RetentionConfig struct {
	// Days keeps records for this many days. 0 keeps records forever.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is a cron expression for pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	// ListenAddress is "host:port".
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout, WriteTimeout and IdleTimeout configure http.Server.
	// Defaults: 30s, 60s, 120s
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// WatchConfig reloads the configuration file on change.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`

	// TLS serves HTTPS when enabled.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures HTTPS. Certificates are re-read when the files
// change, so renewals need no restart.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often certificate files are checked.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`

	// ClientCAFile enables client certificate verification when set.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuth is "require", "request" or "verify_if_given".
	// Default: "require"
	ClientAuth string `yaml:"client_auth"`
}

// SecretsConfig configures secret references. A credential field such as
// providers.gemini.api_key may hold "${secret:gemini-api-key}", which is
// looked up in Dir first and then in the environment.
type SecretsConfig struct {
	// Dir holds one file per secret, named after the secret. Files must
	// be mode 0600 or 0400.
	Dir string `yaml:"dir"`

	// EnvPrefix prefixes environment lookups: "gemini-api-key" is read
	// from IMAGERY_SECRET_GEMINI_API_KEY.
	// Default: "IMAGERY_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// CacheTTL keeps resolved values for this long.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII redacts keys, tokens and emails from log attributes.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns adds custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes metric names.
	// Default: "imagery"
	Namespace string `yaml:"namespace"`

	// StageDurationBuckets are histogram buckets in seconds.
	StageDurationBuckets []float64 `yaml:"stage_duration_buckets"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the ratio sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported on every span.
	// Default: "imagery"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
