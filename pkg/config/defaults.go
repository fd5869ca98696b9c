package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultProviderID      = "stub"
	DefaultModelTier       = "standard"
	DefaultProviderTimeout = 25 * time.Second
	DefaultStorageTimeout  = 15 * time.Second

	// Storage defaults
	DefaultStorageBackend = "local"
	DefaultLocalRoot      = "public"

	// Audit defaults
	DefaultAuditEnabled           = true
	DefaultAuditDriver            = "sqlite3"
	DefaultAuditDSN               = "data/imagery-audit.db"
	DefaultAuditMaxOpenConns      = 10
	DefaultAuditBufferSize        = 1000
	DefaultAuditWriteTimeout      = 5 * time.Second
	DefaultAuditRetentionDays     = 90
	DefaultAuditRetentionSchedule = "0 3 * * *"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(64 * 1024)
	DefaultTLSMinVersion   = "1.3"
	DefaultTLSReload       = 5 * time.Minute
	DefaultTLSClientAuth   = "require"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "IMAGERY_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "imagery"
	DefaultTracingSampler     = SamplerRatio
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "imagery"
	DefaultTracingTimeout     = 10 * time.Second
)

// Trace samplers accepted in telemetry.tracing.sampler.
const (
	// SamplerAlways records every generation trace.
	SamplerAlways = "always"
	// SamplerNever records none.
	SamplerNever = "never"
	// SamplerRatio records telemetry.tracing.sample_ratio of new traces.
	SamplerRatio = "ratio"
)

// DefaultStageDurationBuckets covers fast pure stages through slow provider calls.
var DefaultStageDurationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25}

// DefaultPremiumCategories lists categories upgraded to the premium tier.
var DefaultPremiumCategories = []string{"promotion"}

// NewDefault returns a configuration with every default applied. Booleans
// that default to true are set here; ApplyDefaults cannot distinguish an
// explicit false from an omitted field.
func NewDefault() *Config {
	cfg := &Config{}
	presetBooleans(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// presetBooleans sets the fields that default to true. The loader calls it
// before decoding so an explicit false in the file still wins.
func presetBooleans(cfg *Config) {
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Logging.RedactPII = true
}

// ApplyDefaults fills zero-valued fields with defaults.
// It is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Engine
	if cfg.Engine.DefaultProvider == "" {
		cfg.Engine.DefaultProvider = DefaultProviderID
	}
	if cfg.Engine.ModelTier == "" {
		cfg.Engine.ModelTier = DefaultModelTier
	}
	if cfg.Engine.PremiumCategories == nil {
		cfg.Engine.PremiumCategories = append([]string(nil), DefaultPremiumCategories...)
	}
	if cfg.Engine.ProviderTimeout == 0 {
		cfg.Engine.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.Engine.StorageTimeout == 0 {
		cfg.Engine.StorageTimeout = DefaultStorageTimeout
	}

	// Providers
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for id, p := range cfg.Providers {
		if p.Timeout == 0 {
			p.Timeout = cfg.Engine.ProviderTimeout
		}
		cfg.Providers[id] = p
	}

	// Storage
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Local.Root == "" {
		cfg.Storage.Local.Root = DefaultLocalRoot
	}
	if cfg.Storage.S3.Timeout == 0 {
		cfg.Storage.S3.Timeout = cfg.Engine.StorageTimeout
	}

	// Audit
	if cfg.Audit.Driver == "" {
		cfg.Audit.Driver = DefaultAuditDriver
	}
	if cfg.Audit.DSN == "" && cfg.Audit.Driver != "memory" {
		cfg.Audit.DSN = DefaultAuditDSN
	}
	if cfg.Audit.MaxOpenConns == 0 {
		cfg.Audit.MaxOpenConns = DefaultAuditMaxOpenConns
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditRetentionSchedule
	}

	// Server
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
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}
	if cfg.Server.TLS.ClientAuth == "" {
		cfg.Server.TLS.ClientAuth = DefaultTLSClientAuth
	}

	// Secrets
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.StageDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.StageDurationBuckets = append([]float64(nil), DefaultStageDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
