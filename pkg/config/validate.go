package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

var (
	validProviderTypes = map[string]bool{"gemini": true, "imagen": true, "seedream": true, "stub": true}
	validCategories    = map[string]bool{"educational": true, "promotion": true, "social_proof": true, "local_abstract": true, "evergreen": true}
	validAuditDrivers  = map[string]bool{"sqlite3": true, "sqlite": true, "postgres": true, "memory": true}
	validLogLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats    = map[string]bool{"json": true, "text": true, "console": true}
	validSamplers      = map[string]bool{SamplerAlways: true, SamplerNever: true, SamplerRatio: true}
	validTLSVersions   = map[string]bool{"1.2": true, "1.3": true}
	validClientAuth    = map[string]bool{"require": true, "request": true, "verify_if_given": true}
)

// Validate validates the configuration. All problems are collected and
// returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.ModelTier != "standard" && cfg.ModelTier != "premium" {
		errs = append(errs, FieldError{
			Field:   "engine.model_tier",
			Message: fmt.Sprintf("must be standard or premium, got %q", cfg.ModelTier),
		})
	}
	for i, c := range cfg.PremiumCategories {
		if !validCategories[c] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("engine.premium_categories[%d]", i),
				Message: fmt.Sprintf("unknown category %q", c),
			})
		}
	}
	if cfg.ProviderTimeout <= 0 {
		errs = append(errs, FieldError{Field: "engine.provider_timeout", Message: "must be positive"})
	}
	if cfg.StorageTimeout <= 0 {
		errs = append(errs, FieldError{Field: "engine.storage_timeout", Message: "must be positive"})
	}

	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for id, p := range providers {
		prefix := "providers." + id

		providerType := p.Type
		if providerType == "" && validProviderTypes[id] {
			providerType = id
		}
		if p.Type != "" && !validProviderTypes[p.Type] {
			errs = append(errs, FieldError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("unsupported provider type %q (supported: gemini, imagen, seedream, stub)", p.Type),
			})
		}
		if providerType != "" && providerType != "stub" && p.APIKey == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".api_key",
				Message: "API key is required",
			})
		}
		if p.BaseURL != "" {
			if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   prefix + ".base_url",
					Message: "must be an absolute URL",
				})
			}
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{Field: prefix + ".timeout", Message: "must not be negative"})
		}
		if p.HealthCheckInterval < 0 {
			errs = append(errs, FieldError{Field: prefix + ".health_check_interval", Message: "must not be negative"})
		}
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "local":
		if cfg.Local.Root == "" {
			errs = append(errs, FieldError{Field: "storage.local.root", Message: "root directory is required"})
		}
	case "s3":
		if cfg.S3.Bucket == "" {
			errs = append(errs, FieldError{Field: "storage.s3.bucket", Message: "bucket is required"})
		}
		if cfg.S3.Region == "" {
			errs = append(errs, FieldError{Field: "storage.s3.region", Message: "region is required"})
		}
		if cfg.S3.Endpoint != "" && !strings.HasPrefix(cfg.S3.Endpoint, "https://") && !strings.HasPrefix(cfg.S3.Endpoint, "http://") {
			errs = append(errs, FieldError{Field: "storage.s3.endpoint", Message: "must be an http or https URL"})
		}
		if cfg.S3.PublicBaseURL != "" && !strings.HasPrefix(cfg.S3.PublicBaseURL, "https://") {
			errs = append(errs, FieldError{Field: "storage.s3.public_base_url", Message: "must be an https URL"})
		}
		if (cfg.S3.AccessKeyID == "") != (cfg.S3.SecretAccessKey == "") {
			errs = append(errs, FieldError{
				Field:   "storage.s3.secret_access_key",
				Message: "access_key_id and secret_access_key must be set together",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("unsupported backend %q (supported: local, s3, memory)", cfg.Backend),
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	if !validAuditDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "audit.driver",
			Message: fmt.Sprintf("unsupported driver %q (supported: sqlite3, sqlite, postgres, memory)", cfg.Driver),
		})
	}
	if cfg.Driver != "memory" && cfg.DSN == "" {
		errs = append(errs, FieldError{Field: "audit.dsn", Message: "DSN is required"})
	}
	if cfg.BufferSize < 0 {
		errs = append(errs, FieldError{Field: "audit.buffer_size", Message: "must not be negative"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "audit.retention.days", Message: "must not be negative"})
	}
	if cfg.Retention.Schedule != "" && len(strings.Fields(cfg.Retention.Schedule)) != 5 &&
		!strings.HasPrefix(cfg.Retention.Schedule, "@") {
		errs = append(errs, FieldError{
			Field:   "audit.retention.schedule",
			Message: "must be a 5-field cron expression or a descriptor such as @daily",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be host:port, got %q", cfg.ListenAddress),
		})
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server", Message: "timeouts must not be negative"})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "must be positive"})
	}
	errs = append(errs, validateTLS(&cfg.TLS)...)

	return errs
}

func validateTLS(cfg *TLSConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.CertFile == "" {
		errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "required when TLS is enabled"})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "required when TLS is enabled"})
	}
	if !validTLSVersions[cfg.MinVersion] {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("must be 1.2 or 1.3; got %q", cfg.MinVersion),
		})
	}
	if cfg.ClientCAFile != "" && !validClientAuth[cfg.ClientAuth] {
		errs = append(errs, FieldError{
			Field:   "server.tls.client_auth",
			Message: fmt.Sprintf("must be require, request or verify_if_given; got %q", cfg.ClientAuth),
		})
	}
	if cfg.ReloadInterval < 0 {
		errs = append(errs, FieldError{Field: "server.tls.reload_interval", Message: "must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level),
		})
	}
	if !validLogFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text, console; got %q", cfg.Logging.Format),
		})
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if p.Name == "" || p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i),
				Message: "name and pattern are required",
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
	}

	if cfg.Tracing.Enabled {
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("must be one of always, never, ratio; got %q", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0 and 1"})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required"})
		}
	}

	return errs
}
