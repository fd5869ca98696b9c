package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(NewDefault()); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "invalid model tier",
			mutate:    func(c *Config) { c.Engine.ModelTier = "ultra" },
			wantField: "engine.model_tier",
		},
		{
			name:      "unknown premium category",
			mutate:    func(c *Config) { c.Engine.PremiumCategories = []string{"promotion", "memes"} },
			wantField: "engine.premium_categories[1]",
		},
		{
			name: "provider without key",
			mutate: func(c *Config) {
				c.Providers["gemini"] = ProviderConfig{}
			},
			wantField: "providers.gemini.api_key",
		},
		{
			name: "unsupported provider type",
			mutate: func(c *Config) {
				c.Providers["x"] = ProviderConfig{Type: "dalle", APIKey: "k"}
			},
			wantField: "providers.x.type",
		},
		{
			name: "relative base url",
			mutate: func(c *Config) {
				c.Providers["gemini"] = ProviderConfig{APIKey: "k", BaseURL: "localhost/api"}
			},
			wantField: "providers.gemini.base_url",
		},
		{
			name:      "s3 without bucket",
			mutate:    func(c *Config) { c.Storage.Backend = "s3"; c.Storage.S3.Region = "us-east-1" },
			wantField: "storage.s3.bucket",
		},
		{
			name: "s3 half credentials",
			mutate: func(c *Config) {
				c.Storage.Backend = "s3"
				c.Storage.S3 = S3Config{Bucket: "b", Region: "r", AccessKeyID: "id"}
			},
			wantField: "storage.s3.secret_access_key",
		},
		{
			name: "s3 endpoint without scheme",
			mutate: func(c *Config) {
				c.Storage.Backend = "s3"
				c.Storage.S3 = S3Config{Bucket: "b", Region: "r", Endpoint: "minio:9000"}
			},
			wantField: "storage.s3.endpoint",
		},
		{
			name:      "unknown audit driver",
			mutate:    func(c *Config) { c.Audit.Driver = "mysql" },
			wantField: "audit.driver",
		},
		{
			name:      "bad cron schedule",
			mutate:    func(c *Config) { c.Audit.Retention.Schedule = "every day" },
			wantField: "audit.retention.schedule",
		},
		{
			name:      "bad listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "8080" },
			wantField: "server.listen_address",
		},
		{
			name:      "tls without key file",
			mutate:    func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c.pem", MinVersion: "1.3"} },
			wantField: "server.tls.key_file",
		},
		{
			name: "tls 1.0",
			mutate: func(c *Config) {
				c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.0"}
			},
			wantField: "server.tls.min_version",
		},
		{
			name: "unknown client auth",
			mutate: func(c *Config) {
				c.Server.TLS.Enabled = true
				c.Server.TLS.CertFile, c.Server.TLS.KeyFile = "c.pem", "k.pem"
				c.Server.TLS.ClientCAFile = "ca.pem"
				c.Server.TLS.ClientAuth = "optional"
			},
			wantField: "server.tls.client_auth",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name: "tracing ratio out of range",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.SampleRatio = 2
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name: "unknown tracing sampler",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "parent"
			},
			wantField: "telemetry.tracing.sampler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := Validate(cfg)
			var vErr ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range vErr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, vErr.Errors)
			}
		})
	}
}

func TestValidate_AuditDisabledSkipsChecks(t *testing.T) {
	cfg := NewDefault()
	cfg.Audit.Enabled = false
	cfg.Audit.Driver = "mysql"
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled audit should not be validated: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 errors") || !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("unexpected message %q", msg)
	}
}
