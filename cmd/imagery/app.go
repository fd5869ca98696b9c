package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/recorder"
	auditstorage "github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config/secrets"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/engine"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providerfactory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storagefactory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/metrics"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/tracing"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// loadConfig loads --config with environment overrides, resolves secret
// references and publishes the result as the global configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, cli.NewConfigError("config", err.Error())
	}
	if err := resolveSecrets(context.Background(), cfg); err != nil {
		return nil, err
	}
	config.SetConfig(cfg)
	return cfg, nil
}

// resolveSecrets expands ${secret:name} references in cfg.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	resolver, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return cli.NewConfigError("secrets.dir", err.Error())
	}
	if err := secrets.ResolveConfig(ctx, cfg, resolver); err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}
	return nil
}

// setupLogging installs the configured logger as the slog default. Logs
// always go to stderr so command output on stdout stays parseable.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		lc.Level = "debug"
	}
	lc.Writer = os.Stderr

	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()
	return logger.Slog(), nil
}

// providerConfigs converts the providers section into adapter configs,
// sorted by id so that load order and logs are stable.
func providerConfigs(cfg *config.Config) []providers.ProviderConfig {
	ids := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]providers.ProviderConfig, 0, len(ids))
	for _, id := range ids {
		pc := cfg.Providers[id]
		timeout := pc.Timeout
		if timeout == 0 {
			timeout = cfg.Engine.ProviderTimeout
		}
		out = append(out, providers.ProviderConfig{
			Name:                id,
			Type:                pc.Type,
			BaseURL:             pc.BaseURL,
			APIKey:              pc.APIKey,
			Model:               pc.Model,
			PremiumModel:        pc.PremiumModel,
			Timeout:             timeout,
			HealthCheckInterval: pc.HealthCheckInterval,
			MaxIdleConns:        pc.MaxIdleConns,
			MaxIdleConnsPerHost: pc.MaxIdleConnsPerHost,
			Watermark:           pc.Watermark,
		})
	}
	return out
}

// stack is everything built from one configuration that serves
// generations. A config reload builds a new stack and closes the old one.
type stack struct {
	engine   *engine.Engine
	registry *providerfactory.Registry
	storage  storage.Backend
}

// stackDeps are the collaborators shared across reloads.
type stackDeps struct {
	audit   engine.AuditSink
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger

	// provider overrides engine.default_provider when set
	provider string
}

func buildStack(ctx context.Context, cfg *config.Config, deps stackDeps) (*stack, error) {
	registry, err := providerfactory.Load(providerConfigs(cfg))
	if err != nil {
		// Providers that failed to load are served by the stub.
		slog.Warn("some providers failed to initialize", "error", err)
	}

	backend, err := storagefactory.New(ctx, cfg.Storage, cfg.Engine.StorageTimeout)
	if err != nil {
		registry.Close()
		return nil, cli.NewConfigError("storage", err.Error())
	}

	opts := engine.OptionsFromConfig(cfg.Engine)
	if deps.provider != "" {
		opts.ProviderID = deps.provider
	}

	ec := engine.Config{
		Providers:       registry,
		Storage:         backend,
		Metrics:         deps.metrics,
		Tracer:          deps.tracer,
		Logger:          deps.logger,
		Decision:        opts,
		ProviderTimeout: cfg.Engine.ProviderTimeout,
		StorageTimeout:  cfg.Engine.StorageTimeout,
	}
	if deps.audit != nil {
		ec.Audit = deps.audit
	}

	eng, err := engine.New(ec)
	if err != nil {
		registry.Close()
		backend.Close()
		return nil, err
	}
	return &stack{engine: eng, registry: registry, storage: backend}, nil
}

// Close releases the providers and the storage backend.
func (s *stack) Close() error {
	return errors.Join(s.registry.Close(), s.storage.Close())
}

// auditLog is an opened audit store with its async recorder.
type auditLog struct {
	store    audit.Store
	recorder *recorder.Recorder
}

// openAudit opens the configured audit store. It returns nil when auditing
// is disabled.
func openAudit(ctx context.Context, cfg *config.Config) (*auditLog, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	store, err := auditstorage.Open(ctx, cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit store: %w", err)
	}
	rec := recorder.New(store, &recorder.Config{
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	})
	return &auditLog{store: store, recorder: rec}, nil
}

// sink returns the recorder as an engine sink, or nil for a nil log.
func (a *auditLog) sink() engine.AuditSink {
	if a == nil {
		return nil
	}
	return a.recorder
}

// Close drains the recorder and closes the store.
func (a *auditLog) Close() error {
	if a == nil {
		return nil
	}
	return errors.Join(a.recorder.Close(), a.store.Close())
}

// readRequests reads one request object or an array of them from path, or
// from stdin when path is "-" or empty. The bool reports whether the input
// was an array.
func readRequests(in io.Reader, path string) ([]*types.Request, bool, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read requests: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, false, errors.New("no request provided")
	}

	if strings.HasPrefix(trimmed, "[") {
		var reqs []*types.Request
		if err := json.Unmarshal([]byte(trimmed), &reqs); err != nil {
			return nil, true, fmt.Errorf("failed to parse request array: %w", err)
		}
		for i, r := range reqs {
			if r == nil {
				return nil, true, fmt.Errorf("request %d is null", i)
			}
		}
		return reqs, true, nil
	}

	var req types.Request
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return nil, false, fmt.Errorf("failed to parse request: %w", err)
	}
	return []*types.Request{&req}, false, nil
}

// render writes v as JSON when --output json is set, and text otherwise.
func render(cmd *cobra.Command, v any, text cli.Texter) error {
	f, err := formatter()
	if err != nil {
		return err
	}
	if _, ok := f.(*cli.JSONFormatter); ok {
		return f.FormatTo(cmd.OutOrStdout(), v)
	}
	return f.FormatTo(cmd.OutOrStdout(), text)
}
