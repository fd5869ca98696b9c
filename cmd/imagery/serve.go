package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/retention"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providerfactory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/server"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/health"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/metrics"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/tracing"
)

// retireDelay is how long a replaced stack stays open after a reload so
// that generations already running on it can finish.
const retireDelay = time.Minute

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the imagery HTTP server",
	Long: `Start the HTTP API with the specified configuration.

Routes:
  POST /v1/images/generate           run a request through the pipeline
  POST /v1/images/decide             resolve a request without generating
  GET  /v1/images/jobs/{requestId}   audit job and events
  GET  /health, /ready, /version     probes and build info
  GET  /metrics                      Prometheus metrics (when enabled)

With server.watch_config set, edits to the configuration file rebuild the
providers, storage and engine without dropping connections.

Examples:
  # Start with defaults
  imagery serve

  # Start with a config file and override the listen address
  imagery serve --config /etc/imagery/config.yaml --listen 0.0.0.0:8080

  # Validate config without starting the server
  imagery serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	auditLog, err := openAudit(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer auditLog.Close()

	checker := health.New(0)
	var jobs audit.Store
	if auditLog != nil {
		jobs = auditLog.store
		checker.RegisterCheck("audit", health.PingCheck(auditLog.store))

		if cfg.Audit.Retention.Schedule != "" && cfg.Audit.Retention.Days > 0 {
			pruner := retention.NewPruner(auditLog.store, retention.Config{
				RetentionDays: cfg.Audit.Retention.Days,
				Schedule:      cfg.Audit.Retention.Schedule,
			})
			scheduler := retention.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start audit retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					slog.Debug("audit retention scheduler started", "next_run", next)
				}
			}
		}
	}

	deps := stackDeps{
		audit:   auditLog.sink(),
		metrics: collector,
		tracer:  tracer,
		logger:  logger,
	}
	st, err := buildStack(ctx, cfg, deps)
	if err != nil {
		return err
	}
	live := &liveStack{current: st, checker: checker, metrics: collector}
	live.registerProviderChecks(nil, st.registry)
	defer live.Close()

	srv := server.NewServer(&cfg.Server, st.engine, server.Options{
		Jobs:      jobs,
		Checker:   checker,
		Metrics:   collector,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	if cfg.Server.WatchConfig && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, 0, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				live.reload(ctx, cfg, next, deps, srv)
			})
			if err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imagery v%s listening on %s\n", Version, cfg.Server.ListenAddress)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

// liveStack owns the stack currently served and retires replaced ones.
type liveStack struct {
	mu      sync.Mutex
	current *stack
	retired []retiredStack
	checker *health.Checker
	metrics *metrics.Collector
}

// reload builds a stack from next and swaps it into srv. Settings that
// need a restart (server, audit, telemetry) are kept from the running
// configuration.
func (l *liveStack) reload(ctx context.Context, running, next *config.Config, deps stackDeps, srv *server.Server) {
	if next.Server != running.Server {
		slog.Warn("server settings changed; restart to apply them")
	}
	if err := resolveSecrets(ctx, next); err != nil {
		slog.Error("config reload failed; keeping current engine", "error", err)
		return
	}

	st, err := buildStack(ctx, next, deps)
	if err != nil {
		slog.Error("config reload failed; keeping current engine", "error", err)
		return
	}
	srv.SwapEngine(st.engine)

	l.mu.Lock()
	old := l.current
	l.current = st
	l.registerProviderChecks(old.registry, st.registry)
	l.retired = append(l.retired, retiredStack{
		stack: old,
		timer: time.AfterFunc(retireDelay, func() {
			if err := old.Close(); err != nil {
				slog.Warn("error closing retired stack", "error", err)
			}
		}),
	})
	l.mu.Unlock()

	slog.Info("configuration reloaded",
		"providers", st.registry.Names(),
		"storage", st.storage.Name(),
	)
}

// registerProviderChecks replaces the optional readiness checks of old's
// providers with checks for next's. Provider health also feeds the
// provider_healthy gauge.
func (l *liveStack) registerProviderChecks(old, next *providerfactory.Registry) {
	if old != nil {
		for _, name := range old.Names() {
			l.checker.UnregisterCheck("provider:" + name)
		}
	}
	for _, name := range next.Names() {
		p := next.Get(name)
		check := health.ProviderCheck(p)
		collector := l.metrics
		if r, ok := p.(providers.HealthReporter); ok && collector != nil {
			r.SetHealthObserver(collector.UpdateProviderHealth)
		}
		l.checker.RegisterOptionalCheck("provider:"+name, func(ctx context.Context) error {
			err := check(ctx)
			if collector != nil {
				collector.UpdateProviderHealth(p.GetName(), err == nil)
			}
			return err
		})
	}
}

// Close closes the current stack and any retired stack still waiting.
func (l *liveStack) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, r := range l.retired {
		if r.timer.Stop() {
			errs = append(errs, r.stack.Close())
		}
	}
	l.retired = nil
	errs = append(errs, l.current.Close())
	return errors.Join(errs...)
}

type retiredStack struct {
	stack *stack
	timer *time.Timer
}
