package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/engine"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/server/certs"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/server/middleware"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/health"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/metrics"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/tracing"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	// Jobs serves GET /v1/images/jobs/{requestId}. Without it the route
	// answers 503.
	Jobs audit.Store

	// Checker serves /health and /ready. A checker without checks is used
	// when nil.
	Checker *health.Checker

	// Metrics serves /metrics when set.
	Metrics *metrics.Collector

	// Build information for /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP front of the image engine.
type Server struct {
	config       *config.ServerConfig
	opts         Options
	engine       atomic.Pointer[engine.Engine]
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server around eng.
func NewServer(cfg *config.ServerConfig, eng *engine.Engine, opts Options) *Server {
	if opts.Checker == nil {
		opts.Checker = health.New(0)
	}
	s := &Server{
		config:       cfg,
		opts:         opts,
		shutdownChan: make(chan struct{}),
	}
	s.engine.Store(eng)
	return s
}

// SwapEngine atomically replaces the engine used by new requests and
// returns the previous one. Requests already running keep the engine they
// started with.
func (s *Server) SwapEngine(eng *engine.Engine) *engine.Engine {
	if eng == nil {
		return nil
	}
	return s.engine.Swap(eng)
}

// Engine returns the current engine.
func (s *Server) Engine() *engine.Engine {
	return s.engine.Load()
}

// Start starts the HTTP server and blocks until ctx is done, a signal
// arrives, Stop is called or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	useTLS := s.config.TLS.Enabled
	if useTLS {
		tlsConfig, reloader, err := certs.TLSConfig(s.config.TLS)
		if err == nil {
			err = reloader.Start(ctx)
		}
		if err != nil {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting imagery server", "address", s.config.ListenAddress, "tls", useTLS)
		var err error
		if useTLS {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// generations up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("imagery server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	api := http.NewServeMux()
	api.HandleFunc("POST /v1/images/generate", s.handleGenerate)
	api.HandleFunc("POST /v1/images/decide", s.handleDecide)
	api.HandleFunc("GET /v1/images/jobs/{requestId}", s.handleJob)

	mux.Handle("/v1/", middleware.BodyLimitMiddleware(s.config.MaxBodyBytes)(api))
	health.Register(mux, s.opts.Checker, s.opts.Version, s.opts.Commit, s.opts.BuildTime)
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	return handler
}
