package certs

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultReloadInterval is used when no interval is configured.
const DefaultReloadInterval = 5 * time.Minute

// Reloader serves a certificate pair and re-reads it when either file's
// modification time moves. A pair that fails to load or validate is
// logged and the previous certificate stays in service.
type Reloader struct {
	certFile string
	keyFile  string
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewReloader creates a reloader polling every interval.
func NewReloader(certFile, keyFile string, interval time.Duration) *Reloader {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	return &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
		now:      time.Now,
		logger:   slog.Default().With("component", "server.certs"),
	}
}

// Start loads the pair and polls for changes until ctx is done.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.Reload(); err != nil {
		return err
	}
	go r.loop(ctx)
	return nil
}

func (r *Reloader) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.changed() {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.Error("certificate reload failed; keeping current certificate",
					"cert_file", r.certFile,
					"error", err,
				)
			}
		}
	}
}

func (r *Reloader) changed() bool {
	ci, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	ki, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return ci.ModTime().After(r.certTime) || ki.ModTime().After(r.keyTime)
}

// Reload reads and validates the pair now.
func (r *Reloader) Reload() error {
	ci, err := os.Stat(r.certFile)
	if err != nil {
		return err
	}
	ki, err := os.Stat(r.keyFile)
	if err != nil {
		return err
	}

	pair, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	leaf, err := Validate(&pair, r.now())
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &pair
	r.certTime = ci.ModTime()
	r.keyTime = ki.ModTime()
	r.mu.Unlock()

	remaining := leaf.NotAfter.Sub(r.now())
	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
		"expires_in_days", int(remaining.Hours() / 24),
	}
	if remaining < ExpiryWarning {
		r.logger.Warn("certificate expiring soon", attrs...)
	} else {
		r.logger.Info("certificate loaded", attrs...)
	}
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cert == nil {
		return nil, errors.New("no certificate loaded")
	}
	return r.cert, nil
}
