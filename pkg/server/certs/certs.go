// Package certs builds the HTTPS configuration of the server and keeps its
// certificate current as the files on disk are renewed.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

// ExpiryWarning is how close to NotAfter a certificate starts logging
// warnings.
const ExpiryWarning = 30 * 24 * time.Hour

// TLSConfig returns a tls.Config for cfg whose certificate is served by
// the reloader. The reloader must be started before the listener accepts
// connections.
func TLSConfig(cfg config.TLSConfig) (*tls.Config, *Reloader, error) {
	if !cfg.Enabled {
		return nil, nil, errors.New("tls is not enabled")
	}

	reloader := NewReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval)

	// #nosec G402 - MinVersion is validated to 1.2 or 1.3
	tc := &tls.Config{
		MinVersion:     minVersion(cfg.MinVersion),
		GetCertificate: reloader.GetCertificate,
	}

	if cfg.ClientCAFile != "" {
		pem, err := os.ReadFile(cfg.ClientCAFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read client CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, nil, errors.New("client CA file holds no PEM certificates")
		}
		tc.ClientCAs = pool
		tc.ClientAuth = clientAuth(cfg.ClientAuth)
	}

	return tc, reloader, nil
}

func minVersion(v string) uint16 {
	if v == "1.2" {
		return tls.VersionTLS12
	}
	return tls.VersionTLS13
}

func clientAuth(mode string) tls.ClientAuthType {
	switch mode {
	case "request":
		return tls.RequestClientCert
	case "verify_if_given":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// Validate checks that the leaf of cert is within its validity window at
// now.
func Validate(cert *tls.Certificate, now time.Time) (*x509.Certificate, error) {
	if cert == nil || len(cert.Certificate) == 0 {
		return nil, errors.New("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	if now.Before(leaf.NotBefore) {
		return nil, fmt.Errorf("certificate is not valid until %s", leaf.NotBefore.Format(time.RFC3339))
	}
	if now.After(leaf.NotAfter) {
		return nil, fmt.Errorf("certificate expired on %s", leaf.NotAfter.Format(time.RFC3339))
	}
	return leaf, nil
}
