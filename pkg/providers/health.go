package providers

import (
	"context"
	"log/slog"
	"time"
)

const (
	// unhealthyAfter is the number of consecutive failures that marks a
	// provider unhealthy.
	unhealthyAfter = 3

	// checkTimeout bounds one background health check.
	checkTimeout = 5 * time.Second

	// maxCheckBackoff caps the check interval of an unhealthy provider.
	maxCheckBackoff = 5 * time.Minute
)

// HealthObserver is told the provider state after every recorded outcome.
// The serve command feeds it into the imagery_provider_health gauge.
type HealthObserver func(provider string, healthy bool)

// HealthReporter is implemented by providers that publish health changes.
type HealthReporter interface {
	SetHealthObserver(HealthObserver)
}

// OutcomeRecorder is implemented by providers whose health follows call
// outcomes. The engine uses it to count calls that never returned, such
// as a panicking adapter.
type OutcomeRecorder interface {
	RecordOutcome(err error)
}

// SetHealthObserver registers fn. A nil fn removes the observer.
func (p *HTTPProvider) SetHealthObserver(fn HealthObserver) {
	p.healthMu.Lock()
	p.observer = fn
	p.healthMu.Unlock()
}

// SetHealthEndpoint overrides the URL and headers used by health checks.
// Adapters call it when the base URL alone is not a cheap authenticated GET.
func (p *HTTPProvider) SetHealthEndpoint(url string, headers map[string]string) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()
	p.healthURL = url
	p.healthHeaders = headers
}

// StartHealthChecker checks the provider every HealthCheckInterval until
// ctx is done or the provider is closed. It does nothing when the interval
// is not positive or the checker already runs.
func (p *HTTPProvider) StartHealthChecker(ctx context.Context) {
	if p.config.HealthCheckInterval <= 0 || p.healthCheckStarted {
		return
	}
	p.healthCheckStarted = true
	go p.watchHealth(ctx)
}

func (p *HTTPProvider) watchHealth(ctx context.Context) {
	defer close(p.healthCheckStopped)

	base := p.config.HealthCheckInterval
	timer := time.NewTimer(base)
	defer timer.Stop()

	logger := slog.Default().With("component", "providers.health", "provider", p.config.Name, "provider_type", p.config.Type)
	logger.Debug("health checker started", "interval", base)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopHealthCheck:
			return
		case <-timer.C:
		}

		wasHealthy := p.IsHealthy()
		err := p.checkOnce(ctx)
		h := p.GetHealth()

		switch {
		case err != nil && !h.IsHealthy:
			logger.Warn("health check failed", "consecutive_failures", h.ConsecutiveFailures, "error", err)
		case err != nil:
			logger.Debug("health check failed", "consecutive_failures", h.ConsecutiveFailures, "error", err)
		case !wasHealthy:
			logger.Info("provider healthy again")
		}

		timer.Reset(checkBackoff(h.ConsecutiveFailures, base))
	}
}

// checkOnce issues one GET against the health endpoint and records the
// outcome like any other request.
func (p *HTTPProvider) checkOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	p.healthMu.RLock()
	url, headers := p.healthURL, p.healthHeaders
	p.healthMu.RUnlock()

	if url == "" {
		url = p.config.BaseURL
	}
	if url == "" {
		return nil
	}

	resp, err := p.DoRequest(ctx, "GET", url, nil, headers)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// checkBackoff doubles the check interval per consecutive failure, up to
// eight times the base interval and never beyond maxCheckBackoff.
func checkBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 3 {
		failures = 3
	}
	d := base << uint(failures)
	if d > maxCheckBackoff {
		d = maxCheckBackoff
	}
	return d
}

// HealthCheck checks the provider once.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	return p.checkOnce(ctx)
}
