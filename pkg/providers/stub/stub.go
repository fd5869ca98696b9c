// Package stub provides an offline image provider.
//
// The stub renders a solid-colour PNG of the requested size. The colour is
// derived from the prompt, so identical inputs produce identical bytes. It can
// be configured to fail with a fixed code or to wait before answering, which
// makes it the provider of choice for tests and dry runs.
package stub

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

// Name is the provider id used when no other provider is configured.
const Name = "stub"

// Options configure stub behaviour.
type Options struct {
	// FailCode makes every call fail with this output code.
	FailCode string

	// Delay is waited before answering. The wait honours the context.
	Delay time.Duration

	// Model is reported in successful outputs.
	Model string
}

// Provider is the stub adapter.
type Provider struct {
	name  string
	opts  Options
	calls atomic.Int64

	mu     sync.RWMutex
	health providers.ProviderHealth
}

// New creates a stub provider.
func New(name string, opts Options) *Provider {
	if name == "" {
		name = Name
	}
	if opts.Model == "" {
		opts.Model = "stub-solid-v1"
	}
	return &Provider{
		name:   name,
		opts:   opts,
		health: providers.ProviderHealth{IsHealthy: true, LastCheck: time.Now()},
	}
}

// NewProvider creates a stub from provider configuration.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	return New(config.Name, Options{Model: config.Model}), nil
}

// Generate renders the image or returns the configured failure.
func (p *Provider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	p.calls.Add(1)

	if p.opts.Delay > 0 {
		timer := time.NewTimer(p.opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return p.fail(ctx.Err())
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return p.fail(err)
	}

	if p.opts.FailCode != "" {
		p.record(false)
		return &providers.GenerateOutput{
			ErrorCode:        p.opts.FailCode,
			ErrorMessageSafe: p.name + ": configured failure",
		}
	}

	data, err := Render(in.Width, in.Height, in.Prompt)
	if err != nil {
		return p.fail(&providers.ProviderError{Provider: p.name, Message: "render failed", Cause: err})
	}
	p.record(true)
	return providers.Success(data, "image/png", p.opts.Model)
}

func (p *Provider) fail(err error) *providers.GenerateOutput {
	p.record(false)
	if errors.Is(err, context.DeadlineExceeded) {
		err = &providers.TimeoutError{Provider: p.name, Timeout: p.opts.Delay}
	}
	return providers.Failure(p.name, err)
}

func (p *Provider) record(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health.TotalRequests++
	if success {
		p.health.LastSuccessfulRequest = time.Now()
		return
	}
	p.health.FailedRequests++
}

// Calls returns how many times Generate was invoked.
func (p *Provider) Calls() int64 {
	return p.calls.Load()
}

// HealthCheck always succeeds.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	p.health.LastCheck = time.Now()
	p.mu.Unlock()
	return nil
}

// GetName returns the provider id.
func (p *Provider) GetName() string { return p.name }

// GetType returns providers.TypeStub.
func (p *Provider) GetType() string { return providers.TypeStub }

// IsHealthy always reports true.
func (p *Provider) IsHealthy() bool { return true }

// GetHealth returns request counters.
func (p *Provider) GetHealth() providers.ProviderHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// Close is a no-op.
func (p *Provider) Close() error { return nil }

// Render draws a solid PNG whose colour is a hash of seed.
func Render(width, height int, seed string) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("stub: non-positive image size")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}

	// A one-entry palette keeps large images small on disk.
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{fill})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
