package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

// newSampler builds the sampler for telemetry.tracing. Sampling is decided
// on the imagery.generate root span; stage spans and provider HTTP spans
// follow it through ParentBased, so a generation is traced whole or not at
// all. A sampled traceparent from the caller wins over the local sampler.
//
// The ratio is only read for the ratio sampler. config.Validate rejects the
// same inputs at load time; the check here covers tracers built directly.
func newSampler(cfg *config.TracingConfig) (sdktrace.Sampler, error) {
	var root sdktrace.Sampler
	switch cfg.Sampler {
	case config.SamplerAlways:
		root = sdktrace.AlwaysSample()
	case config.SamplerNever:
		root = sdktrace.NeverSample()
	case config.SamplerRatio:
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			return nil, fmt.Errorf("telemetry.tracing.sample_ratio must be between 0 and 1, got %g", cfg.SampleRatio)
		}
		root = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	default:
		return nil, fmt.Errorf("unknown telemetry.tracing.sampler %q", cfg.Sampler)
	}
	return sdktrace.ParentBased(root), nil
}
