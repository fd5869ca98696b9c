package metrics

import (
	"sync"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the central metrics recorder for the imagery engine.
//
// All Record* methods are safe for concurrent use and are no-ops when
// metrics are disabled or the collector is nil, so the engine can hold a
// nil *Collector in tests.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	pipeline *PipelineMetrics
	provider *ProviderMetrics
	storage  *StorageMetrics
	safety   *SafetyMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers every metric family with
// registry. A nil registry gets a fresh one.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "imagery"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.StageDurationBuckets) == 0 {
		cfg.StageDurationBuckets = append([]float64(nil), config.DefaultStageDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		pipeline:           NewPipelineMetrics(cfg, registry),
		provider:           NewProviderMetrics(cfg, registry),
		storage:            NewStorageMetrics(cfg, registry),
		safety:             NewSafetyMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordStage observes the duration of one pipeline stage
// ("decide", "assemble", "size", "provider", "storage", "alt_text", "total").
func (c *Collector) RecordStage(stage string, d time.Duration) {
	if !c.enabled() {
		return
	}
	c.pipeline.ObserveStage(stage, d)
}

// RecordGeneration counts one finished Generate call. outcome is
// "generated" or the fallback reason.
func (c *Collector) RecordGeneration(platform, category, outcome string) {
	if !c.enabled() {
		return
	}
	c.pipeline.CountGeneration(platform, category, outcome)
}

// RecordProviderCall counts one provider invocation. code is empty on
// success and recorded as "ok".
func (c *Collector) RecordProviderCall(provider, code string) {
	if !c.enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow("provider:" + provider) {
		provider = "other"
	}
	c.provider.CountCall(provider, codeLabel(code))
}

// UpdateProviderHealth sets the health gauge for provider.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow("provider:" + provider) {
		return
	}
	c.provider.UpdateHealth(provider, healthy)
}

// RecordStorageWrite counts one storage write.
func (c *Collector) RecordStorageWrite(backend, code string) {
	if !c.enabled() {
		return
	}
	c.storage.CountWrite(backend, codeLabel(code))
}

// RecordSafetyBlock counts each reason of a blocked safety verdict.
func (c *Collector) RecordSafetyBlock(reasons []string) {
	if !c.enabled() {
		return
	}
	for _, r := range reasons {
		label := reasonLabel(r)
		if !c.cardinalityLimiter.Allow("safety:" + label) {
			label = "other"
		}
		c.safety.CountBlock(label)
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func codeLabel(code string) string {
	if code == "" {
		return "ok"
	}
	return code
}

// reasonLabel keeps the part of a safety reason before the first ':' so
// indexed reasons ("brand_color_ignored:2") share one series.
func reasonLabel(reason string) string {
	for i := 0; i < len(reason); i++ {
		if reason[i] == ':' {
			return reason[:i]
		}
	}
	return reason
}

// CardinalityLimiter caps the number of distinct label sets a collector
// will create.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing at most maxCardinality
// label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
