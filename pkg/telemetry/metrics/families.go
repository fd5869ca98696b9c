package metrics

import (
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks the Generate state machine.
//
// Metrics:
//   - imagery_stage_duration_seconds{stage}
//   - imagery_generations_total{platform,category,outcome}
type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	generations   *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers pipeline metrics.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each generation stage in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
			[]string{"stage"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "generations_total",
				Help:      "Total number of generation requests by outcome",
			},
			[]string{"platform", "category", "outcome"},
		),
	}
	registry.MustRegister(pm.stageDuration, pm.generations)
	return pm
}

// ObserveStage records a stage duration.
func (pm *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	pm.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountGeneration increments the generation counter.
func (pm *PipelineMetrics) CountGeneration(platform, category, outcome string) {
	pm.generations.WithLabelValues(platform, category, outcome).Inc()
}

// ProviderMetrics tracks image provider calls and health.
//
// Metrics:
//   - imagery_provider_calls_total{provider,code}
//   - imagery_provider_health{provider} (1=healthy, 0=unhealthy)
type ProviderMetrics struct {
	calls  *prometheus.CounterVec
	health *prometheus.GaugeVec
}

// NewProviderMetrics creates and registers provider metrics.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider calls by result code",
			},
			[]string{"provider", "code"},
		),
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
	}
	registry.MustRegister(pm.calls, pm.health)
	return pm
}

// CountCall increments the provider call counter.
func (pm *ProviderMetrics) CountCall(provider, code string) {
	pm.calls.WithLabelValues(provider, code).Inc()
}

// UpdateHealth sets the provider health gauge.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	pm.health.WithLabelValues(provider).Set(v)
}

// StorageMetrics tracks storage writes.
//
// Metrics:
//   - imagery_storage_writes_total{backend,code}
type StorageMetrics struct {
	writes *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "storage_writes_total",
				Help:      "Total number of storage writes by result code",
			},
			[]string{"backend", "code"},
		),
	}
	registry.MustRegister(sm.writes)
	return sm
}

// CountWrite increments the storage write counter.
func (sm *StorageMetrics) CountWrite(backend, code string) {
	sm.writes.WithLabelValues(backend, code).Inc()
}

// SafetyMetrics tracks blocked requests.
//
// Metrics:
//   - imagery_safety_blocks_total{reason}
type SafetyMetrics struct {
	blocks *prometheus.CounterVec
}

// NewSafetyMetrics creates and registers safety metrics.
func NewSafetyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SafetyMetrics {
	sm := &SafetyMetrics{
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "safety_blocks_total",
				Help:      "Total number of safety blocks by reason",
			},
			[]string{"reason"},
		),
	}
	registry.MustRegister(sm.blocks)
	return sm
}

// CountBlock increments the safety block counter.
func (sm *SafetyMetrics) CountBlock(reason string) {
	sm.blocks.WithLabelValues(reason).Inc()
}
