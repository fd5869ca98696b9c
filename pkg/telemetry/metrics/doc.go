// Package metrics provides Prometheus metrics for the imagery engine.
//
// # Metrics
//
//   - imagery_stage_duration_seconds{stage}: per-stage latency histogram
//   - imagery_generations_total{platform,category,outcome}: finished requests
//   - imagery_provider_calls_total{provider,code}: provider invocations
//   - imagery_provider_health{provider}: 1 when the adapter is healthy
//   - imagery_storage_writes_total{backend,code}: storage writes
//   - imagery_safety_blocks_total{reason}: blocked safety verdicts
//
// Successful calls are recorded with code "ok".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordStage("provider", 800*time.Millisecond)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
