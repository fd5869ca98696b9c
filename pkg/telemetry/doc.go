// Package telemetry groups the observability packages of the image engine.
//
// # Components
//
//   - logging: slog setup with secret and prompt redaction
//   - metrics: Prometheus stage timings and outcome counters
//   - tracing: OpenTelemetry spans, one per generation stage
//   - health: liveness and readiness checks with HTTP endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, _ := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	logger.SetDefault()
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordStage("provider", 2300*time.Millisecond)
//
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(ctx)
//	ctx, span := tracer.Start(ctx, "imagery.generate")
//	defer span.End()
//
// # Redaction
//
// Prompt text never reaches a log line. On top of that, values matching
// credential patterns are masked before they are written:
//
//   - API keys: sk-abc123 becomes sk-***
//   - Google API keys: AIza... becomes AIza***
//   - Bearer tokens and passwords are fully masked
//
// Custom patterns can be added in telemetry.logging.redact_patterns.
package telemetry
