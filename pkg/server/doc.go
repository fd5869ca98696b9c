// Package server exposes the image engine over HTTP.
//
// Routes:
//
//	POST /v1/images/generate          image request -> GenerationResult
//	POST /v1/images/decide            image request -> Decision
//	GET  /v1/images/jobs/{requestId}  audit job record and events
//	GET  /health                      liveness
//	GET  /ready                       readiness (503 only on a critical failure)
//	GET  /version                     build information
//	GET  /metrics                     Prometheus metrics, when a collector is set
//
// A well-formed generate request always answers 200: fallbacks are results,
// not HTTP errors. Malformed bodies answer 400 and oversized bodies 413.
//
// # Basic Usage
//
//	eng, _ := engine.New(engine.Config{Providers: registry, Storage: backend})
//	srv := server.NewServer(&cfg.Server, eng, server.Options{
//	    Jobs:    store,
//	    Checker: checker,
//	    Metrics: collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Reloading
//
// SwapEngine installs a new engine atomically. Requests in flight finish on
// the engine they started with; the caller closes the old engine's
// providers and storage once it has been swapped out.
package server
