// Package health provides router handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	app.Get("/health/live", health.Liveness)
//	app.Get("/health/ready", health.Readiness(log, db.PingContext, cache.Ping))
//	app.Get("/ping", health.NoContent)
//
// Dependency checks follow the func(context.Context) error signature.
package health
