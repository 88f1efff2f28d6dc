// Package middleware provides router.MiddlewareFunc implementations for common
// cross-cutting concerns: CORS, request IDs, request logging, body limits,
// client IP extraction, security headers, response compression and Prometheus
// metrics.
//
// # Architecture
//
// All middleware functions follow a consistent pattern:
//   - A default constructor for the common case
//   - A WithConfig constructor taking a configuration struct
//   - A Skip function in every config to bypass the middleware per request
//   - Context helpers for retrieving stored values
//
// Middlewares wrap the rest of the chain. Work done before calling next sees
// the request; work done after sees the response. Headers are written to the
// recorded response when there is one, otherwise to the returned response, so
// they survive short-circuits by inner middlewares.
//
//	app := router.New()
//	app.Use(middleware.RequestID())
//	app.Use(middleware.Logging())
//	app.Use(middleware.CORS())
//	app.Use(middleware.BodyLimitWithSize(middleware.MB), "/api")
//
// Middlewares registered on "*" run outermost. Scoped ones run closer to the
// handler as their pattern becomes more specific.
//
// # CORS
//
// CORSWithConfig answers preflight requests itself and decorates every other
// response. Preflights only reach the middleware when an OPTIONS route matches
// the path, usually app.Options("/*", ...).
//
//	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
//		AllowOrigins:     []string{"https://app.example.com"},
//		AllowCredentials: true,
//		MaxAge:           3600,
//	}))
//
// # Request ID
//
// RequestID assigns a UUIDv7 to every request, stores it in the context store
// and in the request's context.Context, and echoes it in X-Request-ID.
// ULIDGenerator provides sortable ULIDs instead.
//
//	id := middleware.GetRequestID(c)
//	id = middleware.RequestIDFromContext(ctx)
//
// # Logging
//
// Logging writes one structured record when the request starts and one when it
// completes. Server errors log at Error, client errors and slow requests at
// Warn. Sensitive headers are redacted.
//
// # Body Limit
//
// BodyLimit rejects requests whose Content-Length exceeds the limit with 413
// and caps reads of the body, which then fail with ErrBodyTooLarge.
//
// # Client IP
//
// ClientIP resolves the client address from proxy headers and RemoteAddr and
// stores it for GetClientIP. RealIP is usable without the middleware.
//
// # Security Headers
//
// SecurityHeaders applies BalancedSecurity. StrictSecurity, RelaxedSecurity and
// DevelopmentSecurity are ready-made presets for SecurityHeadersWithConfig.
//
// # Compression
//
// Compress encodes response bodies with brotli or gzip depending on the
// client's Accept-Encoding. Small bodies and already compressed content types
// are left alone.
//
// # Metrics
//
// Metrics counts requests and observes their duration, labelled by route
// pattern. Serve MetricsHandler beside the app:
//
//	reg := prometheus.NewRegistry()
//	app.Use(middleware.Metrics(reg))
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", middleware.MetricsHandler(reg))
//	mux.Handle("/", app)
package middleware
