// Package server provides an HTTP server with graceful shutdown, configurable
// timeouts and optional TLS. It wraps the standard http.Server and is meant to
// serve a router.App, alone or behind an http.ServeMux.
//
// # Basic Usage
//
//	app := router.New()
//	app.Get("/", handler)
//
//	if err := server.Run(ctx, ":8080", app); err != nil {
//		log.Fatal(err)
//	}
//
// # Configuration
//
// NewFromEnv reads Config from the environment (and .env) with core/config;
// NewFromConfig takes an explicit one. Negative timeouts or a header timeout
// longer than the read timeout are rejected with ErrInvalidConfig.
//
//	srv, err := server.NewFromEnv(server.WithLogger(log))
//
// TLS is enabled when both SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE are
// set, or with WithTLS.
//
// # Lifecycle
//
// Run returns a function suited to errgroup. The server shuts down gracefully
// when the group's context is canceled:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, app))
//	if err := g.Wait(); err != nil {
//		log.Fatal(err)
//	}
//
// Start and Stop give finer control. Starting a running server returns
// ErrServerAlreadyRunning; stopping a stopped one is a no-op.
//
// # Server Defaults
//
//   - ReadHeaderTimeout: 5 seconds
//   - ReadTimeout: 15 seconds
//   - WriteTimeout: 15 seconds
//   - IdleTimeout: 60 seconds
//   - MaxHeaderBytes: 1MB
//   - Graceful shutdown timeout: 30 seconds
//   - Logger: discards everything
package server
