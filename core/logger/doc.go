// Package logger provides structured logging helpers built on log/slog.
//
// New builds a *slog.Logger from functional options with presets for
// development (text, debug) and production (JSON, info):
//
//	log := logger.New(logger.WithDevelopment("relay-demo"))
//	log.Info("server starting", logger.Component("server"), logger.Addr(":8080"))
//
// The attribute helpers return an empty slog.Attr for zero inputs, so they can be
// passed unconditionally:
//
//	log.Error("handler failed", logger.Error(err), logger.RequestID(id))
//
// Nop returns a logger that discards everything. The router uses it when no
// logger is configured.
package logger
