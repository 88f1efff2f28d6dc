package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// LoggingConfig configures the request/response logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool

	// Logger is the slog logger to use (default: the app's logger)
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// LogRequest enables logging of request details (default: true)
	LogRequest bool

	// LogResponse enables logging of response details (default: true)
	LogResponse bool

	// LogRequestBody enables logging of request body (default: false for security)
	LogRequestBody bool

	// LogHeaders enables logging of request/response headers (default: false for security)
	LogHeaders bool

	// MaxBodyLogSize is the maximum size of body to log in bytes (default: 4KB)
	MaxBodyLogSize int

	// SensitiveHeaders is a list of header names to redact (default: common auth headers)
	SensitiveHeaders []string

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

// Logging creates a request/response logging middleware with default
// configuration, writing to the app's logger.
func Logging() router.MiddlewareFunc {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) router.MiddlewareFunc {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request/response logging middleware.
// Completion is logged at Error for 5xx and failed chains, Warn for 4xx and
// slow requests, and LogLevel otherwise.
func LoggingWithConfig(cfg LoggingConfig) router.MiddlewareFunc {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}

	// Default to logging request and response (but not bodies)
	if !cfg.LogRequest && !cfg.LogResponse {
		cfg.LogRequest = true
		cfg.LogResponse = true
	}

	if cfg.MaxBodyLogSize <= 0 {
		cfg.MaxBodyLogSize = 4 * 1024 // 4KB default
	}

	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"Authorization",
			"Cookie",
			"Set-Cookie",
			"X-Api-Key",
			"X-Auth-Token",
			"X-Csrf-Token",
		}
	}

	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		log := cfg.Logger
		if log == nil {
			log = c.Logger()
		}

		start := time.Now()
		req := c.Request()
		requestID, _ := GetRequestID(c)

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("request"),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
			logger.Route(c.Route().Path),
			logger.RemoteAddr(req.RemoteAddr),
			logger.RequestID(requestID),
			logger.Query(req.URL.RawQuery),
		}

		if cfg.LogRequestBody && req.Body != nil && req.Body != http.NoBody {
			body, _ := io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 {
				if len(body) > cfg.MaxBodyLogSize {
					body = body[:cfg.MaxBodyLogSize]
					attrs = append(attrs, slog.Bool("request_body_truncated", true))
				}
				attrs = append(attrs, slog.String("request_body", string(body)))
			}
		}

		if cfg.LogHeaders {
			if headers := redact(req.Header, cfg.SensitiveHeaders); len(headers) > 0 {
				attrs = append(attrs, slog.Any("request_headers", headers))
			}
		}

		if cfg.LogRequest {
			log.LogAttrs(c, cfg.LogLevel, "HTTP request started", attrs...)
		}

		resp, err := next(c)

		if !cfg.LogResponse {
			return resp, err
		}

		duration := time.Since(start)
		status := statusOf(c, resp, err)

		respAttrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("response"),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
			logger.Route(c.Route().Path),
			logger.StatusCode(status),
			logger.Duration(duration),
			logger.RequestID(requestID),
		}

		if out := outgoing(c, resp); out != nil {
			respAttrs = append(respAttrs, logger.BytesOut(len(out.Body)))
			if cfg.LogHeaders {
				if headers := redact(out.Header, cfg.SensitiveHeaders); len(headers) > 0 {
					respAttrs = append(respAttrs, slog.Any("response_headers", headers))
				}
			}
		}

		level := cfg.LogLevel
		switch {
		case err != nil || status >= http.StatusInternalServerError:
			level = slog.LevelError
			if err != nil {
				respAttrs = append(respAttrs, logger.Error(err))
			}
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case duration > cfg.SlowRequestThreshold:
			level = slog.LevelWarn
			respAttrs = append(respAttrs, slog.Bool("slow_request", true))
		}

		log.LogAttrs(c, level, "HTTP request completed", respAttrs...)
		return resp, err
	}
}

func redact(h http.Header, sensitive []string) map[string]any {
	headers := make(map[string]any, len(h))
	for key, values := range h {
		switch {
		case slices.Contains(sensitive, key):
			headers[key] = "[REDACTED]"
		case len(values) == 1:
			headers[key] = values[0]
		default:
			headers[key] = values
		}
	}
	return headers
}
