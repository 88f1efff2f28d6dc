package middleware

import (
	"fmt"
	"io"
	"mime"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// Common size constants for convenience
const (
	// KB represents 1 kilobyte
	KB int64 = 1024
	// MB represents 1 megabyte
	MB = 1024 * KB
	// GB represents 1 gigabyte
	GB = 1024 * MB
)

// ErrBodyTooLarge is returned by the request body reader once the limit is exceeded.
var ErrBodyTooLarge = response.ErrRequestEntityTooLarge

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 4MB)
	MaxSize int64

	// ContentTypeLimit allows setting different limits per content type
	// Example: {"application/json": 1MB, "multipart/form-data": 10MB}
	ContentTypeLimit map[string]int64

	// ErrorHandler builds the response for requests whose Content-Length
	// exceeds the limit
	ErrorHandler func(c *router.Context, contentLength, maxSize int64) (*response.Response, error)

	// DisableContentLengthCheck skips the Content-Length header check
	// and only enforces the limit during body reading
	DisableContentLengthCheck bool
}

// BodyLimit creates a body limit middleware with the default 4MB limit.
func BodyLimit() router.MiddlewareFunc {
	return BodyLimitWithConfig(BodyLimitConfig{})
}

// BodyLimitWithSize creates a body limit middleware with a specified size limit.
func BodyLimitWithSize(maxSize int64) router.MiddlewareFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig creates a body limit middleware with custom configuration.
// Declared oversized bodies are rejected with 413 before the handler runs;
// bodies without a trustworthy Content-Length fail with ErrBodyTooLarge when
// read past the limit.
func BodyLimitWithConfig(cfg BodyLimitConfig) router.MiddlewareFunc {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 4 * MB
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *router.Context, contentLength, maxSize int64) (*response.Response, error) {
			message := fmt.Sprintf("Request body too large. Maximum allowed: %s", formatBytes(maxSize))
			details := map[string]any{"limit": maxSize}
			if contentLength > 0 {
				message = fmt.Sprintf("Request body too large. Size: %s, Maximum allowed: %s",
					formatBytes(contentLength), formatBytes(maxSize))
				details["size"] = contentLength
			}
			return c.SetResponse(response.ErrRequestEntityTooLarge.WithMessage(message).WithDetails(details).Response()), nil
		}
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		req := c.Request()

		maxSize := cfg.MaxSize
		if cfg.ContentTypeLimit != nil {
			if mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err == nil {
				if limit, ok := cfg.ContentTypeLimit[mediaType]; ok {
					maxSize = limit
				}
			}
		}

		if !cfg.DisableContentLengthCheck && req.ContentLength > maxSize {
			return cfg.ErrorHandler(c, req.ContentLength, maxSize)
		}

		if req.Body != nil {
			req.Body = &limitedReader{reader: req.Body, limit: maxSize}
		}

		return next(c)
	}
}

// limitedReader wraps an io.ReadCloser to enforce a size limit.
type limitedReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

// Read implements io.Reader. It reads at most one byte past the limit to tell
// a body of exactly limit bytes from a larger one.
func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.read > lr.limit {
		return 0, ErrBodyTooLarge
	}

	if remaining := lr.limit - lr.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := lr.reader.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n - int(lr.read-lr.limit), ErrBodyTooLarge
	}
	return n, err
}

// Close implements io.Closer.
func (lr *limitedReader) Close() error {
	return lr.reader.Close()
}

// formatBytes formats bytes into a human-readable string
func formatBytes(bytes int64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
