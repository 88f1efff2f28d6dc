package middleware

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// RequestIDKey is the context store key holding the request ID.
const RequestIDKey = "request_id"

// requestIDContextKey stores the request ID in the request's context.Context
// for code that only receives a context.
type requestIDContextKey struct{}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool
	// Generator creates new request IDs (default: UUID v7)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting determines whether to use an existing request ID from the incoming request
	UseExisting bool
}

// RequestID creates a request ID middleware with default configuration.
// It generates a new UUID v7 for each request and includes it in both the
// context and the response headers.
func RequestID() router.MiddlewareFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig creates a request ID middleware with custom configuration.
func RequestIDWithConfig(cfg RequestIDConfig) router.MiddlewareFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}

	if cfg.Generator == nil {
		cfg.Generator = UUIDv7Generator()
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		var requestID string
		if cfg.UseExisting {
			requestID = c.Request().Header.Get(cfg.HeaderName)
		}
		if requestID == "" {
			requestID = cfg.Generator()
		}

		c.Set(RequestIDKey, requestID)
		r := c.Request()
		c.SetRequest(r.WithContext(context.WithValue(r.Context(), requestIDContextKey{}, requestID)))

		resp, err := next(c)
		if out := outgoing(c, resp); out != nil {
			out.Header.Set(cfg.HeaderName, requestID)
		}
		return resp, err
	}
}

// GetRequestID retrieves the request ID stored by the middleware.
func GetRequestID(c *router.Context) (string, bool) {
	return router.Value[string](c, RequestIDKey)
}

// RequestIDFromContext retrieves the request ID from a plain context.Context,
// such as one derived from a router.Context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}

// UUIDv7Generator generates time-ordered UUID v7 request IDs.
func UUIDv7Generator() func() string {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// ULIDGenerator generates 26-character, lexicographically sortable ULIDs.
// IDs are monotonic within the same millisecond.
func ULIDGenerator() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
}
