package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// Check reports whether one dependency is available.
type Check func(ctx context.Context) error

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness(c *router.Context) (*response.Response, error) {
	return c.Text("ALIVE")
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
func NoContent(c *router.Context) (*response.Response, error) {
	return c.SetResponse(response.NoContent()), nil
}

// Readiness verifies all service dependencies are functioning.
// Checks run concurrently with the request as their context. Returns "READY"
// if all pass, 503 Service Unavailable if any fails.
func Readiness(log *slog.Logger, checks ...Check) router.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}

	return func(c *router.Context) (*response.Response, error) {
		g, ctx := errgroup.WithContext(c)
		for _, check := range checks {
			g.Go(func() error { return check(ctx) })
		}

		if err := g.Wait(); err != nil {
			log.ErrorContext(c, "readiness check failed",
				logger.Component("health"),
				logger.Error(err),
			)
			return c.SetResponse(response.ErrServiceUnavailable.Response()), nil
		}

		return c.Text("READY")
	}
}
