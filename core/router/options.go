package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/relay/core/response"
)

// Option configures an App during creation.
type Option func(*App)

// WithLogger sets the logger used for handler failures and panics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithErrorExposure controls whether messages of unexpected errors are included
// in synthesized 5xx responses. Enabled by default.
func WithErrorExposure(expose bool) Option {
	return func(a *App) {
		a.exposeErrors = expose
	}
}

// WithNotFound sets the response factory used when no route matches.
func WithNotFound(fn func(r *http.Request) *response.Response) Option {
	return func(a *App) {
		if fn != nil {
			a.notFound = fn
		}
	}
}

// Config holds app settings loadable from the environment.
type Config struct {
	ExposeErrors bool `env:"ROUTER_EXPOSE_ERRORS" envDefault:"true"`
}

// NewFromConfig creates an App from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, opts ...Option) *App {
	return New(append([]Option{WithErrorExposure(cfg.ExposeErrors)}, opts...)...)
}
