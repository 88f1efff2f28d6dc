package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool

	// Registerer receives the collectors (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer

	// Namespace prefixes metric names (default: "relay")
	Namespace string

	// Buckets for the duration histogram in seconds (default: prometheus.DefBuckets)
	Buckets []float64
}

// Metrics creates a metrics middleware registering its collectors with reg.
//
// Two collectors are exported, labelled by method, route pattern and status:
//
//	relay_http_requests_total
//	relay_http_request_duration_seconds
//
// Labelling by the route pattern instead of the raw path keeps cardinality
// bounded.
func Metrics(reg prometheus.Registerer) router.MiddlewareFunc {
	return MetricsWithConfig(MetricsConfig{Registerer: reg})
}

// MetricsWithConfig creates a metrics middleware with custom configuration.
// Collectors already registered under the same names are reused, so several
// apps can share one registry.
func MetricsWithConfig(cfg MetricsConfig) router.MiddlewareFunc {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "relay"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	labels := []string{"method", "route", "status"}

	requests := register(cfg.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests handled, by route and status.",
	}, labels))

	duration := register(cfg.Registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent in the middleware chain, by route and status.",
		Buckets:   cfg.Buckets,
	}, labels))

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		start := time.Now()
		resp, err := next(c)

		route := c.Route()
		values := []string{route.Method, route.Path, strconv.Itoa(statusOf(c, resp, err))}
		requests.WithLabelValues(values...).Inc()
		duration.WithLabelValues(values...).Observe(time.Since(start).Seconds())

		return resp, err
	}
}

// MetricsHandler exposes the metrics gathered by g in the Prometheus text
// format. Serve it next to the app, e.g. on a separate ServeMux path.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// register adds c to reg, returning the existing collector when one with the
// same descriptor is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
