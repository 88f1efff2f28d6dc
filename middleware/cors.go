package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// CORSConfig defines configuration options for CORS middleware.
type CORSConfig struct {
	// Skip allows bypassing CORS handling for specific requests
	Skip func(c *router.Context) bool

	// AllowOrigins specifies allowed origins. Use "*" for all origins.
	// If empty, defaults to allowing all origins ("*")
	AllowOrigins []string

	// AllowMethods specifies allowed HTTP methods.
	// If empty, defaults to GET, HEAD, PUT, PATCH, POST, DELETE
	AllowMethods []string

	// AllowHeaders specifies allowed request headers.
	// If empty, defaults to common headers including Authorization and Content-Type
	AllowHeaders []string

	// ExposeHeaders specifies which headers are exposed to the client
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials are allowed.
	// Never sent together with the wildcard origin.
	AllowCredentials bool

	// MaxAge specifies how long preflight requests can be cached (in seconds)
	MaxAge int

	// AllowOriginFunc provides custom origin validation logic and takes
	// precedence over AllowOrigins. Returns the origin to echo and whether
	// it is allowed.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS returns a CORS middleware with default configuration: all origins,
// common methods and standard headers.
//
// Preflight requests only reach the middleware when a route matches them, so
// register an OPTIONS route for the paths that accept cross-origin calls:
//
//	app.Use(middleware.CORS())
//	app.Options("/*", func(c *router.Context) (*response.Response, error) {
//		return response.NoContent(), nil
//	})
//
// The default wildcard origin is meant for development. Production
// applications should list exact origins with CORSWithConfig.
func CORS() router.MiddlewareFunc {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests are answered directly with 204, or 403 when the origin
// or the requested method is not allowed.
//
//	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
//		AllowOrigins:     []string{"https://myapp.com"},
//		AllowCredentials: true,
//		ExposeHeaders:    []string{"X-Request-ID"},
//		MaxAge:           86400,
//	}), "/api/*")
func CORSWithConfig(cfg CORSConfig) router.MiddlewareFunc {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}

	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	// O(1) origin lookup per request
	allowOriginsMap := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOriginsMap[origin] = true
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		req := c.Request()
		origin := req.Header.Get("Origin")

		var allowedOrigin string
		allowed := false

		// Origin validation priority: custom function > wildcard/empty > explicit list
		switch {
		case cfg.AllowOriginFunc != nil:
			allowedOrigin, allowed = cfg.AllowOriginFunc(origin)
		case len(cfg.AllowOrigins) == 0 || allowOriginsMap["*"]:
			allowedOrigin = "*"
			allowed = true
		case allowOriginsMap[origin]:
			allowedOrigin = origin
			allowed = true
		}

		// Preflight: OPTIONS method + Access-Control-Request-Method header
		if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
			requestMethod := req.Header.Get("Access-Control-Request-Method")
			if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
				return c.SetResponse(response.Status(http.StatusForbidden)), nil
			}

			resp := response.NoContent()
			h := resp.Header
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			if req.Header.Get("Access-Control-Request-Headers") != "" {
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			}
			// Credentials must not be combined with the wildcard origin
			if cfg.AllowCredentials && allowedOrigin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			return c.SetResponse(resp), nil
		}

		resp, err := next(c)
		if !allowed {
			return resp, err
		}

		if out := outgoing(c, resp); out != nil {
			h := out.Header
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			if cfg.AllowCredentials && allowedOrigin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposeHeaders != "" {
				h.Set("Access-Control-Expose-Headers", exposeHeaders)
			}
			h.Add("Vary", "Origin")
		}
		return resp, err
	}
}

// AllowOriginWildcard returns an AllowOriginFunc that allows any non-empty
// origin and echoes it back, which keeps credentials usable.
func AllowOriginWildcard() func(origin string) (string, bool) {
	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		return origin, true
	}
}

// AllowOriginSubdomain returns an AllowOriginFunc that allows the domain and
// all its subdomains, with or without a port. The domain is given without a
// scheme, e.g. "example.com".
func AllowOriginSubdomain(domain string) func(origin string) (string, bool) {
	domain = strings.TrimPrefix(domain, "*.")
	domain = strings.TrimPrefix(domain, ".")
	domain = strings.ToLower(domain)
	domainWithDot := "." + domain

	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}

		host := strings.ToLower(u.Hostname())
		if host == domain || strings.HasSuffix(host, domainWithDot) {
			return origin, true
		}
		return "", false
	}
}
