package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// ClientIPKey is the context store key holding the client IP.
const ClientIPKey = "client_ip"

// ClientIPConfig configures the client IP extraction middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool
	// HeaderName specifies the response header name for the client IP (default: "X-Client-IP")
	HeaderName string
	// StoreInHeader determines whether to include the IP in response headers
	StoreInHeader bool
	// ValidateFunc rejects requests with 403 Forbidden when it returns an error
	ValidateFunc func(c *router.Context, ip string) error
}

// ClientIP creates a client IP extraction middleware that stores the IP in
// the context store.
func ClientIP() router.MiddlewareFunc {
	return ClientIPWithConfig(ClientIPConfig{})
}

// ClientIPWithConfig creates a client IP extraction middleware with custom
// configuration. Headers are checked in order: CF-Connecting-IP,
// DO-Connecting-IP, X-Forwarded-For (leftmost), X-Real-IP, then RemoteAddr.
func ClientIPWithConfig(cfg ClientIPConfig) router.MiddlewareFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		ip := RealIP(c.Request())
		c.Set(ClientIPKey, ip)

		if cfg.ValidateFunc != nil {
			if err := cfg.ValidateFunc(c, ip); err != nil {
				return c.SetResponse(response.ErrForbidden.WithMessage(err.Error()).Response()), nil
			}
		}

		resp, err := next(c)
		if cfg.StoreInHeader {
			if out := outgoing(c, resp); out != nil {
				out.Header.Set(cfg.HeaderName, ip)
			}
		}
		return resp, err
	}
}

// GetClientIP retrieves the client IP stored by the middleware.
func GetClientIP(c *router.Context) (string, bool) {
	return router.Value[string](c, ClientIPKey)
}

// RealIP extracts the client IP from proxy headers, falling back to
// RemoteAddr. It returns an empty string when nothing valid is found.
func RealIP(r *http.Request) string {
	for _, header := range []string{"CF-Connecting-IP", "DO-Connecting-IP"} {
		if ip := parseIP(r.Header.Get(header)); ip != "" {
			return ip
		}
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return parseIP(host)
}

func parseIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || addr.IsUnspecified() {
		return ""
	}
	return addr.Unmap().String()
}
