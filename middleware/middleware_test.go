package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/middleware"
)

// literal returns a response built without a Header map.
func literal(body string) router.HandlerFunc {
	return func(c *router.Context) (*response.Response, error) {
		return &response.Response{Status: http.StatusOK, Body: []byte(body)}, nil
	}
}

func TestMiddlewaresDecorateResponsesWithoutHeaderMap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("header-less body ", 200)

	tests := []struct {
		name   string
		mw     router.MiddlewareFunc
		body   string
		header string
	}{
		{"cors", middleware.CORS(), "ok", "Access-Control-Allow-Origin"},
		{"request id", middleware.RequestID(), "ok", "X-Request-ID"},
		{"security headers", middleware.SecurityHeaders(), "ok", "X-Content-Type-Options"},
		{"client ip", middleware.ClientIPWithConfig(middleware.ClientIPConfig{StoreInHeader: true}), "ok", "X-Client-IP"},
		{"compress", middleware.Compress(), long, "Content-Encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := router.New()
			app.Use(tt.mw)
			app.Get("/", literal(tt.body))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "https://example.com")
			req.Header.Set("Accept-Encoding", "gzip")
			req.RemoteAddr = "192.0.2.1:1234"
			w := do(t, app, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get(tt.header))
		})
	}
}

func TestLoggingAcceptsResponseWithoutHeaderMap(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Use(middleware.Logging())
	app.Get("/", literal("ok"))

	w := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
