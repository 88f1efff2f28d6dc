package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/middleware"
)

func TestSecurityHeadersPresets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mw         router.MiddlewareFunc
		frame      string
		hsts       bool
		crossEmbed string
	}{
		{"balanced", middleware.SecurityHeaders(), "SAMEORIGIN", true, ""},
		{"strict", middleware.SecurityHeadersStrict(), "DENY", true, "require-corp"},
		{"relaxed", middleware.SecurityHeadersRelaxed(), "", false, ""},
		{"development", middleware.SecurityHeadersWithConfig(middleware.DevelopmentSecurity), "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := router.New()
			app.Use(tt.mw)
			app.Get("/", ok)

			w := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, tt.frame, w.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.hsts, w.Header().Get("Strict-Transport-Security") != "")
			assert.Equal(t, tt.crossEmbed, w.Header().Get("Cross-Origin-Embedder-Policy"))
		})
	}
}

func TestSecurityHeadersCustomAndDevelopment(t *testing.T) {
	t.Parallel()

	cfg := middleware.StrictSecurity
	cfg.IsDevelopment = true
	cfg.CustomHeaders = map[string]string{"X-Frame-Options": "SAMEORIGIN", "X-Powered-By": "relay"}

	app := router.New()
	app.Use(middleware.SecurityHeadersWithConfig(cfg))
	app.Get("/", ok)

	w := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "relay", w.Header().Get("X-Powered-By"))
}
