package router_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func text(body string) router.HandlerFunc {
	return func(c *router.Context) (*response.Response, error) {
		return c.Text(body)
	}
}

// trace returns a middleware that appends before/after markers to the
// "trace" value in the context store.
func trace(name string) router.MiddlewareFunc {
	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		steps, _ := router.Value[[]string](c, "trace")
		c.Set("trace", append(steps, name+">"))
		resp, err := next(c)
		steps, _ = router.Value[[]string](c, "trace")
		c.Set("trace", append(steps, "<"+name))
		return resp, err
	}
}

func traced(c *router.Context) (*response.Response, error) {
	steps, _ := router.Value[[]string](c, "trace")
	steps = append(steps, "handler")
	c.Set("trace", steps)
	return c.JSON(steps)
}

func TestHelloJSON(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		return c.JSON(map[string]string{"message": "Hello"})
	})

	rec := serve(t, app, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Hello"}`, rec.Body.String())
}

func TestPathParams(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/users/:id", func(c *router.Context) (*response.Response, error) {
		return c.JSON(map[string]string{"userId": c.Param("id")})
	})
	app.Get("/files/*", func(c *router.Context) (*response.Response, error) {
		return c.Text(c.Param("*"))
	})

	rec := serve(t, app, http.MethodGet, "/users/42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"42"}`, rec.Body.String())

	rec = serve(t, app, http.MethodGet, "/users/john%20doe")
	assert.JSONEq(t, `{"userId":"john doe"}`, rec.Body.String())

	rec = serve(t, app, http.MethodGet, "/files/docs/a.txt")
	assert.Equal(t, "docs/a.txt", rec.Body.String())
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/users", text("users"))

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"unknown path", http.MethodGet, "/unknown"},
		{"unknown method", http.MethodPost, "/users"},
		{"partial match", http.MethodGet, "/users/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, app, tt.method, tt.target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Not found", rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestCustomNotFound(t *testing.T) {
	t.Parallel()

	app := router.New(router.WithNotFound(func(r *http.Request) *response.Response {
		return response.Error("no route for "+r.URL.Path, http.StatusNotFound, nil)
	}))

	rec := serve(t, app, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no route for /missing")
}

func TestPathNormalization(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("users/", text("users"))

	for _, target := range []string{"/users", "/users/", "//users"} {
		rec := serve(t, app, http.MethodGet, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestHead(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Head("/ping", func(c *router.Context) (*response.Response, error) {
		return response.NoContent(), nil
	})

	rec := serve(t, app, http.MethodHead, "/ping")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouteUniqueness(t *testing.T) {
	t.Parallel()

	app := router.New()
	require.NoError(t, app.Handle(http.MethodGet, "/users", text("a")))

	err := app.Handle("get", "/users/", text("b"))
	require.ErrorIs(t, err, router.ErrDuplicateRoute)

	// Different method on the same path is allowed
	require.NoError(t, app.Handle(http.MethodPost, "/users", text("c")))

	assert.PanicsWithError(t, "duplicate route: POST /users", func() {
		app.Post("/users", text("d"))
	})
}

func TestInvalidRouteDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		h      router.HandlerFunc
	}{
		{"unknown method", "FETCH", "/", text("x")},
		{"empty path", http.MethodGet, "", text("x")},
		{"nil handler", http.MethodGet, "/", nil},
		{"duplicate param", http.MethodGet, "/a/:id/:id", text("x")},
		{"empty param name", http.MethodGet, "/a/:", text("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := router.New().Handle(tt.method, tt.path, tt.h)
			assert.ErrorIs(t, err, router.ErrInvalidRouteDefinition)
		})
	}
}

func TestInvalidMiddlewareDefinition(t *testing.T) {
	t.Parallel()

	app := router.New()
	assert.Panics(t, func() { app.Use(nil) })
	assert.Panics(t, func() { app.Use(trace("a"), "") })
	assert.Panics(t, func() { app.Use(trace("a"), "/a/b*") })
}

func TestMiddlewareOnionOrder(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Use(trace("users"), "/users/*")
	app.Use(trace("global"))
	app.Get("/users/:id", traced)

	rec := serve(t, app, http.MethodGet, "/users/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var steps []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"global>", "users>", "handler"}, steps)
}

func TestMiddlewareSpecificityOrder(t *testing.T) {
	t.Parallel()

	app := router.New()
	// Registered from most to least specific on purpose; order must not
	// depend on registration.
	app.Use(trace("exact"), "/admin/users/list")
	app.Use(trace("param"), "/admin/users/:id")
	app.Use(trace("users"), "/admin/users/*")
	app.Use(trace("admin"), "/admin/*")
	app.Use(trace("all"), "*")
	app.Get("/admin/users/list", traced)

	rec := serve(t, app, http.MethodGet, "/admin/users/list")
	var steps []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"all>", "admin>", "users>", "param>", "exact>", "handler"}, steps)
}

func TestMiddlewareAfterNext(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) router.MiddlewareFunc {
		return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
			order = append(order, name+">")
			resp, err := next(c)
			order = append(order, "<"+name)
			return resp, err
		}
	}

	app := router.New()
	app.Use(mw("outer"))
	app.Use(mw("inner"), "/users/*")
	app.Get("/users/1", func(c *router.Context) (*response.Response, error) {
		order = append(order, "handler")
		return c.Text("ok")
	})

	serve(t, app, http.MethodGet, "/users/1")
	assert.Equal(t, []string{"outer>", "inner>", "handler", "<inner", "<outer"}, order)
}

func TestMiddlewarePrefixScope(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		resp, err := next(c)
		if resp != nil {
			resp.Header.Set("X-Scoped", "yes")
		}
		return resp, err
	}, "/api")
	app.Get("/api", text("root"))
	app.Get("/api/users", text("users"))
	app.Get("/apix", text("other"))
	app.Get("/", text("home"))

	assert.Equal(t, "yes", serve(t, app, http.MethodGet, "/api").Header().Get("X-Scoped"))
	assert.Equal(t, "yes", serve(t, app, http.MethodGet, "/api/users").Header().Get("X-Scoped"))
	assert.Empty(t, serve(t, app, http.MethodGet, "/apix").Header().Get("X-Scoped"))
	assert.Empty(t, serve(t, app, http.MethodGet, "/").Header().Get("X-Scoped"))
}

func TestRootMiddlewareMatchesOnlyRoot(t *testing.T) {
	t.Parallel()

	var hits []string
	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		hits = append(hits, c.Route().Path)
		return next(c)
	}, "/")
	app.Get("/", text("home"))
	app.Get("/about", text("about"))

	serve(t, app, http.MethodGet, "/")
	serve(t, app, http.MethodGet, "/about")
	assert.Equal(t, []string{"/"}, hits)
}

func TestMultiplePathsSharedMiddleware(t *testing.T) {
	t.Parallel()

	var calls int
	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		calls++
		return next(c)
	}, "/a", "/b")
	app.Get("/a", text("a"))
	app.Get("/b", text("b"))
	app.Get("/c", text("c"))

	serve(t, app, http.MethodGet, "/a")
	serve(t, app, http.MethodGet, "/b")
	serve(t, app, http.MethodGet, "/c")
	assert.Equal(t, 2, calls)
}

func TestAuthShortCircuit(t *testing.T) {
	t.Parallel()

	var reached bool
	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if c.Request().Header.Get("Authorization") == "" {
			return c.Error("Unauthorized", http.StatusUnauthorized, nil)
		}
		return next(c)
	}, "/api/*")
	app.Get("/api/data", func(c *router.Context) (*response.Response, error) {
		reached = true
		return c.JSON(map[string]int{"n": 1})
	})
	app.Get("/public", text("public"))

	rec := serve(t, app, http.MethodGet, "/api/data")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"Unauthorized","status":401}}`, rec.Body.String())
	assert.False(t, reached)

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)

	assert.Equal(t, http.StatusOK, serve(t, app, http.MethodGet, "/public").Code)
}

func TestDynamicRoutePriority(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/files/*", text("wildcard"))
	app.Get("/files/:name", text("param"))
	app.Get("/files/readme", text("static"))

	assert.Equal(t, "static", serve(t, app, http.MethodGet, "/files/readme").Body.String())
	assert.Equal(t, "param", serve(t, app, http.MethodGet, "/files/a.txt").Body.String())
	assert.Equal(t, "wildcard", serve(t, app, http.MethodGet, "/files/a/b").Body.String())
}

func TestHandlerErrors(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/fail", func(c *router.Context) (*response.Response, error) {
		return nil, errors.New("database is down")
	})
	app.Get("/http-error", func(c *router.Context) (*response.Response, error) {
		return nil, response.ErrForbidden.WithMessage("not yours")
	})
	app.Get("/panic", func(c *router.Context) (*response.Response, error) {
		panic("boom")
	})
	app.Get("/empty", func(c *router.Context) (*response.Response, error) {
		return nil, nil
	})

	rec := serve(t, app, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"database is down","status":500}}`, rec.Body.String())

	rec = serve(t, app, http.MethodGet, "/http-error")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not yours")

	rec = serve(t, app, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: boom")

	rec = serve(t, app, http.MethodGet, "/empty")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No response set")
}

func TestErrorRedaction(t *testing.T) {
	t.Parallel()

	app := router.New(router.WithErrorExposure(false))
	app.Get("/fail", func(c *router.Context) (*response.Response, error) {
		return nil, errors.New("secret connection string")
	})
	app.Get("/conflict", func(c *router.Context) (*response.Response, error) {
		return nil, response.ErrConflict
	})

	rec := serve(t, app, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "Internal Server Error")

	rec = serve(t, app, http.MethodGet, "/conflict")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestErrorRedactionOfHTTPErrors(t *testing.T) {
	t.Parallel()

	register := func(app *router.App) *router.App {
		app.Get("/internal", func(c *router.Context) (*response.Response, error) {
			return nil, response.ErrInternalServerError.
				WithMessage("dsn postgres://admin:secret@db").
				WithDetails(map[string]any{"host": "db"})
		})
		app.Get("/unavailable", func(c *router.Context) (*response.Response, error) {
			return nil, fmt.Errorf("cache: %w", response.ErrServiceUnavailable.WithMessage("redis secret down"))
		})
		app.Get("/forbidden", func(c *router.Context) (*response.Response, error) {
			return nil, response.ErrForbidden.WithMessage("admins only")
		})
		return app
	}

	hidden := register(router.New(router.WithErrorExposure(false)))

	rec := serve(t, hidden, http.MethodGet, "/internal")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "host")
	assert.JSONEq(t, `{"error":{"message":"Internal Server Error","status":500}}`, rec.Body.String())

	rec = serve(t, hidden, http.MethodGet, "/unavailable")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	// Client errors keep their message
	rec = serve(t, hidden, http.MethodGet, "/forbidden")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admins only")

	exposed := register(router.New())
	rec = serve(t, exposed, http.MethodGet, "/internal")
	assert.Contains(t, rec.Body.String(), "postgres://admin:secret@db")
	assert.Contains(t, rec.Body.String(), `"host":"db"`)
}

func TestRecordedResponseWinsOnError(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		resp, err := next(c)
		if err != nil {
			c.Error("handled: "+err.Error(), http.StatusBadGateway, nil)
			return nil, err
		}
		return resp, nil
	})
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		return nil, errors.New("upstream")
	})

	rec := serve(t, app, http.MethodGet, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "handled: upstream")
}

func TestRecordedResponseWinsOverReturned(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		c.Text("recorded")
		return response.Text("returned"), nil
	})

	assert.Equal(t, "recorded", serve(t, app, http.MethodGet, "/").Body.String())
}

func TestPanicSkipsMiddlewareTail(t *testing.T) {
	t.Parallel()

	var captured error
	app := router.New()
	app.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		resp, err := next(c)
		captured = err
		return resp, err
	})
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		panic(errors.New("wrapped"))
	})

	// Panics unwind through middlewares and are recovered at dispatch.
	rec := serve(t, app, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, captured)
}

func TestFetch(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/ping", text("pong"))

	resp := app.Fetch(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "pong", string(resp.Body))

	resp = app.Fetch(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestLazyRebuild(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Get("/a", text("a"))
	assert.Equal(t, http.StatusNotFound, serve(t, app, http.MethodGet, "/b").Code)

	app.Get("/b", text("b"))
	assert.Equal(t, http.StatusOK, serve(t, app, http.MethodGet, "/b").Code)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	api := router.New()
	api.Get("/users", text("users"))

	app := router.New()
	app.Get("/", text("home"))
	app.Mount("/api", api)

	assert.Equal(t, []router.RouteInfo{
		{Method: http.MethodGet, Path: "/"},
		{Method: http.MethodGet, Path: "/api/users"},
	}, app.Routes())
	require.NoError(t, app.Build())
}

func TestConfig(t *testing.T) {
	t.Parallel()

	app := router.NewFromConfig(router.Config{ExposeErrors: false})
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		return nil, errors.New("hidden")
	})

	rec := serve(t, app, http.MethodGet, "/")
	assert.False(t, strings.Contains(rec.Body.String(), "hidden"))
}
