package router_test

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

func TestMountPrefixing(t *testing.T) {
	t.Parallel()

	users := router.New()
	users.Get("/", text("list"))
	users.Get("/:id", func(c *router.Context) (*response.Response, error) {
		return c.Text("user " + c.Param("id"))
	})

	api := router.New()
	api.Mount("/users", users)

	app := router.New()
	app.Mount("/api", api)

	assert.Equal(t, "list", serve(t, app, http.MethodGet, "/api/users").Body.String())
	assert.Equal(t, "user 7", serve(t, app, http.MethodGet, "/api/users/7").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(t, app, http.MethodGet, "/users").Code)

	// The child still serves its own paths when used directly
	assert.Equal(t, "list", serve(t, users, http.MethodGet, "/").Body.String())
}

func TestMountAtRoot(t *testing.T) {
	t.Parallel()

	child := router.New()
	child.Get("/health", text("ok"))

	app := router.New()
	app.Mount("/", child)

	assert.Equal(t, "ok", serve(t, app, http.MethodGet, "/health").Body.String())
}

func TestMountedMiddlewareScope(t *testing.T) {
	t.Parallel()

	api := router.New()
	api.Use(trace("api"))
	api.Get("/data", traced)

	app := router.New()
	app.Use(trace("app"))
	app.Get("/home", traced)
	app.Mount("/api", api)

	var steps []string
	rec := serve(t, app, http.MethodGet, "/api/data")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"app>", "api>", "handler"}, steps)

	// The child's catch-all stays inside its mount prefix
	rec = serve(t, app, http.MethodGet, "/home")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"app>", "handler"}, steps)
}

func TestMountTieBreakByOrdinal(t *testing.T) {
	t.Parallel()

	child := router.New()
	child.Use(trace("child"), "/")
	child.Get("/", traced)

	app := router.New()
	app.Use(trace("parent"), "/api")
	app.Mount("/api", child)

	// Equal patterns: the parent registered first and wraps closer to the handler.
	var steps []string
	rec := serve(t, app, http.MethodGet, "/api")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"child>", "parent>", "handler"}, steps)
}

func TestOverlappingWildcardsAcrossMounts(t *testing.T) {
	t.Parallel()

	admin := router.New()
	admin.Use(trace("users"), "/users/*")
	admin.Get("/users/list", traced)
	admin.Get("/settings", traced)

	app := router.New()
	app.Use(trace("admin"), "/admin/*")
	app.Mount("/admin", admin)

	var steps []string
	rec := serve(t, app, http.MethodGet, "/admin/users/list")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"admin>", "users>", "handler"}, steps)

	rec = serve(t, app, http.MethodGet, "/admin/settings")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Equal(t, []string{"admin>", "handler"}, steps)
}

func TestMountSharedChild(t *testing.T) {
	t.Parallel()

	shared := router.New()
	shared.Get("/ping", text("pong"))

	app := router.New()
	app.Mount("/v1", shared)
	app.Mount("/v2", shared)

	assert.Equal(t, "pong", serve(t, app, http.MethodGet, "/v1/ping").Body.String())
	assert.Equal(t, "pong", serve(t, app, http.MethodGet, "/v2/ping").Body.String())
}

func TestMountErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil app", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithError(t, "cannot mount nil app on '/api'", func() {
			router.New().Mount("/api", nil)
		})
	})

	t.Run("self", func(t *testing.T) {
		t.Parallel()
		app := router.New()
		assert.Panics(t, func() { app.Mount("/self", app) })
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()
		a, b, c := router.New(), router.New(), router.New()
		a.Mount("/b", b)
		b.Mount("/c", c)

		defer func() {
			rec := recover()
			require.NotNil(t, rec)
			err, ok := rec.(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, router.ErrMountCycle)
		}()
		c.Mount("/a", a)
	})

	t.Run("wildcard prefix", func(t *testing.T) {
		t.Parallel()
		for _, prefix := range []string{"*", "/api/*"} {
			assert.Panics(t, func() { router.New().Mount(prefix, router.New()) }, prefix)
		}
	})
}

func TestMountCrossDuplicate(t *testing.T) {
	t.Parallel()

	child := router.New()
	child.Get("/users", text("child"))

	app := router.New()
	app.Get("/api/users", text("parent"))
	app.Mount("/api", child)

	// The parent's route is flattened first and wins
	assert.Equal(t, "parent", serve(t, app, http.MethodGet, "/api/users").Body.String())
	assert.Len(t, app.Routes(), 1)
}

func TestMountInvalidatesParent(t *testing.T) {
	t.Parallel()

	child := router.New()
	app := router.New()
	app.Mount("/api", child)

	assert.Equal(t, http.StatusNotFound, serve(t, app, http.MethodGet, "/api/late").Code)

	child.Get("/late", text("late"))
	assert.Equal(t, "late", serve(t, app, http.MethodGet, "/api/late").Body.String())
}

func TestConcurrentRequests(t *testing.T) {
	t.Parallel()

	app := router.New()
	app.Use(trace("all"))
	app.Get("/items/:id", func(c *router.Context) (*response.Response, error) {
		return c.Text(c.Param("id"))
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i%26))
			rec := serve(t, app, http.MethodGet, "/items/"+id)
			assert.Equal(t, id, rec.Body.String())
		}()
	}
	wg.Wait()
}

// panicError runs fn and returns the error it panicked with.
func panicError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		rec := recover()
		require.NotNil(t, rec, "expected a panic")
		e, ok := rec.(error)
		require.True(t, ok)
		err = e
	}()
	fn()
	return nil
}

func TestMountParamConflicts(t *testing.T) {
	t.Parallel()

	t.Run("rejected at mount", func(t *testing.T) {
		t.Parallel()
		app := router.New()
		app.Get("/", text("home"))
		child := router.New()
		child.Get("/posts/:id", text("post"))

		err := panicError(t, func() { app.Mount("/users/:id", child) })
		assert.ErrorIs(t, err, router.ErrInvalidMountPrefix)

		// The failed mount leaves the app untouched
		assert.Equal(t, "home", serve(t, app, http.MethodGet, "/").Body.String())
		assert.Len(t, app.Routes(), 1)
		require.NoError(t, app.Build())
	})

	t.Run("route added after mount", func(t *testing.T) {
		t.Parallel()
		app := router.New()
		child := router.New()
		app.Mount("/users/:id", child)

		err := child.Handle(http.MethodGet, "/posts/:id", text("post"))
		assert.ErrorIs(t, err, router.ErrInvalidRouteDefinition)
		assert.Empty(t, child.Routes())
		require.NoError(t, app.Build())
	})

	t.Run("route added below a grandparent", func(t *testing.T) {
		t.Parallel()
		app := router.New()
		mid := router.New()
		leaf := router.New()
		app.Mount("/orgs/:id", mid)
		mid.Mount("/teams", leaf)

		assert.Panics(t, func() { leaf.Get("/:id", text("team")) })
		require.NoError(t, app.Build())
	})

	t.Run("middleware added after mount", func(t *testing.T) {
		t.Parallel()
		app := router.New()
		child := router.New()
		child.Get("/posts", text("posts"))
		app.Mount("/users/:id", child)

		err := panicError(t, func() { child.Use(trace("mw"), "/posts/:id") })
		assert.ErrorIs(t, err, router.ErrInvalidMiddlewareDefinition)
		assert.Equal(t, "posts", serve(t, app, http.MethodGet, "/users/1/posts").Body.String())
	})
}
