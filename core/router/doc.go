// Package router provides an HTTP application type that maps requests to route
// handlers wrapped in path-scoped middlewares, with support for mounting
// sub-applications under path prefixes.
//
// # Features
//
//   - Static, parameterized (":id") and wildcard ("*") route patterns
//   - Middlewares scoped by path pattern and ordered by specificity
//   - Mounting of applications into applications, recursively
//   - Dispatch table built once and looked up per request
//   - Guaranteed response: handler errors and panics become 500 responses
//   - Compatible with the standard http.Handler interface
//
// # Basic Usage
//
//	app := router.New()
//
//	app.Get("/", func(c *router.Context) (*response.Response, error) {
//		return c.JSON(map[string]string{"message": "Hello"})
//	})
//
//	app.Get("/users/:id", func(c *router.Context) (*response.Response, error) {
//		return c.JSON(map[string]string{"userId": c.Param("id")})
//	})
//
//	http.ListenAndServe(":8080", app)
//
// # Middlewares
//
// A middleware is registered for one or more path patterns and applies to every
// route whose path equals the pattern or continues it with more segments.
// Without patterns it applies everywhere ("*"):
//
//	app.Use(logRequests)                 // every route
//	app.Use(requireAuth, "/api/*")       // /api and everything below it
//	app.Use(audit, "/admin", "/billing") // one entry per pattern
//
// When several middlewares apply to a route they are ordered by specificity.
// The least specific runs first and sees the response last; the most specific
// runs closest to the route handler:
//
//	"*"  ->  "/api/*"  ->  "/api/users/:id"  ->  handler
//
// Specificity compares, in order: the catch-all "*" last, fewer wildcards,
// fewer parameters, more segments, longer pattern, earlier registration.
//
// A middleware short-circuits by returning without calling next:
//
//	func requireAuth(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
//		if c.Request().Header.Get("Authorization") == "" {
//			return c.Error("Unauthorized", http.StatusUnauthorized, nil)
//		}
//		return next(c)
//	}
//
// # Mounting
//
// Mount attaches another application under a prefix. Its routes and middlewares
// are rewritten to absolute paths when the dispatch table is built:
//
//	api := router.New()
//	api.Get("/users", listUsers)
//
//	app.Mount("/api", api) // GET /api/users
//
// When two patterns are otherwise equally specific, the one registered earlier
// wraps closer to the handler. A parent's own middlewares count as registered
// before those of every application mounted into it.
//
// Mounting an application into itself or into one of its descendants panics
// with ErrMountCycle; the same application can be mounted under several
// prefixes.
//
// # Responses and errors
//
// Response builders on Context record the response and return it, so handlers
// can return them directly. When the chain returns an error or panics, the
// recorded response is used if there is one; otherwise a JSON 500 response
// carrying the error message is produced. Disable message exposure with
// WithErrorExposure(false). When a chain finishes without any response the
// result is a 500 "No response set".
//
// Requests that match no route get a plain-text 404 "Not found".
//
// # Concurrency
//
// Register routes, middlewares and mounts before serving traffic. The dispatch
// table is built lazily on first use, or eagerly with Build, and is read without
// locks afterwards. Every request gets its own Context.
package router
