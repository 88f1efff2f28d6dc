// Package response provides the Response value produced by route handlers and
// the builders used to create it.
//
// A Response is plain data: a status code, headers and a body. Middlewares can
// inspect and decorate it after calling the next handler, and the router renders
// it to the http.ResponseWriter once the whole chain has finished.
//
// # Builders
//
//	response.JSON(map[string]string{"message": "Hello"})          // 200 application/json
//	response.Text("pong", response.WithStatus(http.StatusAccepted)) // 202 text/plain
//	response.Redirect("/login", 0)                                // 302 Found
//	response.NotFound()                                           // 404 text/plain
//	response.Error("Unauthorized", http.StatusUnauthorized, nil)  // 401 JSON error envelope
//
// Error responses share one envelope:
//
//	{"error": {"message": "Unauthorized", "status": 401}}
//
// Details passed to Error are merged into the "error" object.
//
// # Typed errors
//
// HTTPError values can be returned as errors from handlers. The router uses
// their StatusCode when it has to synthesize an error response:
//
//	return nil, response.ErrForbidden.WithMessage("admins only")
package response
