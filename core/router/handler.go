package router

import "github.com/dmitrymomot/relay/core/response"

// HandlerFunc handles a request that matched a route. Returning an error (or
// panicking) hands the request to the app's failure handling.
type HandlerFunc func(c *Context) (*response.Response, error)

// MiddlewareFunc wraps route execution. It calls next to continue the chain or
// returns without calling it to short-circuit.
type MiddlewareFunc func(c *Context, next HandlerFunc) (*response.Response, error)

// RouteInfo describes a registered route with its absolute path.
type RouteInfo struct {
	Method string
	Path   string
}

// compose folds middlewares around h. The first middleware becomes the
// innermost wrapper and the last one the outermost.
func compose(h HandlerFunc, mws []MiddlewareFunc) HandlerFunc {
	for _, mw := range mws {
		h = wrap(mw, h)
	}
	return h
}

func wrap(mw MiddlewareFunc, next HandlerFunc) HandlerFunc {
	return func(c *Context) (*response.Response, error) {
		return mw(c, next)
	}
}
