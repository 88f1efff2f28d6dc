package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/relay/core/binder"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/pathmatch"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/validator"
)

// Context carries one request through the middleware chain. It is created
// fresh for every request and must not be retained after the chain returns.
//
// Context implements context.Context by delegating to the request's context,
// so it can be passed directly to blocking calls.
type Context struct {
	r      *http.Request
	params pathmatch.Params
	route  RouteInfo
	store  map[string]any
	resp   *response.Response

	owner *App
	root  *App

	parsed    map[string]any
	parseDone bool
}

func newContext(r *http.Request, params pathmatch.Params, e *endpoint, root *App) *Context {
	return &Context{
		r:      r,
		params: params,
		route:  e.info,
		owner:  e.owner,
		root:   root,
	}
}

// Deadline delegates to the request context.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done delegates to the request context.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err delegates to the request context.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value delegates to the request context. Use Get for values stored by
// middlewares.
func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// Request returns the request being served.
func (c *Context) Request() *http.Request {
	return c.r
}

// SetRequest replaces the request seen by the rest of the chain, for
// middlewares that derive a new request with r.WithContext.
func (c *Context) SetRequest(r *http.Request) {
	if r != nil {
		c.r = r
	}
}

// Param returns the decoded value of a path parameter, or an empty string.
// The segments matched by a wildcard are available under "*".
func (c *Context) Param(name string) string {
	return c.params.Get(name)
}

// Params returns a copy of all path parameters.
func (c *Context) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// Route returns the matched route with its absolute pattern.
func (c *Context) Route() RouteInfo {
	return c.route
}

// Set stores a value for the rest of the chain.
func (c *Context) Set(key string, val any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

// Get returns a stored value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// GetOr returns a stored value or def when the key is absent.
func (c *Context) GetOr(key string, def any) any {
	if v, ok := c.store[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is stored.
func (c *Context) Has(key string) bool {
	_, ok := c.store[key]
	return ok
}

// Delete removes a stored value.
func (c *Context) Delete(key string) {
	delete(c.store, key)
}

// Value returns the stored value for key if it holds a T.
func Value[T any](c *Context, key string) (T, bool) {
	v, ok := c.store[key]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// JSON records a JSON response. Encoding failures are returned as errors and
// leave the recorded response untouched.
func (c *Context) JSON(v any, opts ...response.Option) (*response.Response, error) {
	resp, err := response.JSON(v, opts...)
	if err != nil {
		return nil, err
	}
	return c.SetResponse(resp), nil
}

// Text records a plain-text response.
func (c *Context) Text(body string, opts ...response.Option) (*response.Response, error) {
	return c.SetResponse(response.Text(body, opts...)), nil
}

// HTML records an HTML response.
func (c *Context) HTML(body string, opts ...response.Option) (*response.Response, error) {
	return c.SetResponse(response.HTML(body, opts...)), nil
}

// Redirect records a redirect. Non-3xx statuses fall back to 302 Found.
func (c *Context) Redirect(url string, status int) (*response.Response, error) {
	return c.SetResponse(response.Redirect(url, status)), nil
}

// Error records a JSON error envelope. A zero status means 500.
func (c *Context) Error(message string, status int, details map[string]any) (*response.Response, error) {
	return c.SetResponse(response.Error(message, status, details)), nil
}

// NotFound returns a plain-text 404 without recording it.
func (c *Context) NotFound() (*response.Response, error) {
	return response.NotFound(), nil
}

// SetResponse records resp as the response of the request and returns it.
// The last recorded response wins.
func (c *Context) SetResponse(resp *response.Response) *response.Response {
	c.resp = resp
	return resp
}

// Response returns the recorded response, or nil.
func (c *Context) Response() *response.Response {
	return c.resp
}

// Parse returns the request body decoded into a map. Unsupported or malformed
// bodies yield nil. The body is read once; later calls return the same map.
func (c *Context) Parse() map[string]any {
	if c.parseDone {
		return c.parsed
	}
	c.parseDone = true

	data, err := binder.Parse(c.r)
	if err != nil {
		c.Logger().Debug("request body not parsed",
			logger.Component("router"),
			logger.Error(err),
		)
		return nil
	}
	c.parsed = data
	return data
}

// Validate runs schema over the parsed request body.
func (c *Context) Validate(schema validator.Schema) validator.Result {
	return schema(c.Parse())
}

// Service returns the service of the app that registered the matched route,
// falling back to the service of the app serving the request.
func (c *Context) Service() any {
	if c.owner != nil && c.owner.serviceSet {
		return c.owner.service
	}
	if c.root != nil {
		return c.root.service
	}
	return nil
}

// ServiceAs returns the context's service if it is a T.
func ServiceAs[T any](c *Context) (T, bool) {
	t, ok := c.Service().(T)
	return t, ok
}

// Logger returns the logger of the app serving the request.
func (c *Context) Logger() *slog.Logger {
	if c.root != nil {
		return c.root.logger
	}
	return slog.Default()
}
