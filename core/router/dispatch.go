package router

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
)

const noResponseMessage = "No response set"

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := a.Fetch(r).Render(w); err != nil {
		a.logger.Error("failed to write response",
			logger.Component("router"),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
	}
}

// Fetch resolves r to a route and runs its chain. It always returns a
// response: unmatched requests get the not-found response, and handler
// failures are turned into error responses.
func (a *App) Fetch(r *http.Request) *response.Response {
	t, err := a.resolve()
	if err != nil {
		a.logger.Error("failed to build dispatch table",
			logger.Component("router"),
			logger.Error(err),
		)
		return a.errorResponse(err)
	}

	e, params := t.lookup(r.Method, r.URL.Path, r.URL.EscapedPath())
	if e == nil {
		if resp := a.notFound(r); resp != nil {
			return resp
		}
		return defaultNotFound(r)
	}

	return a.dispatch(newContext(r, params, e, a), e.chain)
}

// dispatch runs chain and settles the response for c.
func (a *App) dispatch(c *Context, chain HandlerFunc) *response.Response {
	start := time.Now()
	resp, err := invoke(c, chain)

	if err != nil {
		a.logFailure(c, err, time.Since(start))
		if recorded := c.Response(); recorded != nil {
			return recorded
		}
		return a.errorResponse(err)
	}

	if recorded := c.Response(); recorded != nil {
		return recorded
	}
	if resp != nil {
		return resp
	}

	a.logger.Warn("chain finished without a response",
		logger.Component("router"),
		logger.Method(c.route.Method),
		logger.Route(c.route.Path),
	)
	return response.Error(noResponseMessage, http.StatusInternalServerError, nil)
}

// invoke calls chain, converting a panic into a PanicError.
func invoke(c *Context, chain HandlerFunc) (resp *response.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = &panicError{value: rec, stack: debug.Stack()}
		}
	}()
	return chain(c)
}

// errorResponse synthesizes the response for an unhandled error. With error
// exposure disabled, every 5xx message is replaced by the status text and
// details are dropped, HTTPErrors included.
func (a *App) errorResponse(err error) *response.Response {
	var httpErr response.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 600 {
		if !a.exposeErrors && httpErr.Status >= http.StatusInternalServerError {
			return response.Error(http.StatusText(httpErr.Status), httpErr.Status, nil)
		}
		return httpErr.Response()
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code < 600 {
			status = code
		}
	}

	message := err.Error()
	if !a.exposeErrors && status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	return response.Error(message, status, nil)
}

func (a *App) logFailure(c *Context, err error, elapsed time.Duration) {
	attrs := []any{
		logger.Component("router"),
		logger.Method(c.route.Method),
		logger.Route(c.route.Path),
		logger.Path(c.r.URL.Path),
		logger.Duration(elapsed),
		logger.Error(err),
	}

	var pe PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, logger.Stack(pe.Stack()))
		a.logger.Error("panic recovered", attrs...)
		return
	}
	a.logger.Error("handler failed", attrs...)
}
