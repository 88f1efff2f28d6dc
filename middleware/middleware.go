package middleware

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// outgoing returns the response the router will send for c: the recorded
// one when set, otherwise resp. It may be nil. A non-nil result always has a
// Header map, so callers can set headers on responses built as struct literals.
func outgoing(c *router.Context, resp *response.Response) *response.Response {
	out := resp
	if recorded := c.Response(); recorded != nil {
		out = recorded
	}
	if out != nil && out.Header == nil {
		out.Header = make(http.Header)
	}
	return out
}

// errorStatus predicts the status the router synthesizes for err.
func errorStatus(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code < 600 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// statusOf returns the status of the response the router will send.
func statusOf(c *router.Context, resp *response.Response, err error) int {
	if out := outgoing(c, resp); out != nil {
		if out.Status == 0 {
			return http.StatusOK
		}
		return out.Status
	}
	if err != nil {
		return errorStatus(err)
	}
	return http.StatusInternalServerError
}
