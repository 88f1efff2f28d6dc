package response

import (
	"net/http"
	"strconv"
)

// Content types set by the builders.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Response is a fully buffered HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New creates a response with the given status and body.
// A zero status means 200 OK.
func New(status int, body []byte, opts ...Option) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	r := &Response{
		Status: status,
		Header: make(http.Header),
		Body:   body,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the response to w. Headers already present on w are kept
// unless the response overrides them.
func (r *Response) Render(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	// No body for 204 and 304 per RFC 9110
	if status == http.StatusNoContent || status == http.StatusNotModified {
		w.WriteHeader(status)
		return nil
	}

	if len(r.Body) > 0 && h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	w.WriteHeader(status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

// Text creates a text/plain response with 200 OK status.
func Text(body string, opts ...Option) *Response {
	r := New(http.StatusOK, []byte(body))
	r.Header.Set("Content-Type", ContentTypeText)
	return r.apply(opts)
}

// HTML creates a text/html response with 200 OK status.
func HTML(body string, opts ...Option) *Response {
	r := New(http.StatusOK, []byte(body))
	r.Header.Set("Content-Type", ContentTypeHTML)
	return r.apply(opts)
}

// NoContent creates a 204 No Content response.
func NoContent() *Response {
	return New(http.StatusNoContent, nil)
}

// Status creates an empty response with the specified status code.
func Status(code int) *Response {
	return New(code, nil)
}

// NotFound creates a plain-text 404 response.
func NotFound() *Response {
	return Text(http.StatusText(http.StatusNotFound), WithStatus(http.StatusNotFound))
}

// Redirect creates a redirect to url. Statuses outside the 3xx range fall back
// to 302 Found.
func Redirect(url string, status int) *Response {
	if status < 300 || status >= 400 {
		status = http.StatusFound
	}
	r := New(status, nil)
	r.Header.Set("Location", url)
	return r
}

func (r *Response) apply(opts []Option) *Response {
	for _, opt := range opts {
		opt(r)
	}
	return r
}
