package response

import "net/http"

// Option adjusts a response after a builder has filled in its defaults.
type Option func(*Response)

// WithStatus overrides the status code. Zero is ignored.
func WithStatus(status int) Option {
	return func(r *Response) {
		if status != 0 {
			r.Status = status
		}
	}
}

// WithHeader sets a single header.
func WithHeader(key, value string) Option {
	return func(r *Response) {
		r.Header.Set(key, value)
	}
}

// WithHeaders copies all values from h, replacing existing keys.
func WithHeaders(h http.Header) Option {
	return func(r *Response) {
		for k, v := range h {
			r.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
}
