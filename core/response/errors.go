package response

import (
	"errors"
	"net/http"
)

// ErrEncodeJSON is returned when a JSON body cannot be encoded.
var ErrEncodeJSON = errors.New("failed to encode json response")

// HTTPError is an error that carries the status code and details the router
// should use when it turns the error into a response.
type HTTPError struct {
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Is reports whether target is an HTTPError with the same status, so
// errors.Is(err, ErrNotFound) matches customized copies.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Status == e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// Response renders the error as the JSON error envelope.
func (e HTTPError) Response() *Response {
	return Error(e.Message, e.Status, e.Details)
}

func newHTTPError(status int) HTTPError {
	return HTTPError{Status: status, Message: http.StatusText(status)}
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest            = newHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = newHTTPError(http.StatusUnauthorized)
	ErrForbidden             = newHTTPError(http.StatusForbidden)
	ErrNotFound              = newHTTPError(http.StatusNotFound)
	ErrConflict              = newHTTPError(http.StatusConflict)
	ErrRequestEntityTooLarge = newHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnprocessableEntity   = newHTTPError(http.StatusUnprocessableEntity)
	ErrTooManyRequests       = newHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError   = newHTTPError(http.StatusInternalServerError)
	ErrServiceUnavailable    = newHTTPError(http.StatusServiceUnavailable)
)
