package router

import (
	"errors"
	"fmt"
)

var (
	// Registration errors
	ErrDuplicateRoute              = errors.New("duplicate route")
	ErrInvalidRouteDefinition      = errors.New("invalid route definition")
	ErrInvalidMiddlewareDefinition = errors.New("invalid middleware definition")
	ErrNilApp                      = errors.New("cannot mount nil app")
	ErrInvalidMountPrefix          = errors.New("invalid mount prefix")
	ErrMountCycle                  = errors.New("mount would create a cycle")
	ErrNilService                  = errors.New("service cannot be nil")
	ErrServiceAlreadySet           = errors.New("service already set")

	// Resolution errors
	ErrRouteTable = errors.New("failed to build route table")
)

// statusCode is implemented by errors that choose the status of the
// synthesized error response.
type statusCode interface {
	StatusCode() int
}

// PanicError interface allows error handlers and middlewares to detect panics.
// When a panic is recovered by the app, it's wrapped in an error that implements
// this interface, providing access to the original panic value and stack trace.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

// Error implements the error interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Value returns the original panic value.
func (e *panicError) Value() any {
	return e.value
}

// Stack returns the stack trace.
func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
