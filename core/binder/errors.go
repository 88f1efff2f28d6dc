package binder

import "errors"

var (
	// ErrUnsupportedMediaType indicates a Content-Type the binder cannot decode.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMissingContentType indicates a body was sent without a Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrFailedToParseJSON indicates the body is not a single JSON object.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseForm indicates malformed URL-encoded or multipart data.
	ErrFailedToParseForm = errors.New("failed to parse form data")

	// ErrBodyTooLarge indicates the body exceeds DefaultMaxBodySize.
	ErrBodyTooLarge = errors.New("request body too large")
)
