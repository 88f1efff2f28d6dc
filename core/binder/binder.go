package binder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodySize is the largest body Parse will read (1MB).
const DefaultMaxBodySize = 1 << 20 // 1 MB

// DefaultMaxMemory is the part of a multipart body kept in memory (10MB).
// The rest is spooled to temporary files by mime/multipart.
const DefaultMaxMemory = 10 << 20 // 10 MB

// Media types understood by Parse.
const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationForm = "application/x-www-form-urlencoded"
	MIMEMultipartForm   = "multipart/form-data"
)

// Parse decodes the request body according to its Content-Type.
// It returns nil and no error when the request has no body.
//
// JSON and URL-encoded bodies are restored after reading, so later readers of
// r.Body see the same bytes.
func Parse(r *http.Request) (map[string]any, error) {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	// Fail fast if the request is already cancelled
	if err := r.Context().Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if contentType != "" && err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}

	if mediaType == MIMEMultipartForm {
		if params["boundary"] == "" {
			return nil, fmt.Errorf("%w: missing multipart boundary", ErrFailedToParseForm)
		}
		return parseMultipart(r)
	}

	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	switch mediaType {
	case MIMEApplicationJSON:
		return parseJSON(body)
	case MIMEApplicationForm:
		return parseURLEncoded(body)
	case "":
		return nil, ErrMissingContentType
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// readBody reads up to DefaultMaxBodySize bytes and puts them back on r.
func readBody(r *http.Request) ([]byte, error) {
	// +1 byte detects oversized bodies without reading them fully
	body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxBodySize+1))
	_ = r.Body.Close()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: failed to read request body: %v", ErrFailedToParseForm, err)
	}
	if len(body) > DefaultMaxBodySize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, DefaultMaxBodySize)
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
