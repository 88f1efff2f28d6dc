package binder

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

func parseURLEncoded(body []byte) (map[string]any, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
	}
	return fromValues(values), nil
}

func parseMultipart(r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxBodySize)
	if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
	}

	form := r.MultipartForm
	out := fromValues(form.Value)
	for name, headers := range form.File {
		switch len(headers) {
		case 0:
		case 1:
			out[name] = fileMeta(headers[0])
		default:
			files := make([]map[string]any, 0, len(headers))
			for _, fh := range headers {
				files = append(files, fileMeta(fh))
			}
			out[name] = files
		}
	}
	return out, nil
}

// fromValues flattens single-value keys to strings and keeps repeated keys
// as slices.
func fromValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
		case 1:
			out[k] = v[0]
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

func fileMeta(fh *multipart.FileHeader) map[string]any {
	return map[string]any{
		"filename":     fh.Filename,
		"size":         fh.Size,
		"content_type": fh.Header.Get("Content-Type"),
	}
}
