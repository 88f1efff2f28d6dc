// Package binder decodes HTTP request bodies into generic maps.
//
// Parse inspects the Content-Type header and reads the body once:
//
//	data, err := binder.Parse(r)
//	if err != nil {
//		// errors.Is(err, binder.ErrUnsupportedMediaType) and friends
//	}
//
// Supported media types:
//
//   - application/json: the body must hold a single JSON object
//   - application/x-www-form-urlencoded: single values become strings,
//     repeated keys become []string
//   - multipart/form-data: values as above; uploaded files are described by
//     a map with "filename", "size" and "content_type" (a slice of such maps
//     for repeated fields)
//
// A request without a body yields a nil map and no error. Bodies larger than
// DefaultMaxBodySize are rejected with ErrBodyTooLarge.
package binder
