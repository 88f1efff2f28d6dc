package binder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// parseJSON decodes a single JSON object. Numbers are kept as json.Number
// so large integers survive the round trip.
func parseJSON(body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrFailedToParseJSON)
	}

	// Reject trailing data after the object
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
	}

	return out, nil
}
