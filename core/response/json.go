package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// JSON encodes v as an application/json response with 200 OK status.
// Encoding failures are returned as errors so the router can handle them like
// any other handler failure.
func JSON(v any, opts ...Option) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeJSON, err)
	}
	r := New(http.StatusOK, body)
	r.Header.Set("Content-Type", ContentTypeJSON)
	return r.apply(opts), nil
}

// Error creates the JSON error envelope:
//
//	{"error": {"message": message, "status": status, ...details}}
//
// A zero status means 500. Details are merged last, so they can override the
// message and status keys inside the envelope but never the HTTP status.
func Error(message string, status int, details map[string]any) *Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := make(map[string]any, len(details)+2)
	payload["message"] = message
	payload["status"] = status
	for k, v := range details {
		payload[k] = v
	}

	body, err := json.Marshal(map[string]any{"error": payload})
	if err != nil {
		// Details were not encodable; keep the envelope without them.
		body, _ = json.Marshal(map[string]any{"error": map[string]any{
			"message": message,
			"status":  status,
		}})
	}

	r := New(status, body)
	r.Header.Set("Content-Type", ContentTypeJSON)
	return r
}
