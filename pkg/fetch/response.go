package fetch

import "encoding/json"

// Response is the outcome of a successful fetch. The body is fully read and
// buffered so callers never deal with connection lifetimes.
type Response struct {
	// Status is the HTTP status code. Rendered responses report 200.
	Status int

	// Body is the complete response payload.
	Body []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}
