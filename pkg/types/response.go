// Package types holds the wire envelopes shared by every endpoint.
package types

// SuccessEnvelope wraps a single resource or object payload under "data".
// Paginated listings ship their own top-level shape instead.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a coded error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
