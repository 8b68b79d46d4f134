package transport

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a transport that cannot be set up, such as a
// missing HTTP client binary.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// TransportError reports a failed exchange: the client itself failed
// (Code is 0) or the final status was outside 1xx/2xx/3xx.
type TransportError struct {
	Code    int
	Message string
	Body    []byte
	Err     error
}

func (e *TransportError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("transport error: http status %d: %s", e.Code, e.Message)
	}
	if e.Err != nil && e.Message == "" {
		return "transport error: " + e.Err.Error()
	}
	return "transport error: " + e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError builds the error for a final status outside 1xx/2xx/3xx.
// The message embeds the code and the raw response body.
func StatusError(code string, n int, body []byte) *TransportError {
	return &TransportError{
		Code:    n,
		Message: fmt.Sprintf("%s: %s", code, string(body)),
		Body:    body,
	}
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
