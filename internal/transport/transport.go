package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/loykin/mdmrepo/internal/header"
)

// Header is a single request header. Names are sent exactly as supplied.
type Header struct {
	Name  string
	Value string
}

// Field is a single multipart form field.
type Field struct {
	Name  string
	Value string
}

// Request describes one logical call against the vendor API or an
// absolute URL such as a pre-signed upload location.
type Request struct {
	// Target is either a resource identifier relative to the base URL
	// or, when Relative is false, an absolute URL used verbatim.
	Target   string
	Relative bool
	// Method may be empty: POST is implied by a body or form fields, GET otherwise.
	Method  string
	Headers []Header
	Form    []Field
	// Body is sent inline. BodyFile, when set, is streamed instead.
	Body     []byte
	BodyFile string
}

// EffectiveMethod resolves the method the request will be sent with.
func (r Request) EffectiveMethod() string {
	if m := strings.TrimSpace(r.Method); m != "" {
		return strings.ToUpper(m)
	}
	if len(r.Form) > 0 || len(r.Body) > 0 || r.BodyFile != "" {
		return http.MethodPost
	}
	return http.MethodGet
}

// WithHeader returns a copy of r with one more header appended.
func (r Request) WithHeader(name, value string) Request {
	hs := make([]Header, 0, len(r.Headers)+1)
	hs = append(hs, r.Headers...)
	r.Headers = append(hs, Header{Name: name, Value: value})
	return r
}

// Response is the outcome of a successful request.
type Response struct {
	Headers header.Map
	Body    []byte
}

// Transport executes a request and returns the final hop's headers and body.
// Implementations fail with *TransportError for transport failures and for
// final statuses outside 1xx/2xx/3xx.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}
