package httpc

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// MaxRedirects bounds the redirect chain followed for one request.
const MaxRedirects = 10

type ctxKey string

// bodySizeKey carries the byte length of a streamed body so the outgoing
// request advertises a Content-Length instead of chunked encoding.
const bodySizeKey ctxKey = "mdmrepo.body_size"

type Httpc struct {
	TlsConfig *tls.Config
	// Timeout is zero by default: calls are bounded only by the context.
	Timeout time.Duration
}

// New returns a resty.Client configured according to the receiver's TLS settings.
// Defaults: MinVersion TLS1.2 when MinVersion is zero.
func (h *Httpc) New() *resty.Client {
	c := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(MaxRedirects)).
		SetPreRequestHook(applyBodySize)
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	cfg := h.TlsConfig
	if cfg == nil {
		return c
	}
	cfg = cfg.Clone()
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	c.SetTLSClientConfig(cfg)
	return c
}

func applyBodySize(_ *resty.Client, r *http.Request) error {
	if n, ok := r.Context().Value(bodySizeKey).(int64); ok && n >= 0 {
		r.ContentLength = n
	}
	return nil
}
