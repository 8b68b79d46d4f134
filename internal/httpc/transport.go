package httpc

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/mdmrepo/internal/common"
	"github.com/loykin/mdmrepo/internal/header"
	"github.com/loykin/mdmrepo/internal/transport"
)

var _ transport.Transport = (*Transport)(nil)

// Options configures the native Transport.
type Options struct {
	BaseURL   string
	TLSConfig *tls.Config
	Logger    *common.Logger
}

// Transport sends requests with resty and reports them in the same header
// map shape the curl transport produces.
type Transport struct {
	client  *resty.Client
	baseURL string
	logger  *common.Logger
}

// New returns a Transport with its own resty client.
func New(opts Options) *Transport {
	base := opts.BaseURL
	if base == "" {
		base = transport.DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	h := Httpc{TlsConfig: opts.TLSConfig}
	return &Transport{client: h.New(), baseURL: base, logger: logger.WithComponent("httpc")}
}

// Client exposes the underlying resty client.
func (t *Transport) Client() *resty.Client { return t.client }

// Do executes req, following redirects, and checks the final status class.
func (t *Transport) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := req.EffectiveMethod()
	url := transport.Resolve(t.baseURL, req.Target, req.Relative)
	log := t.logger.WithRequest(method, url)

	r := t.client.R()
	for _, h := range req.Headers {
		r.Header[h.Name] = append(r.Header[h.Name], h.Value)
	}
	if len(req.Form) > 0 {
		fields := make([]*resty.MultipartField, 0, len(req.Form))
		for _, f := range req.Form {
			fields = append(fields, &resty.MultipartField{Param: f.Name, Reader: strings.NewReader(f.Value)})
		}
		r.SetMultipartFields(fields...)
	}

	switch {
	case req.BodyFile != "":
		f, err := os.Open(filepath.Clean(req.BodyFile))
		if err != nil {
			return nil, &transport.TransportError{Message: "open request body", Err: err}
		}
		defer func() { _ = f.Close() }()
		if info, err := f.Stat(); err == nil {
			ctx = context.WithValue(ctx, bodySizeKey, info.Size())
		}
		r.SetBody(f)
	case len(req.Body) > 0:
		r.SetBody(req.Body)
	}
	r.SetContext(ctx)

	log.Debug("sending request")
	resp, err := r.Execute(method, url)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, &transport.TransportError{Message: err.Error(), Err: err}
	}
	hdrs := HeaderMap(resp)
	if !hdrs.Successful() {
		return nil, transport.StatusError(hdrs[header.ResultCode], hdrs.Code(), resp.Body())
	}
	log.Debug("request completed", "status", resp.StatusCode(), "bytes", len(resp.Body()))
	return &transport.Response{Headers: hdrs, Body: resp.Body()}, nil
}

// HeaderMap converts the final response into a header.Map. When the
// response was reached through a redirect, http_redirected holds the
// Location of the last redirect hop.
func HeaderMap(resp *resty.Response) header.Map {
	hdrs := header.New()
	if resp == nil || resp.RawResponse == nil {
		return hdrs
	}
	raw := resp.RawResponse
	if raw.Request != nil && raw.Request.Response != nil {
		if loc := raw.Request.Response.Header.Get("Location"); loc != "" {
			hdrs[header.Redirected] = loc
		}
	}
	code := strconv.Itoa(raw.StatusCode)
	desc := strings.TrimSpace(strings.TrimPrefix(raw.Status, code))
	if desc == "" {
		desc = http.StatusText(raw.StatusCode)
	}
	hdrs.SetStatus(code, desc)
	for name, values := range raw.Header {
		if len(values) == 0 {
			hdrs.Set(name, "")
			continue
		}
		hdrs.Set(name, values[len(values)-1])
	}
	return hdrs
}
