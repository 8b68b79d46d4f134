package httpc

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_TLSConfigAppliedToClient(t *testing.T) {
	h := Httpc{TlsConfig: &tls.Config{InsecureSkipVerify: true}} // #nosec G402 -- test only
	c := h.New()
	tr, _ := c.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true on the transport")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Fatalf("expected default MinVersion TLS1.2, got %v", tr.TLSClientConfig.MinVersion)
	}
	if h.TlsConfig.MinVersion != 0 {
		t.Fatal("caller's tls.Config must not be mutated")
	}
}

func TestHTTPClient_InsecureAllowsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	plain := (&Httpc{}).New()
	if _, err := plain.R().SetContext(context.Background()).Get(srv.URL); err == nil {
		t.Fatal("expected certificate error without insecure TLS")
	}

	insecure := (&Httpc{TlsConfig: &tls.Config{InsecureSkipVerify: true}}).New() // #nosec G402 -- test only
	resp, err := insecure.R().SetContext(context.Background()).Get(srv.URL)
	if err != nil || resp.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200 with insecure TLS, got resp=%v err=%v", resp, err)
	}
}
