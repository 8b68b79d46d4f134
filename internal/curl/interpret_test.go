package curl

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/loykin/mdmrepo/internal/header"
	"github.com/loykin/mdmrepo/internal/transport"
)

const httpsURL = "https://a.example.com/munki/plugin/catalogs"

func TestParseHeaders_SingleStatusLine(t *testing.T) {
	got := ParseHeaders("HTTP/1.1 200 OK\r\n\r\n", httpsURL)
	want := header.Map{header.ResultCode: "200", header.ResultDescription: "OK"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseHeaders_Fields(t *testing.T) {
	trace := strings.Join([]string{
		"HTTP/2 200 ",
		"Content-Type: application/json",
		"X-Empty: ",
		"ETag: \"abc\"",
		"",
	}, "\n")
	got := ParseHeaders(trace, httpsURL)
	if got[header.ResultCode] != "200" || got[header.ResultDescription] != "" {
		t.Fatalf("status mismatch: %v", got)
	}
	if got["content-type"] != "application/json" || got["etag"] != `"abc"` {
		t.Fatalf("fields mismatch: %v", got)
	}
	if v, ok := got["x-empty"]; !ok || v != "" {
		t.Fatalf("empty header should be stored as empty string: %v", got)
	}
}

func TestParseHeaders_VerboseTrace(t *testing.T) {
	trace := strings.Join([]string{
		"*   Trying 10.0.0.1:443...",
		"* Connected to a.example.com (10.0.0.1) port 443",
		"> GET /munki/plugin/catalogs HTTP/1.1",
		"> Host: a.example.com",
		"> Authorization: Basic c2VjcmV0Og==",
		">",
		"< HTTP/1.1 200 OK",
		"< Content-Length: 2",
		"< ",
		"{ [2 bytes data]",
		"* Connection #0 to host a.example.com left intact",
	}, "\r\n")
	got := ParseHeaders(trace, httpsURL)
	want := header.Map{
		header.ResultCode:        "200",
		header.ResultDescription: "OK",
		"content-length":         "2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseHeaders_RedirectCollapses(t *testing.T) {
	trace := strings.Join([]string{
		"< HTTP/1.1 302 Found",
		"< Location: https://cdn.example.com/catalogs/all",
		"< Set-Cookie: a=b",
		"< ",
		"* Issue another request to this URL: 'https://cdn.example.com/catalogs/all'",
		"< HTTP/1.1 200 OK",
		"< Content-Type: text/xml",
		"< ",
	}, "\n")
	got := ParseHeaders(trace, httpsURL)
	want := header.Map{
		header.ResultCode:        "200",
		header.ResultDescription: "OK",
		header.Redirected:        "https://cdn.example.com/catalogs/all",
		"content-type":           "text/xml",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseHeaders_MultipleRedirectsKeepLastLocation(t *testing.T) {
	trace := "HTTP/1.1 301 Moved\nLocation: /one\n\nHTTP/1.1 307 Temporary\nLocation: /two\n\nHTTP/1.1 200 OK\n\n"
	got := ParseHeaders(trace, httpsURL)
	if got[header.Redirected] != "/two" || got[header.ResultCode] != "200" {
		t.Fatalf("unexpected map: %v", got)
	}
	if _, ok := got["location"]; ok {
		t.Fatalf("location of intermediate hops must be dropped: %v", got)
	}
}

func TestParseHeaders_NoStatusLine(t *testing.T) {
	got := ParseHeaders("* Could not resolve host\n", httpsURL)
	if got[header.ResultCode] != header.NoStatus {
		t.Fatalf("expected sentinel, got %v", got)
	}
}

func TestParseHeaders_FTP(t *testing.T) {
	ftp := "ftp://files.example.com/pub/a.pkg"
	got := ParseHeaders("< 213 4096\n< 150 Opening BINARY mode\n", ftp)
	if got["content-length"] != "4096" || got[header.ResultCode] != "200" {
		t.Fatalf("unexpected ftp map: %v", got)
	}
	got = ParseHeaders("550 No such file\n", ftp)
	if got[header.ResultCode] != "404" || got[header.ResultDescription] != "550 No such file" {
		t.Fatalf("unexpected ftp 55x map: %v", got)
	}
	got = ParseHeaders("125 Data connection already open\n", ftp)
	if got[header.ResultCode] != "200" {
		t.Fatalf("unexpected ftp 125 map: %v", got)
	}
	got = ParseHeaders("550 No such file\n", httpsURL)
	if got[header.ResultCode] != header.NoStatus {
		t.Fatalf("reply codes must be ignored outside ftp: %v", got)
	}
}

func TestInterpret_NonZeroExit(t *testing.T) {
	res := Result{
		Stdout:   []byte("partial"),
		Stderr:   "* Trying...\ncurl: (6) Could not resolve host: a.example.com\n",
		ExitCode: 6,
	}
	hdrs, body, err := Interpret(res, httpsURL)
	if err == nil {
		t.Fatal("expected error")
	}
	var te *transport.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if hdrs != nil || body != nil {
		t.Fatal("no headers or body may be returned on failure")
	}
	if !strings.Contains(err.Error(), "Could not resolve host: a.example.com") || !strings.Contains(err.Error(), "exit code 6") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestInterpret_NonZeroExitShortStderr(t *testing.T) {
	_, _, err := Interpret(Result{Stderr: "boom\n", ExitCode: 7}, httpsURL)
	var te *transport.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if ErrorMessage("boom") != "" || ErrorMessage("") != "" {
		t.Fatal("short stderr must yield an empty message")
	}
}

func TestInterpret_HTTPFailure(t *testing.T) {
	res := Result{
		Stdout: []byte(`{"error":"missing"}`),
		Stderr: "< HTTP/1.1 404 Not Found\n< \n",
	}
	_, _, err := Interpret(res, httpsURL)
	var te *transport.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Code != 404 {
		t.Fatalf("expected code 404, got %d", te.Code)
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), `{"error":"missing"}`) {
		t.Fatalf("message should carry code and body: %v", err)
	}
}

func TestInterpret_Success(t *testing.T) {
	res := Result{Stdout: []byte("<plist/>"), Stderr: "< HTTP/1.1 201 Created\n< \n"}
	hdrs, body, err := Interpret(res, httpsURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hdrs.Code() != 201 || string(body) != "<plist/>" {
		t.Fatalf("unexpected result: %v %q", hdrs, body)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := map[string]string{
		"curl: (22) The requested URL returned error: 500\n": "The requested URL returned error: 500",
		"line one\ncurl: (7)   Failed  to connect":           "Failed  to connect",
		"curl: (6)":                                          "",
	}
	for in, want := range cases {
		if got := ErrorMessage(in); got != want {
			t.Errorf("ErrorMessage(%q)=%q want %q", in, got, want)
		}
	}
}
