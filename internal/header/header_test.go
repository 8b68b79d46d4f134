package header

import "testing"

func TestNew_Sentinel(t *testing.T) {
	m := New()
	if m[ResultCode] != NoStatus {
		t.Fatalf("expected sentinel %q, got %q", NoStatus, m[ResultCode])
	}
	if _, ok := m[Redirected]; ok {
		t.Fatalf("http_redirected should be absent on a fresh map: %v", m)
	}
	if len(m) != 2 {
		t.Fatalf("expected only reserved status keys, got %v", m)
	}
}

func TestEndHop_RedirectKeepsLocationOnly(t *testing.T) {
	m := New()
	m.SetStatus("302", "Found")
	m.Set("Location", "https://cdn.example.com/a")
	m.Set("X-Trace", "abc")
	if !m.EndHop() {
		t.Fatal("expected a reset after 302")
	}
	if m[Redirected] != "https://cdn.example.com/a" {
		t.Fatalf("unexpected http_redirected: %q", m[Redirected])
	}
	if _, ok := m["x-trace"]; ok {
		t.Fatal("fields of the redirect hop must be discarded")
	}
	if m[ResultCode] != NoStatus {
		t.Fatalf("status should be reset, got %q", m[ResultCode])
	}
}

func TestEndHop_RedirectWithoutLocation(t *testing.T) {
	m := New()
	m[Redirected] = "https://old.example.com"
	m.SetStatus("301", "Moved")
	m.EndHop()
	if _, ok := m[Redirected]; ok {
		t.Fatalf("redirect without location must clear http_redirected, got %v", m)
	}
}

func TestEndHop_NonRedirect(t *testing.T) {
	for _, code := range []string{"200", "304", "404", NoStatus} {
		m := New()
		m.SetStatus(code, "x")
		m.Set("etag", "1")
		if m.EndHop() {
			t.Fatalf("%s: unexpected reset", code)
		}
		if m["etag"] != "1" {
			t.Fatalf("%s: fields must be kept", code)
		}
	}
}

func TestSuccessful(t *testing.T) {
	cases := map[string]bool{
		"100": true, "200": true, "204": true, "302": true, "399": true,
		"400": false, "404": false, "500": false, NoStatus: false, "abc": false,
	}
	for code, want := range cases {
		m := New()
		m.SetStatus(code, "")
		if got := m.Successful(); got != want {
			t.Errorf("code %s: Successful()=%v want %v", code, got, want)
		}
	}
}

func TestFields_OmitsReserved(t *testing.T) {
	m := New()
	m.SetStatus("200", "OK")
	m[Redirected] = "x"
	m.Set("Content-Type", "text/plain")
	f := m.Fields()
	if len(f) != 1 || f["content-type"] != "text/plain" {
		t.Fatalf("unexpected fields: %v", f)
	}
}
