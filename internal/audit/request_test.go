package audit

import (
	"net/http/httptest"
	"testing"
)

func TestRequestInfoFrom_PrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/staff", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	r.Header.Set("X-Real-Ip", "198.51.100.7")
	r.Header.Set("User-Agent", "Mozilla/5.0")

	info := RequestInfoFrom(r)
	if info.IPAddress != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %q", info.IPAddress)
	}
	if info.UserAgent != "Mozilla/5.0" || info.Method != "POST" || info.Path != "/v1/staff" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestRequestInfoFrom_FallsBackToRealIPThenRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	r.Header.Set("X-Real-Ip", "198.51.100.7")

	if info := RequestInfoFrom(r); info.IPAddress != "198.51.100.7" {
		t.Fatalf("expected x-real-ip, got %q", info.IPAddress)
	}

	r.Header.Del("X-Real-Ip")
	if info := RequestInfoFrom(r); info.IPAddress != "192.0.2.1" {
		t.Fatalf("expected remote addr host, got %q", info.IPAddress)
	}
}

func TestRequestInfoContextRoundTrip(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	ctx := WithRequestInfo(r.Context(), RequestInfoFrom(r))

	info, ok := RequestInfoFromContext(ctx)
	if !ok || info.Path != "/x" {
		t.Fatalf("expected info in context, got %+v ok=%v", info, ok)
	}
}
