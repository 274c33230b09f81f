package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// RequestInfo carries ambient request-origin metadata through internal layers.
//
// HTTP handlers should resolve it once per request and attach it to the request
// context with WithRequestInfo; sinks merge it into events without overwriting
// fields the caller set explicitly.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	Method    string
	Path      string
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	v := ctx.Value(requestInfoKey{})
	info, ok := v.(RequestInfo)
	return info, ok
}

// RequestInfoFrom extracts origin metadata from an incoming HTTP request.
// Client IP resolution prefers proxy headers over the socket address:
// X-Forwarded-For (first hop), then X-Real-Ip, then RemoteAddr.
func RequestInfoFrom(r *http.Request) RequestInfo {
	if r == nil {
		return RequestInfo{}
	}

	ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if ip != "" {
		// The header may carry a hop chain; the first entry is the client.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = strings.TrimSpace(ip[:i])
		}
	}
	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	}
	if ip == "" && r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}

	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}

	return RequestInfo{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		Method:    r.Method,
		Path:      path,
	}
}
