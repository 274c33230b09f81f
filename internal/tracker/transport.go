package tracker

import (
	"net/http"
)

// WrapTransport decorates an http.RoundTripper so every request leaves an
// api-call breadcrumb with its duration and outcome. Non-2xx responses
// synthesize an api-error capture; transport failures synthesize a
// network-error capture. The original response or error is always returned
// unmodified: instrumentation is purely observational.
func (t *Tracker) WrapTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &observedTransport{tracker: t, next: next}
}

type observedTransport struct {
	tracker *Tracker
	next    http.RoundTripper
}

func (o *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t := o.tracker
	start := t.clock()
	resp, err := o.next.RoundTrip(req)
	elapsed := t.clock().Sub(start)

	url := ""
	if req.URL != nil {
		url = req.URL.String()
	}
	data := map[string]any{
		"method":      req.Method,
		"url":         url,
		"duration_ms": elapsed.Milliseconds(),
	}

	switch {
	case err != nil:
		data["error"] = err.Error()
		t.AddBreadcrumb(CategoryAPICall, req.Method+" "+url, data)
		t.CaptureException("network failure: "+err.Error(), "", ErrorTypeNetwork, data)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data["status"] = resp.StatusCode
		t.AddBreadcrumb(CategoryAPICall, req.Method+" "+url, data)
		t.CaptureException("api error: "+resp.Status, "", ErrorTypeAPI, data)
	default:
		data["status"] = resp.StatusCode
		t.AddBreadcrumb(CategoryAPICall, req.Method+" "+url, data)
	}

	return resp, err
}
