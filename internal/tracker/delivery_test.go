package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSink_PostsEnvelope(t *testing.T) {
	var got TrackedError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, nil, time.Second)
	err := sink.Deliver(context.Background(), TrackedError{
		Message:   "boom",
		ErrorType: ErrorTypeUncaught,
		Breadcrumbs: []Breadcrumb{
			{Category: CategoryConsole, Message: "warn"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Message != "boom" || got.ErrorType != ErrorTypeUncaught || len(got.Breadcrumbs) != 1 {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestHTTPSink_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, nil, time.Second)
	if err := sink.Deliver(context.Background(), TrackedError{Message: "x"}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestHTTPSink_TimeoutBoundsAttempt(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	sink := NewHTTPSink(srv.URL, nil, 50*time.Millisecond)
	start := time.Now()
	err := sink.Deliver(context.Background(), TrackedError{Message: "x"})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("delivery attempt not bounded, took %v", elapsed)
	}
}
