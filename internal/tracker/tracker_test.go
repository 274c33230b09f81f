package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeSink records deliveries and can be told to fail specific messages.
type fakeSink struct {
	mu        sync.Mutex
	delivered []TrackedError
	failWhen  map[string]bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{failWhen: make(map[string]bool)}
}

func (s *fakeSink) Deliver(ctx context.Context, e TrackedError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWhen[e.Message] {
		return errors.New("send failed")
	}
	s.delivered = append(s.delivered, e)
	return nil
}

func (s *fakeSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.delivered))
	for _, e := range s.delivered {
		out = append(out, e.Message)
	}
	return out
}

func newTestTracker(sink Sink) (*Tracker, *StaticHost) {
	host := &StaticHost{
		PageURL:   "https://portal.example.edu/dashboard",
		Agent:     "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
		Width:     1280,
		Height:    800,
		Connected: true,
		Network:   "wifi",
	}
	tr := New(host, sink, Config{})
	tr.spawn = func(f func()) { f() } // run deliveries inline for determinism
	tr.Init()
	return tr, host
}

func TestInit_IdempotentAndHostGuarded(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())
	count := tr.BreadcrumbCount()
	tr.Init()
	if tr.BreadcrumbCount() != count {
		t.Fatalf("second Init must be a no-op")
	}

	noHost := New(nil, newFakeSink(), Config{})
	noHost.Init()
	noHost.AddBreadcrumb(CategoryCustom, "x", nil)
	if noHost.BreadcrumbCount() != 0 {
		t.Fatalf("tracker without host must stay inert")
	}
}

func TestBreadcrumbs_FIFOBound(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())
	tr.ClearBreadcrumbs()

	for i := 0; i < 55; i++ {
		tr.AddBreadcrumb(CategoryCustom, fmt.Sprintf("crumb-%d", i), nil)
	}
	if got := tr.BreadcrumbCount(); got != DefaultMaxBreadcrumbs {
		t.Fatalf("expected %d crumbs, got %d", DefaultMaxBreadcrumbs, got)
	}

	tr.mu.Lock()
	crumbs := tr.crumbs.snapshot()
	tr.mu.Unlock()
	if crumbs[0].Message != "crumb-5" {
		t.Fatalf("oldest 5 should be evicted, got head %q", crumbs[0].Message)
	}
	if crumbs[len(crumbs)-1].Message != "crumb-54" {
		t.Fatalf("relative order broken, got tail %q", crumbs[len(crumbs)-1].Message)
	}
}

func TestCapture_SnapshotIsolation(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.ClearBreadcrumbs()

	tr.AddBreadcrumb(CategoryCustom, "before", nil)
	tr.CaptureException("boom", "", ErrorTypeManual, nil)
	tr.AddBreadcrumb(CategoryCustom, "after-1", nil)
	tr.AddBreadcrumb(CategoryCustom, "after-2", nil)

	sink.mu.Lock()
	captured := sink.delivered[0]
	sink.mu.Unlock()
	if len(captured.Breadcrumbs) != 1 {
		t.Fatalf("snapshot must not grow after capture, got %d", len(captured.Breadcrumbs))
	}
	if captured.Breadcrumbs[0].Message != "before" {
		t.Fatalf("unexpected snapshot contents: %+v", captured.Breadcrumbs)
	}
}

func TestCapture_ContextDerivedFromHost(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.SetUser("user-9")

	tr.CaptureException("boom", "stack", ErrorTypeUncaught, map[string]any{"k": "v"})

	sink.mu.Lock()
	e := sink.delivered[0]
	sink.mu.Unlock()
	if e.Context.URL != "https://portal.example.edu/dashboard" {
		t.Fatalf("unexpected url %q", e.Context.URL)
	}
	if e.Context.Browser != "chrome" || e.Context.OS != "windows" || e.Context.Device != "desktop" {
		t.Fatalf("unexpected classification: %+v", e.Context)
	}
	if e.Context.ViewportWidth != 1280 || e.Context.NetworkType != "wifi" {
		t.Fatalf("unexpected host context: %+v", e.Context)
	}
	if e.Context.UserID != "user-9" {
		t.Fatalf("expected user id on context")
	}
	if e.Custom["k"] != "v" {
		t.Fatalf("expected custom data")
	}
}

func TestOfflineQueue_OrderingAndRequeueAtFront(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.SetOnline(false)

	tr.CaptureException("A", "", ErrorTypeManual, nil)
	tr.CaptureException("B", "", ErrorTypeManual, nil)
	tr.CaptureException("C", "", ErrorTypeManual, nil)
	if tr.QueueLen() != 3 {
		t.Fatalf("expected 3 queued, got %d", tr.QueueLen())
	}

	// B will fail: flush must deliver A, restore B to the FRONT, and stop.
	sink.failWhen["B"] = true
	tr.SetOnline(true)

	if got := sink.messages(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected only A delivered, got %v", got)
	}
	tr.mu.Lock()
	queued := make([]string, 0, len(tr.queue))
	for _, e := range tr.queue {
		queued = append(queued, e.Message)
	}
	tr.mu.Unlock()
	if len(queued) != 2 || queued[0] != "B" || queued[1] != "C" {
		t.Fatalf("expected queue [B C], got %v", queued)
	}

	// Next online transition resumes: A must not be resent.
	sink.failWhen["B"] = false
	tr.SetOnline(false)
	tr.SetOnline(true)
	if got := sink.messages(); len(got) != 3 || got[1] != "B" || got[2] != "C" {
		t.Fatalf("expected A,B,C exactly once in order, got %v", got)
	}
}

func TestDispatch_FailedOnlineSendIsQueued(t *testing.T) {
	sink := newFakeSink()
	sink.failWhen["boom"] = true
	tr, _ := newTestTracker(sink)

	tr.CaptureException("boom", "", ErrorTypeManual, nil)
	if tr.QueueLen() != 1 {
		t.Fatalf("failed send must queue the envelope")
	}
}

func TestCaptureMessage_LevelGating(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.ClearBreadcrumbs()

	tr.CaptureMessage("just info", "info", nil)
	if len(sink.messages()) != 0 {
		t.Fatalf("info level must not capture")
	}
	if tr.BreadcrumbCount() != 1 {
		t.Fatalf("message must always leave a breadcrumb")
	}

	tr.CaptureMessage("bad thing", "error", nil)
	if got := sink.messages(); len(got) != 1 || got[0] != "bad thing" {
		t.Fatalf("error level must capture, got %v", got)
	}
}

func TestRecordInputChange_Debounced(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())
	tr.ClearBreadcrumbs()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.clock = func() time.Time { return now }

	tr.RecordInputChange("name")
	now = now.Add(100 * time.Millisecond)
	tr.RecordInputChange("name") // inside debounce window, dropped
	now = now.Add(600 * time.Millisecond)
	tr.RecordInputChange("name")

	if got := tr.BreadcrumbCount(); got != 2 {
		t.Fatalf("expected 2 debounced crumbs, got %d", got)
	}
}

func TestRecordPageLoad_SlowLoadCaptures(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)

	tr.RecordPageLoad(2 * time.Second)
	if len(sink.messages()) != 0 {
		t.Fatalf("fast load must not capture")
	}

	tr.RecordPageLoad(6 * time.Second)
	got := sink.messages()
	if len(got) != 1 {
		t.Fatalf("slow load must capture, got %v", got)
	}
	sink.mu.Lock()
	errType := sink.delivered[0].ErrorType
	sink.mu.Unlock()
	if errType != ErrorTypePerformance {
		t.Fatalf("expected performance-issue, got %q", errType)
	}
}

func TestRecordClick_TruncatesText(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())
	tr.ClearBreadcrumbs()

	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	tr.RecordClick("button", "save", "btn primary", string(long))

	tr.mu.Lock()
	crumb := tr.crumbs.snapshot()[0]
	tr.mu.Unlock()
	if text := crumb.Data["text"].(string); len(text) != 50 {
		t.Fatalf("expected truncated text, got %d chars", len(text))
	}
}

func TestTeardown_RestoresAndDeactivates(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())

	restored := 0
	tr.addRestore(func() { restored++ })
	tr.addRestore(func() { restored++ })

	tr.Teardown()
	if restored != 2 {
		t.Fatalf("expected both restores to run, got %d", restored)
	}
	tr.ClearBreadcrumbs()
	tr.AddBreadcrumb(CategoryCustom, "x", nil)
	if tr.BreadcrumbCount() != 0 {
		t.Fatalf("torn-down tracker must be inert")
	}
}
