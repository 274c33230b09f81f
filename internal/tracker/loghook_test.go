package tracker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogHandler_ObservesAndPassesThrough(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.ClearBreadcrumbs()

	var buf bytes.Buffer
	log := slog.New(tr.LogHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("loading roster")
	log.Warn("slow query")
	if got := tr.BreadcrumbCount(); got != 2 {
		t.Fatalf("expected console breadcrumbs for info/warn, got %d", got)
	}
	if len(sink.messages()) != 0 {
		t.Fatalf("info/warn must not capture")
	}

	log.Error("roster fetch failed")
	if got := sink.messages(); len(got) != 1 || got[0] != "roster fetch failed" {
		t.Fatalf("error must capture, got %v", got)
	}
	sink.mu.Lock()
	errType := sink.delivered[0].ErrorType
	sink.mu.Unlock()
	if errType != ErrorTypeConsole {
		t.Fatalf("expected console-error type, got %q", errType)
	}

	// Pass-through: all three records must reach the wrapped handler.
	out := buf.String()
	for _, want := range []string{"loading roster", "slow query", "roster fetch failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in wrapped output:\n%s", want, out)
		}
	}
}

func TestLogHandler_DebugNotObserved(t *testing.T) {
	sink := newFakeSink()
	tr, _ := newTestTracker(sink)
	tr.ClearBreadcrumbs()

	var buf bytes.Buffer
	log := slog.New(tr.LogHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	log.Debug("delivery retry")
	if tr.BreadcrumbCount() != 0 {
		t.Fatalf("debug records must not leave breadcrumbs")
	}
	if !strings.Contains(buf.String(), "delivery retry") {
		t.Fatalf("debug record must still pass through")
	}
}

func TestInstallDefaultLogger_Restores(t *testing.T) {
	tr, _ := newTestTracker(newFakeSink())
	prev := slog.Default()

	restore := tr.InstallDefaultLogger()
	if slog.Default() == prev {
		t.Fatalf("expected default logger replaced")
	}
	restore()
	if slog.Default() != prev {
		t.Fatalf("expected default logger restored")
	}
}
