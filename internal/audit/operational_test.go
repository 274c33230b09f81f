package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readLines(t *testing.T, path string) []OpEvent {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var out []OpEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e OpEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line not valid json: %v", err)
		}
		out = append(out, e)
	}
	return out
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(filepath.Join(dir, "logs"), false, nil)
	day := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	sink.clock = func() time.Time { return day }

	sink.Append(context.Background(), OpEvent{Action: "PAGE_VISIT", Path: "/home"})
	sink.Append(context.Background(), OpEvent{Action: "API_CALL", Path: "/v1/x", DurationMS: 12})

	lines := readLines(t, filepath.Join(dir, "logs", "ops-2025-03-10.log"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Action != "PAGE_VISIT" || lines[1].Action != "API_CALL" {
		t.Fatalf("unexpected order: %+v", lines)
	}
	if lines[0].Timestamp.IsZero() {
		t.Fatalf("expected default timestamp")
	}
}

func TestFileSink_PartitionsByUTCDay(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, false, nil)

	day1 := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)

	sink.clock = func() time.Time { return day1 }
	sink.Append(context.Background(), OpEvent{Action: "A"})
	sink.Append(context.Background(), OpEvent{Action: "B"})

	sink.clock = func() time.Time { return day2 }
	sink.Append(context.Background(), OpEvent{Action: "C"})

	first := readLines(t, filepath.Join(dir, "ops-2025-03-10.log"))
	second := readLines(t, filepath.Join(dir, "ops-2025-03-11.log"))
	if len(first) != 2 {
		t.Fatalf("expected 2 lines in first day file, got %d", len(first))
	}
	if len(second) != 1 || second[0].Action != "C" {
		t.Fatalf("expected new file for next day, got %+v", second)
	}
}

func TestFileSink_CallerTimestampPreserved(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, false, nil)
	sink.clock = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	stamp := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	sink.Append(context.Background(), OpEvent{Action: "X", Timestamp: stamp})

	lines := readLines(t, filepath.Join(dir, "ops-2025-03-10.log"))
	if !lines[0].Timestamp.Equal(stamp) {
		t.Fatalf("caller timestamp replaced: %v", lines[0].Timestamp)
	}
}

func TestFileSink_WriteFailureDoesNotPanic(t *testing.T) {
	// Point the sink at a path that cannot be a directory.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "occupied")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	sink := NewFileSink(filepath.Join(blocked, "logs"), false, nil)
	sink.Append(context.Background(), OpEvent{Action: "X"}) // must be swallowed
}

func TestFileSink_RemoveOlderThan(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, false, nil)

	oldFile := filepath.Join(dir, "ops-2025-01-01.log")
	newFile := filepath.Join(dir, "ops-2025-03-10.log")
	if err := os.WriteFile(oldFile, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(newFile, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	past := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatalf("setup: %v", err)
	}

	removed := sink.RemoveOlderThan(time.Now().Add(-7 * 24 * time.Hour))
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Fatalf("expected old file gone")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatalf("expected recent file kept: %v", err)
	}
}
