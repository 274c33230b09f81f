package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink appends operational events to date-partitioned JSON-Lines files:
// one file per UTC calendar day, one JSON object per line.
//
// Invariants:
// - A day's file is only ever appended to; once the day rolls over it is
//   untouched until retention cleanup removes it.
// - Each record is written with a single append-mode write, so concurrent
//   writers are safe without higher-level locking.
// - Append never returns an error; write failures are reported through slog
//   only outside production.
type FileSink struct {
	dir        string
	production bool
	log        *slog.Logger

	// clock is injectable for deterministic day-roll tests.
	clock func() time.Time

	mkdir sync.Once
}

func NewFileSink(dir string, production bool, log *slog.Logger) *FileSink {
	if log == nil {
		log = slog.Default()
	}
	return &FileSink{
		dir:        dir,
		production: production,
		log:        log,
		clock:      time.Now,
	}
}

// Append writes one JSON line for e to the current UTC day's file, best-effort.
func (s *FileSink) Append(ctx context.Context, e OpEvent) {
	now := s.clock().UTC()
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}

	s.mkdir.Do(func() {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			s.diag("operational log dir create failed", err)
		}
	})

	line, err := json.Marshal(e)
	if err != nil {
		s.diag("operational event marshal failed", err)
		return
	}
	line = append(line, '\n')

	path := s.fileForDay(now)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.diag("operational log open failed", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		s.diag("operational log write failed", err)
	}
}

// RemoveOlderThan deletes day files whose modification time is before cutoff.
// Best-effort per file: one failure does not abort cleanup of the rest.
// Returns the number of files removed.
func (s *FileSink) RemoveOlderThan(cutoff time.Time) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.diag("operational log dir read failed", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.diag("operational log stat failed", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.diag("operational log delete failed", err)
			continue
		}
		removed++
	}
	return removed
}

// Dir returns the directory holding the day files.
func (s *FileSink) Dir() string { return s.dir }

func (s *FileSink) fileForDay(now time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("ops-%s.log", now.Format("2006-01-02")))
}

func (s *FileSink) diag(msg string, err error) {
	if s.production {
		return
	}
	s.log.Warn(msg, "err", err, "dir", s.dir)
}
