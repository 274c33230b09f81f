package tracker

import (
	"context"
	"log/slog"
)

// LogHandler decorates a slog.Handler so log output becomes part of the
// breadcrumb trail: Info and Warn records append a console breadcrumb, Error
// records additionally synthesize a capture. The record always passes through
// to the wrapped handler, so visible log behavior is unchanged.
//
// Debug records are deliberately not observed; the tracker logs its own
// delivery diagnostics at Debug to avoid feeding back into capture.
func (t *Tracker) LogHandler(next slog.Handler) slog.Handler {
	return &logHandler{tracker: t, next: next}
}

type logHandler struct {
	tracker *Tracker
	next    slog.Handler
}

func (h *logHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelInfo {
		// Observe even when the wrapped handler would discard the record.
		return true
	}
	return h.next.Enabled(ctx, level)
}

func (h *logHandler) Handle(ctx context.Context, rec slog.Record) error {
	switch rec.Level {
	case slog.LevelInfo, slog.LevelWarn:
		h.tracker.AddBreadcrumb(CategoryConsole, rec.Message, map[string]any{"level": rec.Level.String()})
	case slog.LevelError:
		h.tracker.AddBreadcrumb(CategoryConsole, rec.Message, map[string]any{"level": rec.Level.String()})
		h.tracker.CaptureException(rec.Message, "", ErrorTypeConsole, nil)
	}

	if !h.next.Enabled(ctx, rec.Level) {
		return nil
	}
	return h.next.Handle(ctx, rec)
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{tracker: h.tracker, next: h.next.WithAttrs(attrs)}
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	return &logHandler{tracker: h.tracker, next: h.next.WithGroup(name)}
}
