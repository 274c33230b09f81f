package audit

import (
	"context"
	"time"
)

// Repository is the persistence contract for critical audit events.
//
// It MUST be append-only for writes. The only destructive operation is
// DeleteOlderThan, which exists solely for retention cleanup.
type Repository interface {
	Append(ctx context.Context, e Event) error

	// Recent returns the newest events first, optionally filtered by category
	// and/or actor. Zero values disable a filter.
	Recent(ctx context.Context, limit int, category Category, actorUserID string) ([]Event, error)

	// HighRisk returns events with risk_score >= minScore and timestamp >= since,
	// most risky first.
	HighRisk(ctx context.Context, minScore int, since time.Time) ([]Event, error)

	// DeleteOlderThan removes events with timestamp strictly before cutoff and
	// returns the number of rows removed. An event timestamped exactly at the
	// cutoff is retained.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OperationalSink receives operational telemetry records. Implementations are
// best-effort and never return an error: observability must not perturb the
// observed system.
type OperationalSink interface {
	Append(ctx context.Context, e OpEvent)
}

// NoOpSink drops operational events. Useful as a default in tests.
type NoOpSink struct{}

func (NoOpSink) Append(context.Context, OpEvent) {}
