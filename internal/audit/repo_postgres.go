package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresRepo stores critical events in an append-only audit_events table.
//
// Expected schema (metadata is JSONB):
//
//	CREATE TABLE audit_events (
//	    id              UUID PRIMARY KEY,
//	    school_id       TEXT NOT NULL DEFAULT '',
//	    category        TEXT NOT NULL,
//	    action          TEXT NOT NULL,
//	    actor_user_id   TEXT NOT NULL DEFAULT '',
//	    actor_staff_id  TEXT NOT NULL DEFAULT '',
//	    target_user_id  TEXT NOT NULL DEFAULT '',
//	    target_staff_id TEXT NOT NULL DEFAULT '',
//	    ip_address      TEXT NOT NULL DEFAULT '',
//	    session_id      TEXT NOT NULL DEFAULT '',
//	    success         BOOLEAN NOT NULL DEFAULT TRUE,
//	    error_message   TEXT NOT NULL DEFAULT '',
//	    risk_score      INT NOT NULL,
//	    metadata        JSONB,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
//
// An INSERT-only policy (or a trigger rejecting UPDATE/DELETE) is recommended;
// DeleteOlderThan is the single sanctioned destructive path.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const eventColumns = `id, school_id, category, action, actor_user_id, actor_staff_id,
	target_user_id, target_staff_id, ip_address, session_id, success, error_message,
	risk_score, metadata, created_at`

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	var metadataJSON []byte
	var err error
	if e.Metadata != nil {
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("audit: marshal metadata: %w", err)
		}
	}

	success := true
	if e.Success != nil {
		success = *e.Success
	}
	score := 0
	if e.RiskScore != nil {
		score = *e.RiskScore
	}

	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.SchoolID,
		string(e.Category),
		e.Action,
		e.ActorUserID,
		e.ActorStaffID,
		e.TargetUserID,
		e.TargetStaffID,
		e.IPAddress,
		e.SessionID,
		success,
		e.ErrorMessage,
		score,
		metadataJSON,
		e.Timestamp,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, limit int, category Category, actorUserID string) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_events WHERE 1=1`
	args := make([]any, 0, 3)
	paramIndex := 1

	if category != "" {
		query += fmt.Sprintf(` AND category = $%d`, paramIndex)
		args = append(args, string(category))
		paramIndex++
	}
	if actorUserID != "" {
		query += fmt.Sprintf(` AND actor_user_id = $%d`, paramIndex)
		args = append(args, actorUserID)
		paramIndex++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, paramIndex)
	args = append(args, limit)

	return r.queryEvents(ctx, query, args...)
}

func (r *PostgresRepo) HighRisk(ctx context.Context, minScore int, since time.Time) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE risk_score >= $1 AND created_at >= $2
		ORDER BY risk_score DESC, created_at DESC
	`
	return r.queryEvents(ctx, query, minScore, since)
}

func (r *PostgresRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	// Strict less-than: a row timestamped exactly at the cutoff is retained.
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepo) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		var category string
		var success bool
		var score int
		var metadataJSON []byte

		err := rows.Scan(
			&e.ID,
			&e.SchoolID,
			&category,
			&e.Action,
			&e.ActorUserID,
			&e.ActorStaffID,
			&e.TargetUserID,
			&e.TargetStaffID,
			&e.IPAddress,
			&e.SessionID,
			&success,
			&e.ErrorMessage,
			&score,
			&metadataJSON,
			&e.Timestamp,
		)
		if err != nil {
			return nil, err
		}

		e.Category = Category(category)
		e.Success = boolPtr(success)
		e.RiskScore = intPtr(score)
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("audit: unmarshal metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
