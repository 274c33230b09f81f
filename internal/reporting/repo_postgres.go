package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"campus-platform/internal/audit"
)

// PostgresRepo reads the audit_events table written by the audit pipeline.
// Reporting never writes; aggregation happens in the service layer so the
// same math applies to every repository implementation.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListEvents(ctx context.Context, schoolID string, from, to time.Time, category audit.Category) ([]audit.Event, error) {
	query := `
		SELECT id, school_id, category, action, actor_user_id, actor_staff_id,
			target_user_id, target_staff_id, ip_address, session_id, success,
			error_message, risk_score, metadata, created_at
		FROM audit_events
		WHERE school_id = $1 AND created_at >= $2 AND created_at < $3`
	args := []any{schoolID, from, to}

	if category != "" {
		query += ` AND category = $4`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Event, 0)
	for rows.Next() {
		var e audit.Event
		var cat string
		var success bool
		var score int
		var metadataJSON []byte

		err := rows.Scan(
			&e.ID,
			&e.SchoolID,
			&cat,
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

		e.Category = audit.Category(cat)
		e.Success = &success
		e.RiskScore = &score
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("reporting: unmarshal metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
