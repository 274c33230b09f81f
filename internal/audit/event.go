package audit

import "time"

// Category classifies a critical audit event. The set is closed; it drives the
// base risk score and is part of the storage contract.
type Category string

const (
	CategoryAuth         Category = "AUTH"
	CategorySecurity     Category = "SECURITY"
	CategoryDataCritical Category = "DATA_CRITICAL"
	CategoryPermission   Category = "PERMISSION"
	CategorySystem       Category = "SYSTEM"
)

// ValidCategory reports whether c is one of the closed category set.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryAuth, CategorySecurity, CategoryDataCritical, CategoryPermission, CategorySystem:
		return true
	default:
		return false
	}
}

// Event is an immutable, risk-scored critical audit record.
//
// Invariants:
// - Events are append-only; never updated or deleted outside retention cleanup.
// - Every persisted event carries a timestamp and a risk score in [0,100].
// - Actor and IP capture are best-effort; audit must never block critical flows.
type Event struct {
	ID       string   `json:"id" db:"id"`
	SchoolID string   `json:"school_id,omitempty" db:"school_id"`
	Category Category `json:"category" db:"category"`

	// Action is a free-form identifier of what happened, e.g. "LOGIN_FAILED".
	Action string `json:"action" db:"action"`

	// Actor is who performed the action; Target is who or what was affected.
	// A target differing from the actor flags a cross-user operation.
	ActorUserID   string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorStaffID  string `json:"actor_staff_id,omitempty" db:"actor_staff_id"`
	TargetUserID  string `json:"target_user_id,omitempty" db:"target_user_id"`
	TargetStaffID string `json:"target_staff_id,omitempty" db:"target_staff_id"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`
	SessionID string `json:"session_id,omitempty" db:"session_id"`

	// Success defaults to true when nil. A present ErrorMessage implies failure
	// context even when Success was not explicitly set false.
	Success      *bool  `json:"success,omitempty" db:"success"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`

	// RiskScore is computed at persistence time when nil. Supplied scores are
	// clamped to [0,100].
	RiskScore *int `json:"risk_score,omitempty" db:"risk_score"`

	// Metadata is an open bag for category-specific detail.
	Metadata map[string]any `json:"metadata,omitempty" db:"metadata"`

	// Timestamp is set by the sink at persistence time, not by the caller.
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// Failed reports whether the event represents a failed operation.
func (e Event) Failed() bool {
	return e.Success != nil && !*e.Success
}

// OpEvent is a lightweight operational telemetry record (page visits, API call
// timings, generic notes). It is appended to date-partitioned JSON-Lines files
// and never touches the relational store.
type OpEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	Action       string         `json:"action"`
	ActorUserID  string         `json:"actor_user_id,omitempty"`
	ActorStaffID string         `json:"actor_staff_id,omitempty"`
	Path         string         `json:"path,omitempty"`
	Method       string         `json:"method,omitempty"`
	DurationMS   int64          `json:"duration_ms,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// boolPtr and intPtr are small helpers for building events.
func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }
