package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Default escalation threshold: critical events at or above this risk score
// also leave a file-based trail through the operational sink.
const DefaultEscalationThreshold = 50

// CriticalSink persists risk-scored critical events to the repository.
//
// Failure semantics:
// - A repository write failure is contained here: the sink writes a degraded
//   AUDIT_LOG_FAILURE record through the operational sink instead, so the
//   failure itself is never silently lost.
// - Persist never propagates an error to the caller. Audit logging must never
//   break the feature that triggered it.
type CriticalSink struct {
	repo      Repository
	ops       OperationalSink
	threshold int
	log       *slog.Logger
	clock     func() time.Time
}

func NewCriticalSink(repo Repository, ops OperationalSink, threshold int, log *slog.Logger) *CriticalSink {
	if ops == nil {
		ops = NoOpSink{}
	}
	if threshold <= 0 {
		threshold = DefaultEscalationThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &CriticalSink{
		repo:      repo,
		ops:       ops,
		threshold: threshold,
		log:       log,
		clock:     time.Now,
	}
}

// Persist scores and writes one immutable record for e.
//
// Ambient request context from ctx (IP, user agent, method, path) is merged in
// without overwriting fields the caller set explicitly. When the resulting
// score reaches the escalation threshold, a HIGH_RISK_<action> operational
// record carrying the score and category is emitted as a secondary trail.
func (s *CriticalSink) Persist(ctx context.Context, e Event) {
	if info, ok := RequestInfoFromContext(ctx); ok {
		e = mergeRequestInfo(e, info)
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Timestamp = s.clock().UTC()

	if e.RiskScore == nil {
		e.RiskScore = intPtr(RiskScore(e))
	} else {
		e.RiskScore = intPtr(ClampRisk(*e.RiskScore))
	}

	if s.repo == nil {
		s.fallback(ctx, e, nil)
		return
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.fallback(ctx, e, err)
		return
	}

	if *e.RiskScore >= s.threshold {
		s.escalate(ctx, e)
	}
}

func mergeRequestInfo(e Event, info RequestInfo) Event {
	if e.IPAddress == "" {
		e.IPAddress = info.IPAddress
	}
	if info.UserAgent == "" && info.Method == "" && info.Path == "" {
		return e
	}
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	setIfAbsent(e.Metadata, "user_agent", info.UserAgent)
	setIfAbsent(e.Metadata, "method", info.Method)
	setIfAbsent(e.Metadata, "path", info.Path)
	return e
}

func setIfAbsent(md map[string]any, key, value string) {
	if value == "" {
		return
	}
	if _, ok := md[key]; !ok {
		md[key] = value
	}
}

func (s *CriticalSink) escalate(ctx context.Context, e Event) {
	md := make(map[string]any, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md["risk_score"] = *e.RiskScore
	md["category"] = string(e.Category)

	s.ops.Append(ctx, OpEvent{
		Action:       "HIGH_RISK_" + e.Action,
		ActorUserID:  e.ActorUserID,
		ActorStaffID: e.ActorStaffID,
		IPAddress:    e.IPAddress,
		Metadata:     md,
	})
}

func (s *CriticalSink) fallback(ctx context.Context, e Event, cause error) {
	md := map[string]any{
		"original_action":   e.Action,
		"original_category": string(e.Category),
		"risk_score":        *e.RiskScore,
	}
	if cause != nil {
		md["error"] = cause.Error()
	}

	s.ops.Append(ctx, OpEvent{
		Action:      "AUDIT_LOG_FAILURE",
		ActorUserID: e.ActorUserID,
		IPAddress:   e.IPAddress,
		Metadata:    md,
	})
	s.log.Error("critical audit write failed", "action", e.Action, "err", cause)
}
