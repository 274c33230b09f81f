package audit

import (
	"context"
	"log/slog"
	"time"
)

// Default risk scores applied by the convenience constructors.
const (
	defaultRiskAuthOK     = 5
	defaultRiskAuthFailed = 25
	defaultRiskSecurity   = 40
)

// System is the single entry point for audit logging. It routes critical
// events (those carrying a category) to the relational sink and operational
// telemetry to the file sink, and exposes the administrative read surface.
//
// Construct one System at the composition root and inject it; there is no
// package-level singleton.
type System struct {
	critical *CriticalSink
	ops      OperationalSink
	repo     Repository
	files    *FileSink
	log      *slog.Logger
	clock    func() time.Time
}

// Options configures optional System behavior.
type Options struct {
	// EscalationThreshold is the minimum risk score that also produces an
	// operational HIGH_RISK_ record. Zero means DefaultEscalationThreshold.
	EscalationThreshold int
	Logger              *slog.Logger
}

// NewSystem wires the dual-sink pipeline. files may be nil when operational
// events go elsewhere (tests); in that case ops is used as-is and Cleanup only
// touches the repository.
func NewSystem(repo Repository, ops OperationalSink, files *FileSink, opts Options) *System {
	if ops == nil && files != nil {
		ops = files
	}
	if ops == nil {
		ops = NoOpSink{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &System{
		critical: NewCriticalSink(repo, ops, opts.EscalationThreshold, log),
		ops:      ops,
		repo:     repo,
		files:    files,
		log:      log,
		clock:    time.Now,
	}
}

// Log dispatches on the shape of the event: an Event (carries a category) goes
// to the critical sink, an OpEvent to the operational sink. An Event without a
// category is demoted to an operational record rather than rejected.
func (s *System) Log(ctx context.Context, event any) {
	switch e := event.(type) {
	case Event:
		if e.Category == "" {
			s.ops.Append(ctx, OpEvent{
				Action:       e.Action,
				ActorUserID:  e.ActorUserID,
				ActorStaffID: e.ActorStaffID,
				IPAddress:    e.IPAddress,
				Metadata:     e.Metadata,
			})
			return
		}
		s.critical.Persist(ctx, e)
	case OpEvent:
		s.ops.Append(ctx, e)
	default:
		s.log.Warn("audit: unsupported event shape dropped")
	}
}

/* ===================== TYPED CONVENIENCE METHODS ===================== */

// LogAuth records an authentication event. Failed attempts default to risk 25,
// successful ones to 5.
func (s *System) LogAuth(ctx context.Context, action, actorUserID string, success bool, md map[string]any) {
	score := defaultRiskAuthOK
	if !success {
		score = defaultRiskAuthFailed
	}
	s.critical.Persist(ctx, Event{
		Category:    CategoryAuth,
		Action:      action,
		ActorUserID: actorUserID,
		Success:     boolPtr(success),
		RiskScore:   intPtr(score),
		Metadata:    md,
	})
}

// LogSecurity records a security event. Defaults to risk 40.
func (s *System) LogSecurity(ctx context.Context, action, actorUserID string, md map[string]any) {
	s.critical.Persist(ctx, Event{
		Category:    CategorySecurity,
		Action:      action,
		ActorUserID: actorUserID,
		RiskScore:   intPtr(defaultRiskSecurity),
		Metadata:    md,
	})
}

// LogDataCritical records a sensitive data operation against a target user.
// The score is computed from event attributes.
func (s *System) LogDataCritical(ctx context.Context, action, actorUserID, targetUserID string, md map[string]any) {
	s.critical.Persist(ctx, Event{
		Category:     CategoryDataCritical,
		Action:       action,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Metadata:     md,
	})
}

// LogPermission records a role or permission change against a target staff
// member. The score is computed from event attributes.
func (s *System) LogPermission(ctx context.Context, action, actorUserID, targetStaffID string, md map[string]any) {
	s.critical.Persist(ctx, Event{
		Category:      CategoryPermission,
		Action:        action,
		ActorUserID:   actorUserID,
		TargetStaffID: targetStaffID,
		Metadata:      md,
	})
}

// LogPageVisit records a page visit as operational telemetry.
func (s *System) LogPageVisit(ctx context.Context, path, actorUserID, userAgent string) {
	s.ops.Append(ctx, OpEvent{
		Action:      "PAGE_VISIT",
		ActorUserID: actorUserID,
		Path:        path,
		UserAgent:   userAgent,
	})
}

// LogAPICall records an API call timing as operational telemetry.
func (s *System) LogAPICall(ctx context.Context, method, path string, duration time.Duration, actorUserID string) {
	s.ops.Append(ctx, OpEvent{
		Action:      "API_CALL",
		ActorUserID: actorUserID,
		Path:        path,
		Method:      method,
		DurationMS:  duration.Milliseconds(),
	})
}

/* ===================== ADMINISTRATIVE READS ===================== */

// RecentCritical returns the newest critical events first, optionally filtered.
func (s *System) RecentCritical(ctx context.Context, limit int, category Category, actorUserID string) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.Recent(ctx, limit, category, actorUserID)
}

// HighRisk returns events at or above minScore within the last hoursBack
// hours, most risky first.
func (s *System) HighRisk(ctx context.Context, minScore, hoursBack int) ([]Event, error) {
	if minScore <= 0 {
		minScore = DefaultEscalationThreshold
	}
	if hoursBack <= 0 {
		hoursBack = 24
	}
	since := s.clock().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	return s.repo.HighRisk(ctx, minScore, since)
}

// CleanupResult summarizes one retention pass.
type CleanupResult struct {
	EventsDeleted int64 `json:"events_deleted"`
	FilesDeleted  int   `json:"files_deleted"`
}

// Cleanup removes critical events strictly older than daysToKeep days and
// operational day files whose modification time predates the cutoff.
// File removal is best-effort per file; a row-delete failure is returned but
// does not prevent file cleanup.
func (s *System) Cleanup(ctx context.Context, daysToKeep int) (CleanupResult, error) {
	if daysToKeep <= 0 {
		daysToKeep = 90
	}
	cutoff := s.clock().UTC().AddDate(0, 0, -daysToKeep)

	var res CleanupResult
	var repoErr error
	if s.repo != nil {
		res.EventsDeleted, repoErr = s.repo.DeleteOlderThan(ctx, cutoff)
		if repoErr != nil {
			s.log.Error("audit cleanup: row delete failed", "err", repoErr)
		}
	}
	if s.files != nil {
		res.FilesDeleted = s.files.RemoveOlderThan(cutoff)
	}
	return res, repoErr
}
