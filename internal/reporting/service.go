package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"campus-platform/internal/audit"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// highRiskFloor marks an event as high-risk for reporting purposes.
// Kept aligned with the escalation default of the audit pipeline.
const highRiskFloor = audit.DefaultEscalationThreshold

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce school filtering.
// - Implementations should query the immutable critical-event store only.

type Repository interface {
	ListEvents(ctx context.Context, schoolID string, from, to time.Time, category audit.Category) ([]audit.Event, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) ActivitySummary(ctx context.Context, req ActivitySummaryRequest) (ActivitySummary, error) {
	if err := s.check(req.SchoolID, req.Range); err != nil {
		return ActivitySummary{}, err
	}

	events, err := s.repo.ListEvents(ctx, req.SchoolID, req.Range.From, req.Range.To, audit.Category(req.Category))
	if err != nil {
		return ActivitySummary{}, err
	}

	out := ActivitySummary{SchoolID: req.SchoolID, Category: req.Category, ByCategory: map[string]int{}}
	actors := map[string]struct{}{}
	for _, e := range events {
		out.TotalEvents++
		out.ByCategory[string(e.Category)]++
		if e.Failed() {
			out.FailedEvents++
		}
		if e.RiskScore != nil && *e.RiskScore >= highRiskFloor {
			out.HighRiskEvents++
		}
		if e.ActorUserID != "" {
			actors[e.ActorUserID] = struct{}{}
		}
	}
	out.UniqueActors = len(actors)
	return out, nil
}

func (s *Service) DailyBreakdown(ctx context.Context, req DailyBreakdownRequest) (DailyBreakdown, error) {
	if err := s.check(req.SchoolID, req.Range); err != nil {
		return DailyBreakdown{}, err
	}

	events, err := s.repo.ListEvents(ctx, req.SchoolID, req.Range.From, req.Range.To, audit.Category(req.Category))
	if err != nil {
		return DailyBreakdown{}, err
	}

	byDay := map[string]*DayCount{}
	for _, e := range events {
		day := e.Timestamp.UTC().Format("2006-01-02")
		dc, ok := byDay[day]
		if !ok {
			dc = &DayCount{Day: day}
			byDay[day] = dc
		}
		dc.Events++
		if e.Failed() {
			dc.Failed++
		}
		if e.RiskScore != nil && *e.RiskScore >= highRiskFloor {
			dc.HighRisk++
		}
	}

	out := DailyBreakdown{SchoolID: req.SchoolID, Days: make([]DayCount, 0, len(byDay))}
	for _, dc := range byDay {
		out.Days = append(out.Days, *dc)
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Day < out.Days[j].Day })
	return out, nil
}

func (s *Service) ActorActivity(ctx context.Context, req ActorActivityRequest) (ActorActivity, error) {
	if err := s.check(req.SchoolID, req.Range); err != nil {
		return ActorActivity{}, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	events, err := s.repo.ListEvents(ctx, req.SchoolID, req.Range.From, req.Range.To, "")
	if err != nil {
		return ActorActivity{}, err
	}

	byActor := map[string]*ActorCount{}
	for _, e := range events {
		if e.ActorUserID == "" {
			continue
		}
		ac, ok := byActor[e.ActorUserID]
		if !ok {
			ac = &ActorCount{ActorUserID: e.ActorUserID}
			byActor[e.ActorUserID] = ac
		}
		ac.Events++
		if e.Failed() {
			ac.Failed++
		}
		if e.RiskScore != nil && *e.RiskScore > ac.MaxRisk {
			ac.MaxRisk = *e.RiskScore
		}
	}

	out := ActorActivity{SchoolID: req.SchoolID, Actors: make([]ActorCount, 0, len(byActor))}
	for _, ac := range byActor {
		out.Actors = append(out.Actors, *ac)
	}
	sort.Slice(out.Actors, func(i, j int) bool {
		if out.Actors[i].Events != out.Actors[j].Events {
			return out.Actors[i].Events > out.Actors[j].Events
		}
		return out.Actors[i].ActorUserID < out.Actors[j].ActorUserID
	})
	if len(out.Actors) > limit {
		out.Actors = out.Actors[:limit]
	}
	return out, nil
}

func (s *Service) check(schoolID string, r TimeRange) error {
	if schoolID == "" {
		return ErrInvalidRequest
	}
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	if s.repo == nil {
		return errors.New("reporting: repository not configured")
	}
	return nil
}
