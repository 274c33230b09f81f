package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It is not intended for production use.

type MemoryRepo struct {
	mu     sync.Mutex
	events []Event

	// AppendErr, when set, is returned by Append. Tests use it to exercise the
	// critical sink's fallback path.
	AppendErr error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AppendErr != nil {
		return r.AppendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int, category Category, actorUserID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if category != "" && e.Category != category {
			continue
		}
		if actorUserID != "" && e.ActorUserID != actorUserID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepo) HighRisk(ctx context.Context, minScore int, since time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0)
	for _, e := range r.events {
		if e.RiskScore == nil || *e.RiskScore < minScore {
			continue
		}
		if e.Timestamp.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].RiskScore > *out[j].RiskScore
	})
	return out, nil
}

func (r *MemoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}

// Events returns a copy of all stored events in append order.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// MemorySink collects operational events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []OpEvent
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Append(ctx context.Context, e OpEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *MemorySink) Events() []OpEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OpEvent, len(s.events))
	copy(out, s.events)
	return out
}
