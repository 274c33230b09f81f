package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"campus-platform/internal/audit"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.
// It enforces school isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Events []audit.Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListEvents(ctx context.Context, schoolID string, from, to time.Time, category audit.Category) ([]audit.Event, error) {
	if schoolID == "" {
		return nil, errors.New("school_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Event, 0)
	for _, e := range r.Events {
		if e.SchoolID != schoolID {
			continue
		}
		if !e.Timestamp.IsZero() {
			if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
				continue
			}
		}
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
