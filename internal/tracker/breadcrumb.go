package tracker

import "time"

// BreadcrumbCategory classifies a breadcrumb entry.
type BreadcrumbCategory string

const (
	CategoryNavigation  BreadcrumbCategory = "navigation"
	CategoryInteraction BreadcrumbCategory = "user-interaction"
	CategoryAPICall     BreadcrumbCategory = "api-call"
	CategoryConsole     BreadcrumbCategory = "console"
	CategoryCustom      BreadcrumbCategory = "custom"
)

// Breadcrumb is a timestamped trace of a recent client-side occurrence. It is
// retained in memory only, to give context to a later captured error.
type Breadcrumb struct {
	Timestamp time.Time          `json:"timestamp"`
	Category  BreadcrumbCategory `json:"category"`
	Message   string             `json:"message"`
	Data      map[string]any     `json:"data,omitempty"`
}

// DefaultMaxBreadcrumbs bounds the ring buffer.
const DefaultMaxBreadcrumbs = 50

// ring is a bounded FIFO of breadcrumbs. Once full, the oldest entry is
// silently dropped. Not safe for concurrent use; the Tracker serializes access.
type ring struct {
	max     int
	entries []Breadcrumb
}

func newRing(max int) *ring {
	if max <= 0 {
		max = DefaultMaxBreadcrumbs
	}
	return &ring{max: max}
}

func (r *ring) append(b Breadcrumb) {
	r.entries = append(r.entries, b)
	if len(r.entries) > r.max {
		// FIFO eviction only; shift off the oldest.
		over := len(r.entries) - r.max
		r.entries = append(r.entries[:0], r.entries[over:]...)
	}
}

// snapshot returns a copy so later appends cannot retroactively alter an
// already-captured error.
func (r *ring) snapshot() []Breadcrumb {
	out := make([]Breadcrumb, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *ring) clear() { r.entries = r.entries[:0] }

func (r *ring) len() int { return len(r.entries) }
