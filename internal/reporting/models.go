package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ActivitySummaryRequest requests aggregated audit activity.
// School isolation: SchoolID is required.

type ActivitySummaryRequest struct {
	SchoolID string    `json:"school_id"`
	Range    TimeRange `json:"range"`
	Category string    `json:"category,omitempty"`
}

type ActivitySummary struct {
	SchoolID string `json:"school_id"`
	Category string `json:"category,omitempty"`

	TotalEvents    int            `json:"total_events"`
	ByCategory     map[string]int `json:"by_category"`
	FailedEvents   int            `json:"failed_events"`
	HighRiskEvents int            `json:"high_risk_events"`
	UniqueActors   int            `json:"unique_actors"`
}

// DailyBreakdownRequest requests per-day event counts.
// Days are bucketed in UTC, matching the operational file partitioning.

type DailyBreakdownRequest struct {
	SchoolID string    `json:"school_id"`
	Range    TimeRange `json:"range"`
	Category string    `json:"category,omitempty"`
}

type DayCount struct {
	Day      string `json:"day"` // YYYY-MM-DD, UTC
	Events   int    `json:"events"`
	Failed   int    `json:"failed"`
	HighRisk int    `json:"high_risk"`
}

type DailyBreakdown struct {
	SchoolID string     `json:"school_id"`
	Days     []DayCount `json:"days"`
}

// ActorActivityRequest requests the most active actors in a window,
// useful for spotting compromised or abusive accounts.

type ActorActivityRequest struct {
	SchoolID string    `json:"school_id"`
	Range    TimeRange `json:"range"`
	Limit    int       `json:"limit,omitempty"`
}

type ActorCount struct {
	ActorUserID string `json:"actor_user_id"`
	Events      int    `json:"events"`
	Failed      int    `json:"failed"`
	MaxRisk     int    `json:"max_risk"`
}

type ActorActivity struct {
	SchoolID string       `json:"school_id"`
	Actors   []ActorCount `json:"actors"`
}
