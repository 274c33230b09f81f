package tracker

import "time"

// Error type tags carried on the wire. The values match what the ingestion
// endpoint receives from browser clients, so they are part of the contract.
const (
	ErrorTypeUncaught    = "javascript-error"
	ErrorTypeRejection   = "unhandled-rejection"
	ErrorTypeConsole     = "console-error"
	ErrorTypeAPI         = "api-error"
	ErrorTypeNetwork     = "network-error"
	ErrorTypePerformance = "performance-issue"
	ErrorTypeManual      = "manual"
)

// PageContext is the environment snapshot attached to every captured error.
type PageContext struct {
	URL       string    `json:"url"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`

	Device  string `json:"device"`
	OS      string `json:"os"`
	Browser string `json:"browser"`

	ViewportWidth  int `json:"viewport_width,omitempty"`
	ViewportHeight int `json:"viewport_height,omitempty"`

	PageLoadMS  int64  `json:"page_load_ms,omitempty"`
	NetworkType string `json:"network_type,omitempty"`

	UserID string `json:"user_id,omitempty"`
}

// TrackedError is the envelope shipped to the ingestion endpoint.
//
// Breadcrumbs are copied by value at capture time: later breadcrumb appends
// must not alter an envelope that was already captured.
type TrackedError struct {
	Message     string         `json:"message"`
	Stack       string         `json:"stack,omitempty"`
	ErrorType   string         `json:"error_type"`
	Context     PageContext    `json:"context"`
	Breadcrumbs []Breadcrumb   `json:"breadcrumbs"`
	Custom      map[string]any `json:"custom_data,omitempty"`
}
