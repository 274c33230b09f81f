package tracker

import "time"

// Host abstracts the runtime the tracker instruments, so the breadcrumb and
// capture logic stays host-agnostic and testable without a real page. A
// browser-backed implementation (e.g. WASM glue) forwards native signals into
// the Tracker's Record*/Capture* methods and answers the queries below.
type Host interface {
	// URL is the current page or screen location.
	URL() string
	UserAgent() string
	// Viewport returns the visible width and height, zero when unknown.
	Viewport() (width, height int)
	// Online reports current connectivity. Transitions are pushed to the
	// Tracker via SetOnline by the host glue.
	Online() bool
	// PageLoad returns the initial load duration once it is known.
	PageLoad() (time.Duration, bool)
	// NetworkType is the effective connection type ("4g", "wifi", ...), empty
	// when the host cannot tell.
	NetworkType() string
}

// StaticHost is a trivial Host for tests and headless use.
type StaticHost struct {
	PageURL   string
	Agent     string
	Width     int
	Height    int
	Connected bool
	LoadTime  time.Duration
	Network   string
}

func (h *StaticHost) URL() string       { return h.PageURL }
func (h *StaticHost) UserAgent() string { return h.Agent }
func (h *StaticHost) Viewport() (int, int) {
	return h.Width, h.Height
}
func (h *StaticHost) Online() bool { return h.Connected }
func (h *StaticHost) PageLoad() (time.Duration, bool) {
	return h.LoadTime, h.LoadTime > 0
}
func (h *StaticHost) NetworkType() string { return h.Network }
