package tracker

import "strings"

// Classification is a coarse device/OS/browser split derived from a user
// agent string. It exists for triage grouping, not analytics accuracy.
type Classification struct {
	Device  string
	OS      string
	Browser string
}

// Classify sniffs a user agent string. Pure function; unknown inputs come back
// as "unknown"/"desktop" rather than failing.
func Classify(userAgent string) Classification {
	ua := strings.ToLower(userAgent)

	c := Classification{Device: "desktop", OS: "unknown", Browser: "unknown"}
	if ua == "" {
		c.Device = "unknown"
		return c
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		c.Device = "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		c.Device = "mobile"
	}

	switch {
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		c.OS = "ios"
	case strings.Contains(ua, "android"):
		c.OS = "android"
	case strings.Contains(ua, "windows"):
		c.OS = "windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		c.OS = "macos"
	case strings.Contains(ua, "linux"):
		c.OS = "linux"
	}

	// Order matters: Edge and Chrome both advertise "chrome"; Chrome and Edge
	// both advertise "safari".
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		c.Browser = "edge"
	case strings.Contains(ua, "firefox"):
		c.Browser = "firefox"
	case strings.Contains(ua, "chrome"):
		c.Browser = "chrome"
	case strings.Contains(ua, "safari"):
		c.Browser = "safari"
	}

	return c
}
