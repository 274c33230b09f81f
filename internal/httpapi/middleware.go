package httpapi

import (
	"time"

	"campus-platform/internal/audit"
	"campus-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequestInfoMiddleware resolves request-origin metadata once and attaches it
// to the request context, so audit sinks can merge IP and user agent into
// events without handlers threading them by hand.
func RequestInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := audit.RequestInfoFrom(c.Request)
		c.Request = c.Request.WithContext(audit.WithRequestInfo(c.Request.Context(), info))
		c.Next()
	}
}

// TelemetryMiddleware records an API_CALL operational event for every request
// that passes through it. Wire it on authenticated groups only; the public
// ingestion endpoint records its own telemetry.
func TelemetryMiddleware(sys *audit.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		actorUserID, _ := auth.UserID(c.Request.Context())
		sys.LogAPICall(c.Request.Context(), c.Request.Method, path, time.Since(start), actorUserID)
	}
}
