package ingest

import (
	"log/slog"
	"net/http"

	"campus-platform/internal/audit"
	"campus-platform/internal/tracker"

	"github.com/gin-gonic/gin"
)

const (
	maxMessageLen = 2000
	maxStackLen   = 16000
)

// crashTypes are the error types that also produce a critical audit event.
// Everything else stays operational-only telemetry.
var crashTypes = map[string]bool{
	tracker.ErrorTypeUncaught:  true,
	tracker.ErrorTypeRejection: true,
}

var knownErrorTypes = map[string]bool{
	tracker.ErrorTypeUncaught:    true,
	tracker.ErrorTypeRejection:   true,
	tracker.ErrorTypeConsole:     true,
	tracker.ErrorTypeAPI:         true,
	tracker.ErrorTypeNetwork:     true,
	tracker.ErrorTypePerformance: true,
	tracker.ErrorTypeManual:      true,
}

// Handler accepts client error envelopes on the public ingestion endpoint.
// The endpoint is unauthenticated (errors happen to logged-out users too),
// so it is rate limited per client IP and trusts nothing in the payload.
type Handler struct {
	sys     *audit.System
	limiter RateLimiter
	log     *slog.Logger
}

func NewHandler(sys *audit.System, limiter RateLimiter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{sys: sys, limiter: limiter, log: log}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/errors", h.PostError)
}

func (h *Handler) PostError(c *gin.Context) {
	clientIP := c.ClientIP()

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			// Fail open: losing telemetry during a Redis blip beats dropping it.
			h.log.Warn("ingest: rate limiter unavailable", "err", err)
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
	}

	var env tracker.TrackedError
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if env.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if env.ErrorType == "" {
		env.ErrorType = tracker.ErrorTypeManual
	}
	if !knownErrorTypes[env.ErrorType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown error_type"})
		return
	}

	env.Message = truncate(env.Message, maxMessageLen)
	env.Stack = truncate(env.Stack, maxStackLen)
	if len(env.Breadcrumbs) > tracker.DefaultMaxBreadcrumbs {
		env.Breadcrumbs = env.Breadcrumbs[len(env.Breadcrumbs)-tracker.DefaultMaxBreadcrumbs:]
	}

	ctx := c.Request.Context()

	h.sys.Log(ctx, audit.OpEvent{
		Action:      "CLIENT_ERROR",
		ActorUserID: env.Context.UserID,
		Path:        env.Context.URL,
		UserAgent:   env.Context.UserAgent,
		IPAddress:   clientIP,
		Metadata: map[string]any{
			"error_type":  env.ErrorType,
			"message":     env.Message,
			"browser":     env.Context.Browser,
			"os":          env.Context.OS,
			"device":      env.Context.Device,
			"breadcrumbs": len(env.Breadcrumbs),
		},
	})

	if crashTypes[env.ErrorType] {
		h.sys.Log(ctx, audit.Event{
			Category:     audit.CategorySystem,
			Action:       "CLIENT_CRASH",
			ActorUserID:  env.Context.UserID,
			IPAddress:    clientIP,
			ErrorMessage: env.Message,
			Metadata: map[string]any{
				"error_type": env.ErrorType,
				"url":        env.Context.URL,
				"stack":      env.Stack,
				"browser":    env.Context.Browser,
				"os":         env.Context.OS,
			},
		})
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
