package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"campus-platform/internal/audit"
	"campus-platform/internal/auth"
	"campus-platform/internal/rbac"
	"campus-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth    *auth.Manager
	Audit   *audit.System
	Reports *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID   string `json:"user_id"`
	SchoolID string `json:"school_id"`
	Role     string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.SchoolID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, school_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.SchoolID, req.Role)
	if err != nil {
		if h.Audit != nil {
			h.Audit.LogAuth(c.Request.Context(), "LOGIN_FAILED", req.UserID, false, map[string]any{"reason": "issuance"})
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	if h.Audit != nil {
		h.Audit.LogAuth(c.Request.Context(), "LOGIN", req.UserID, true, map[string]any{"school_id": req.SchoolID})
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Audit reads ---

// GetRecentCritical returns the newest critical events, optionally filtered by
// category and actor. RBAC: school_admin, principal, auditor or super_admin.
func (h Handlers) GetRecentCritical(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}

	limit := queryInt(c, "limit", 0)
	category := audit.Category(c.Query("category"))
	if category != "" && !audit.ValidCategory(category) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	events, err := h.Audit.RecentCritical(c.Request.Context(), limit, category, c.Query("actor_user_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetHighRisk returns events at or above min_score within the last hours window.
func (h Handlers) GetHighRisk(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}

	minScore := queryInt(c, "min_score", 0)
	hours := queryInt(c, "hours", 0)

	events, err := h.Audit.HighRisk(c.Request.Context(), minScore, hours)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type cleanupRequest struct {
	DaysToKeep int `json:"days_to_keep"`
}

// PostCleanup runs a retention pass. RBAC: super_admin only; this is the single
// sanctioned destructive path on audit data.
func (h Handlers) PostCleanup(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	adminUserID, _ := auth.UserID(c.Request.Context())
	res, err := h.Audit.Cleanup(c.Request.Context(), req.DaysToKeep)
	h.Audit.LogDataCritical(c.Request.Context(), "AUDIT_CLEANUP", adminUserID, "", map[string]any{
		"days_to_keep":   req.DaysToKeep,
		"events_deleted": res.EventsDeleted,
		"files_deleted":  res.FilesDeleted,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Reporting ---

func (h Handlers) GetActivitySummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	schoolID, err := auth.SchoolID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "school_id required"})
		return
	}
	rng, ok := queryRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.ActivitySummary(c.Request.Context(), reporting.ActivitySummaryRequest{
		SchoolID: schoolID,
		Range:    rng,
		Category: c.Query("category"),
	})
	if err == reporting.ErrInvalidRequest {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting query failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetDailyBreakdown(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	schoolID, err := auth.SchoolID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "school_id required"})
		return
	}
	rng, ok := queryRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.DailyBreakdown(c.Request.Context(), reporting.DailyBreakdownRequest{
		SchoolID: schoolID,
		Range:    rng,
		Category: c.Query("category"),
	})
	if err == reporting.ErrInvalidRequest {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting query failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetActorActivity(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	schoolID, err := auth.SchoolID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "school_id required"})
		return
	}
	rng, ok := queryRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.ActorActivity(c.Request.Context(), reporting.ActorActivityRequest{
		SchoolID: schoolID,
		Range:    rng,
		Limit:    queryInt(c, "limit", 0),
	})
	if err == reporting.ErrInvalidRequest {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting query failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// queryRange parses from/to as RFC3339; aborts with 400 on bad input.
func queryRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

// Convenience middleware bundles.

func RequireSchoolAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireSchool(), rbac.RequireAnyRole(roles...)}
}
