package main

import (
	"log/slog"

	"campus-platform/internal/audit"
	"campus-platform/internal/auth"
	"campus-platform/internal/httpapi"
	"campus-platform/internal/ingest"
	"campus-platform/internal/rbac"
	"campus-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	auth    *auth.Manager
	audit   *audit.System
	reports *reporting.Service
	limiter ingest.RateLimiter
	log     *slog.Logger
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	r.Use(httpapi.RequestInfoMiddleware())

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Client error ingestion (public).
	// Errors happen to logged-out users too, so this endpoint carries no auth;
	// the Redis rate limit is its only gate.
	{
		h := ingest.NewHandler(d.audit, d.limiter, d.log)
		h.Register(r.Group("/v1/ingest"))
	}

	h := httpapi.Handlers{Auth: d.auth, Audit: d.audit, Reports: d.reports}

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.auth))
	v1.Use(httpapi.TelemetryMiddleware(d.audit))
	{
		// Identity echo, useful for client debugging.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			sid, _ := auth.SchoolID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "school_id": sid, "role": role})
		})

		// ADMIN audit reads.
		// Auditors get read access; the hidden platform_ops role is intentionally
		// NOT included unless explicitly desired.
		adminRead := v1.Group("/admin")
		adminRead.Use(httpapi.RequireSchoolAndAnyRole(rbac.RoleSchoolAdmin, rbac.RolePrincipal, rbac.RoleAuditor)...)
		{
			adminRead.GET("/audit/recent", h.GetRecentCritical)
			adminRead.GET("/audit/high-risk", h.GetHighRisk)

			adminRead.GET("/reports/activity", h.GetActivitySummary)
			adminRead.GET("/reports/daily", h.GetDailyBreakdown)
			adminRead.GET("/reports/actors", h.GetActorActivity)
		}

		// Retention cleanup is destructive: super_admin only.
		adminWrite := v1.Group("/admin")
		adminWrite.Use(httpapi.RequireSchoolAndAnyRole(rbac.RoleSuperAdmin)...)
		{
			adminWrite.POST("/audit/cleanup", h.PostCleanup)
		}
	}
}
