package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-platform/internal/audit"
	"campus-platform/internal/auth"
	"campus-platform/internal/config"
	"campus-platform/internal/ingest"
	"campus-platform/internal/reporting"
	"campus-platform/pkg/logger"
	"campus-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Audit pipeline: critical events to Postgres, operational telemetry to
	// date-partitioned files.
	files := audit.NewFileSink(cfg.Audit.LogsDir, cfg.IsProduction(), log)
	auditSys := audit.NewSystem(audit.NewPostgresRepo(db), nil, files, audit.Options{
		EscalationThreshold: cfg.Audit.EscalationThreshold,
		Logger:              log,
	})

	reports := reporting.NewService(reporting.NewPostgresRepo(db))
	limiter := ingest.NewRedisLimiter(rdb, cfg.Ingest.RateLimitPerMinute)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log, "/healthz"))

	registerRoutes(r, routeDeps{
		auth:    authManager,
		audit:   auditSys,
		reports: reports,
		limiter: limiter,
		log:     log,
	})

	// Retention loop: one pass per interval, stopped by root context.
	go func() {
		ticker := time.NewTicker(cfg.Audit.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				res, err := auditSys.Cleanup(rootCtx, cfg.Audit.RetentionDays)
				if err != nil {
					log.Error("audit retention pass failed", "err", err)
					continue
				}
				log.Info("audit retention pass",
					"events_deleted", res.EventsDeleted,
					"files_deleted", res.FilesDeleted,
				)
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
