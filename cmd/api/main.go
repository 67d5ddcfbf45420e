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

	"gramsetu-backend/internal/analytics"
	"gramsetu-backend/internal/assignment"
	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/auth"
	"gramsetu-backend/internal/classify"
	"gramsetu-backend/internal/complaints"
	"gramsetu-backend/internal/config"
	"gramsetu-backend/internal/crs"
	"gramsetu-backend/internal/dedupe"
	"gramsetu-backend/internal/fraud"
	"gramsetu-backend/internal/httpapi"
	"gramsetu-backend/internal/nlp"
	"gramsetu-backend/internal/validation"
	"gramsetu-backend/pkg/logger"
	"gramsetu-backend/pkg/utils"

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

	// NLP capability is selected once at startup: with a base URL both the
	// zero-shot classifier and the embedder use the inference service, without
	// one the keyword and lexical fallbacks run for the life of the process.
	var zeroShot nlp.TextClassifier
	var embedder nlp.Embedder
	if cfg.NLP.BaseURL != "" {
		client := nlp.NewClient(cfg.NLP.BaseURL, cfg.NLP.Timeout)
		zeroShot = client
		embedder = client
		log.Info("nlp inference service enabled", "base_url", cfg.NLP.BaseURL)
	} else {
		log.Info("nlp inference service not configured, keyword fallbacks active")
	}

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	ratings := crs.NewService(crs.NewPostgresRepo(db), crs.Deltas{
		DefaultScore:     cfg.Pipeline.CRSDefaultScore,
		PenaltyInvalid:   cfg.Pipeline.CRSPenaltyInvalid,
		PenaltyDuplicate: cfg.Pipeline.CRSPenaltyDuplicate,
		RewardValid:      cfg.Pipeline.CRSRewardValid,
	})

	complaintSvc := complaints.NewService(
		complaints.NewPostgresRepo(db),
		validation.NewValidator(cfg.Pipeline.MinComplaintLength, cfg.Pipeline.InvalidPatterns),
		dedupe.NewDetector(embedder, cfg.Pipeline.DuplicateThreshold, cfg.Pipeline.DuplicateWindow, log),
		classify.NewClassifier(zeroShot, cfg.Pipeline.Categories, cfg.Pipeline.UrgentKeywords, log),
		fraud.NewScorer(cfg.Pipeline.FraudHourlyThreshold, cfg.Pipeline.FraudDailyThreshold),
		ratings,
		auditSvc,
		cfg.Pipeline.DuplicateWindow,
		log,
	)

	assignSvc := assignment.NewService(assignment.NewPostgresRepo(db), complaintSvc, auditSvc, log)
	if err := assignSvc.SeedDefaults(rootCtx); err != nil {
		log.Error("field worker seed failed", "err", err)
		os.Exit(1)
	}

	analyticsSvc := analytics.NewService(analytics.NewPostgresRepo(db))

	h := httpapi.Handlers{
		Auth:        authManager,
		Complaints:  complaintSvc,
		Ratings:     ratings,
		Audit:       auditSvc,
		Assignments: assignSvc,
		Analytics:   analyticsSvc,
		Fraud:       fraud.NewScorer(cfg.Pipeline.FraudHourlyThreshold, cfg.Pipeline.FraudDailyThreshold),

		DB:    db,
		Redis: rdb,

		ThrottleLimit:  cfg.Pipeline.ThrottleLimit,
		ThrottleWindow: cfg.Pipeline.ThrottleWindow,
		DashboardTTL:   cfg.Pipeline.DashboardCacheTTL,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

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
