package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/analytics"
	"opsboard/internal/domain/assignment"
	"opsboard/internal/domain/audit"
	"opsboard/internal/domain/core"
	"opsboard/internal/domain/payroll"
	"opsboard/internal/domain/worklog"
	"opsboard/internal/platform/config"
	"opsboard/internal/platform/db"
	"opsboard/internal/platform/metrics"
	analyticshandler "opsboard/internal/transport/http/handlers/analytics"
	assignmenthandler "opsboard/internal/transport/http/handlers/assignment"
	audithandler "opsboard/internal/transport/http/handlers/audit"
	corehandler "opsboard/internal/transport/http/handlers/core"
	payrollhandler "opsboard/internal/transport/http/handlers/payroll"
	workloghandler "opsboard/internal/transport/http/handlers/worklog"
	"opsboard/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	coreSvc := core.NewService(core.NewStore(pool))
	assignmentSvc := assignment.NewService(assignment.NewStore(pool))
	worklogSvc := worklog.NewService(worklog.NewStore(pool))
	payrollSvc := payroll.NewService(payroll.NewStore(pool, db.NewRetryPolicy(cfg)))
	analyticsSvc := analytics.NewService(analytics.NewStore(pool, db.NewRetryPolicy(cfg)))
	auditSvc := audit.New(pool)
	idemStore := middleware.NewIdempotencyStore(pool)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.With(middleware.RequireAdmin).Get("/internal/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		corehandler.NewHandler(coreSvc).RegisterRoutes(r)
		assignmenthandler.NewHandler(assignmentSvc, auditSvc).RegisterRoutes(r)
		workloghandler.NewHandler(worklogSvc, auditSvc).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc, auditSvc, idemStore, cfg.ReceiptDir).RegisterRoutes(r)
		analyticshandler.NewHandler(analyticsSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	log.Printf("opsboard server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
