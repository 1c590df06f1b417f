package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/database"
	"github.com/stemsi/survey-seeder/internal/gateway"
	"github.com/stemsi/survey-seeder/internal/handler"
	"github.com/stemsi/survey-seeder/internal/logger"
	"github.com/stemsi/survey-seeder/internal/middleware"
	"github.com/stemsi/survey-seeder/internal/monitoring"
	"github.com/stemsi/survey-seeder/internal/repository"
	"github.com/stemsi/survey-seeder/internal/router"
	"github.com/stemsi/survey-seeder/internal/service"
	"github.com/stemsi/survey-seeder/internal/template"
	"github.com/stemsi/survey-seeder/internal/validator"
	"github.com/stemsi/survey-seeder/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("gateway_mode", cfg.GatewayMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting survey seeder")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	monitoring.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	surveyRepo := repository.NewSurveyRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	// ─── Load Templates ────────────────────────────────────────────────
	templates, err := template.LoadStore(cfg.SeedTemplateDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.SeedTemplateDir).Msg("Failed to load survey templates")
	}
	log.Info().Int("count", templates.Len()).Msg("Survey templates loaded")

	// ─── Initialize Services ───────────────────────────────────────────
	catalogService := service.NewCatalogService(surveyRepo, sectionRepo, questionRepo, log)
	authService := service.NewAuthService(cfg, rdb)

	entityGateway, err := gateway.New(cfg, catalogService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build entity gateway")
	}

	materializer := service.NewMaterializer(entityGateway, log,
		service.WithProgress(service.MultiProgress{
			service.LogProgress{Log: logger.Component(log, "progress")},
			service.NewRedisProgress(rdb, log),
		}),
		service.WithQuestionConcurrency(cfg.SeedQuestionConcurrency),
	)
	orchestrator := service.NewBatchOrchestrator(materializer, templates, service.OrchestratorConfig{
		StrictValidation:    cfg.SeedStrictValidation,
		TemplateConcurrency: cfg.SeedTemplateConcurrency,
	}, log)
	seedRunService := service.NewSeedRunService(service.NewRedisRunStore(rdb, cfg), orchestrator, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, log),
		Template: handler.NewTemplateHandler(templates),
		Seed:     handler.NewSeedHandler(seedRunService, log),
		WS:       handler.NewWSHandler(rdb, seedRunService, log, cfg.AllowedOrigins),
		Health:   handler.NewHealthHandler(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	seedLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	seedLimiter.StartCleanup(workerCtx.Done())

	seedWorker := worker.NewSeedWorker(rdb, seedRunService, log)
	go seedWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, seedLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the seed worker. A run in flight keeps its lock until the TTL
	// expires or it finishes.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
