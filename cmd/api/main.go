package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/srq20-api/internal/adapters/cache"
	"github.com/zatekoja/srq20-api/internal/adapters/classifier"
	"github.com/zatekoja/srq20-api/internal/adapters/database"
	"github.com/zatekoja/srq20-api/internal/api/handlers"
	"github.com/zatekoja/srq20-api/internal/api/middleware"
	"github.com/zatekoja/srq20-api/internal/api/routes"
	"github.com/zatekoja/srq20-api/internal/application/services"
	"github.com/zatekoja/srq20-api/internal/domain/entities"
	"github.com/zatekoja/srq20-api/internal/domain/providers"
	"github.com/zatekoja/srq20-api/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/srq20-api/internal/infrastructure/clients/redis"
	"github.com/zatekoja/srq20-api/internal/infrastructure/observability"
	"github.com/zatekoja/srq20-api/pkg/config"
	"github.com/zatekoja/srq20-api/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Env).
		Msg("Starting SRQ-20 prediction server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.ForwardLogsToOTel(cfg.OTEL.ServiceName)
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	// The model must be present before the server accepts traffic
	model, err := classifier.LoadRandomForest(cfg.Model.Path, entities.FeatureNames[:])
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Model.Path).Msg("Failed to load model")
	}
	log.Info().
		Str("path", cfg.Model.Path).
		Str("model_version", model.Version()).
		Int("trees", model.NumTrees()).
		Msg("Model loaded")

	predictionService := services.NewPredictionService(model, metrics)

	// Initialize the assessment audit log if enabled
	if cfg.Audit.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database, retry.DefaultConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()

		assessments := database.NewAssessmentAdapter(pgClient)
		if err := assessments.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create assessments table")
		}
		predictionService.SetAssessmentRepository(assessments)
		log.Info().Msg("Assessment audit log enabled")
	}

	// Rate limiting uses Redis when available, otherwise in-process counters
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		var cacheProvider providers.CacheProvider
		if cfg.Redis.Enabled {
			redisClient, err := redis.NewClient(ctx, &cfg.Redis, retry.DefaultConfig())
			if err != nil {
				log.Warn().Err(err).Msg("Failed to initialize Redis client, rate limiting per instance")
			} else {
				defer redisClient.Close()
				cacheProvider = cache.NewRedisAdapter(redisClient)
				log.Info().Msg("Redis client initialized successfully")
			}
		}
		rateLimiter = middleware.NewRateLimiter(
			cacheProvider,
			cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			metrics,
		)
		log.Info().
			Int("requests", cfg.RateLimit.Requests).
			Int("window_seconds", cfg.RateLimit.WindowSeconds).
			Msg("Rate limiting enabled")
	}

	router := routes.NewRouter(
		handlers.NewPredictionHandler(predictionService),
		middleware.NewCORS(cfg.CORS.AllowedOrigins),
		rateLimiter,
		metrics,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
