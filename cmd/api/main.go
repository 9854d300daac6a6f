package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/cache"
	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/database"
	"github.com/GTDGit/gtd_revenue/internal/handler"
	"github.com/GTDGit/gtd_revenue/internal/metrics"
	"github.com/GTDGit/gtd_revenue/internal/middleware"
	"github.com/GTDGit/gtd_revenue/internal/models"
	"github.com/GTDGit/gtd_revenue/internal/repository"
	"github.com/GTDGit/gtd_revenue/internal/service"
	"github.com/GTDGit/gtd_revenue/internal/worker"
)

// main is the entrypoint of the revenue intelligence service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting revenue service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database
	db, err := database.Connect(ctx, &cfg.DB, cfg.Pipeline.Concurrency)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis (optional)
	var (
		snapshots   service.SnapshotCache
		redisPinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		snapshots = cache.NewSnapshotCache(redisClient, cfg.Redis.TTL)
		redisPinger = redisClient
		log.Info().Msg("redis connected successfully")
	} else {
		log.Warn().Msg("REDIS_HOST not set, snapshot cache disabled")
	}

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry, cfg.Metrics.Prefix)
	httpMetrics := metrics.NewHTTPMetrics(registry, cfg.Metrics.Prefix)

	// 5. Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderHistoryRepository(db)
	scoreRepo := repository.NewStoreScoreRepository(db)
	metricRepo := repository.NewRevenueMetricRepository(db)
	predictionRepo := repository.NewStorePredictionRepository(db)
	dealRepo := repository.NewDealRepository(db)
	runRepo := repository.NewPipelineRunRepository(db)

	// 6. Initialize services
	metricsSvc := service.NewMetricsService(catalogRepo, orderRepo, metricRepo, cfg.Pipeline)
	predictionSvc := service.NewPredictionService(catalogRepo, orderRepo, scoreRepo, predictionRepo, cfg.Pipeline)
	dealSvc := service.NewDealService(metricRepo, dealRepo, cfg.Pipeline)
	querySvc := service.NewQueryService(metricRepo, predictionRepo, dealRepo, runRepo, snapshots, cfg.Pipeline)
	dispatcher := service.NewDispatcher(metricsSvc, predictionSvc, dealSvc, querySvc, runRepo, snapshots, pipelineMetrics)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(handler.PingFunc(db.PingContext), redisPinger),
		Revenue: handler.NewRevenueHandler(dispatcher, querySvc),
	}

	// 8. Initialize middleware
	var jwtMw *middleware.JWTMiddleware
	if cfg.AuthDisabled {
		log.Warn().Msg("AUTH_DISABLED=true, revenue endpoints are unauthenticated")
	} else {
		limiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
		go limiter.Cleanup(ctx, 5*time.Minute)
		jwtMw = middleware.NewJWTMiddleware(cfg.JWTSecret, limiter)
	}

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(httpMetrics.Middleware())
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	setupRoutes(router, handlers, jwtMw)

	// 10. Start the scheduled pipeline
	if cfg.Worker.PipelineInterval > 0 {
		scope := models.Scope{BusinessID: cfg.Worker.BusinessID, VerticalID: cfg.Worker.VerticalID}
		if err := service.ValidateScope(scope); err != nil {
			log.Error().Err(err).Msg("invalid PIPELINE_BUSINESS_ID or PIPELINE_VERTICAL_ID")
			fmt.Fprintf(os.Stderr, "invalid pipeline scope: %v\n", err)
			os.Exit(1)
		}
		go worker.NewPipelineWorker(dispatcher, scope, cfg.Worker.PipelineInterval).Start(ctx)
	}

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop the worker
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Revenue *handler.RevenueHandler
}

// setupRoutes registers all routes. A nil jwtMiddleware leaves the revenue
// routes open.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	revenue := router.Group("/v1/revenue")
	if jwtMiddleware != nil {
		revenue.Use(jwtMiddleware.Handle())
	}
	{
		revenue.POST("/dispatch", handlers.Revenue.Dispatch)

		// Batch computations
		revenue.POST("/product-metrics", handlers.Revenue.ComputeProductMetrics)
		revenue.POST("/store-predictions", handlers.Revenue.ComputeStorePredictions)
		revenue.POST("/deals", handlers.Revenue.GenerateDeals)

		// Dashboard reads
		revenue.GET("/stores/:storeId/predictions", handlers.Revenue.GetStorePredictions)
		revenue.GET("/hero-ghost", handlers.Revenue.GetHeroGhost)
		revenue.GET("/deals", handlers.Revenue.GetDeals)
		revenue.GET("/runs", handlers.Revenue.GetRuns)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
