package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/BebaneMarina/taxe-municipale/internal/cache"
	"github.com/BebaneMarina/taxe-municipale/internal/config"
	"github.com/BebaneMarina/taxe-municipale/internal/database"
	"github.com/BebaneMarina/taxe-municipale/internal/geo"
	"github.com/BebaneMarina/taxe-municipale/internal/handlers"
	"github.com/BebaneMarina/taxe-municipale/internal/logger"
	"github.com/BebaneMarina/taxe-municipale/internal/middleware"
	"github.com/BebaneMarina/taxe-municipale/internal/payment"
	"github.com/BebaneMarina/taxe-municipale/internal/repository"
	"github.com/BebaneMarina/taxe-municipale/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load a local .env if present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting tax collection API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Optional Redis cache for dashboard snapshots. A nil cache is a
	// valid configuration; the stats service treats it as a pass-through.
	statsCache, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", err, map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	}
	if statsCache != nil {
		defer statsCache.Close()
		log.Info("Stats cache enabled", map[string]interface{}{
			"addr": cfg.Redis.Addr,
			"ttl":  cfg.Redis.TTLSecs,
		})
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository layer
	taxpayerRepo := repository.NewTaxpayerRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	taxRepo := repository.NewTaxRepository(db)
	zoneRepo := repository.NewZoneRepository(db)
	neighborhoodRepo := repository.NewNeighborhoodRepository(db)
	geoZoneRepo := repository.NewGeoZoneRepository(db)
	collectorRepo := repository.NewCollectorRepository(db)

	// Initialize service layer
	resolver := geo.ResolverConfig{
		FallbackMeters:   cfg.Map.FallbackMeters,
		HardCutoffMeters: cfg.Map.HardCutoffMeters,
	}
	complianceService := services.NewComplianceService(taxpayerRepo, assignmentRepo, collectionRepo, taxRepo, log)
	statsService := services.NewStatsService(taxpayerRepo, assignmentRepo, collectionRepo, zoneRepo, neighborhoodRepo, geoZoneRepo, collectorRepo, statsCache, log)
	mapService := services.NewMapService(taxpayerRepo, assignmentRepo, collectionRepo, taxRepo, neighborhoodRepo, collectorRepo, geoZoneRepo, resolver, log)
	gateway := payment.NewClient(cfg.Gateway, nil, log)

	// Initialize handlers
	complianceHandler := handlers.NewComplianceHandler(complianceService)
	mapHandler := handlers.NewMapHandler(mapService)
	statsHandler := handlers.NewStatsHandler(statsService)
	paymentHandler := handlers.NewPaymentHandler(gateway)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		taxpayers := v1.Group("/taxpayers")
		{
			taxpayers.GET("/:id/compliance", complianceHandler.Get)
		}

		mapGroup := v1.Group("/map")
		{
			mapGroup.GET("/taxpayers", mapHandler.Taxpayers)
			mapGroup.GET("/collectors", mapHandler.Collectors)
		}

		geozones := v1.Group("/geozones")
		{
			geozones.POST("/locate-point", mapHandler.LocatePoint)
			geozones.GET("/uncovered", mapHandler.Uncovered)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/zones", statsHandler.Zones)
			stats.GET("/evolution", statsHandler.Evolution)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.GET("/:reference/status", paymentHandler.Status)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
