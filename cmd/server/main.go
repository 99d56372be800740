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
	"github.com/nyumba-homes/marketplace/internal/auth"
	"github.com/nyumba-homes/marketplace/internal/config"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/handlers"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"github.com/nyumba-homes/marketplace/internal/services"
	"github.com/nyumba-homes/marketplace/internal/storage"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting marketplace API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})
	for _, warning := range cfg.Warnings() {
		log.Warn(warning, nil)
	}

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

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(log); err != nil {
			log.Fatal("Failed to run migrations", err, nil)
		}
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		log.Warn("Unknown reporting timezone, using UTC", map[string]interface{}{
			"timezone": cfg.Reporting.Timezone,
			"error":    err.Error(),
		})
		loc = time.UTC
	}

	// Optional collaborators degrade to 503s on the routes that need them
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to create object storage client", err, nil)
	}
	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("Failed to create token verifier", err, nil)
	}

	// Initialize repository layer
	profileRepo := repository.NewProfileRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	viewRepo := repository.NewViewRepository(db)
	searchRepo := repository.NewSearchQueryRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	trafficRepo := repository.NewTrafficRepository(db)

	// Tracking writers
	sessions := tracking.NewSessionTracker(sessionRepo, searchRepo, cfg.Tracking.SessionTimeout, log)
	visits := tracking.NewVisitTracker(trafficRepo, cfg.Tracking.VisitDedupWindow)
	recorder := tracking.NewRecorder(cfg.Tracking.RecorderDelay, log)
	states := tracking.NewHandleStore(cfg.Tracking.CookieSecret, cfg.Tracking.CookieSecure)

	// Initialize service layer
	listingService := services.NewListingService(propertyRepo, inquiryRepo, agentRepo, log)
	marketplaceService := services.NewMarketplaceService(services.MarketplaceDeps{
		Properties: propertyRepo,
		Inquiries:  inquiryRepo,
		Profiles:   profileRepo,
		Agents:     agentRepo,
		Views:      viewRepo,
		Tracker:    sessions,
		Jobs:       recorder,
	}, log)
	dashboardService := services.NewDashboardService(services.DashboardRepos{
		Profiles:   profileRepo,
		Agents:     agentRepo,
		Properties: propertyRepo,
		Inquiries:  inquiryRepo,
		Views:      viewRepo,
		Searches:   searchRepo,
		Sessions:   sessionRepo,
		Traffic:    trafficRepo,
	}, listingService, loc, log)
	mediaService := services.NewMediaService(store, propertyRepo, agentRepo, log)
	diagnosticsService := services.NewDiagnosticsService(services.DiagnosticsDeps{
		Tables:            db,
		Traffic:           trafficRepo,
		StorageConfigured: cfg.Storage.Configured(),
		AuthConfigured:    verifier.Configured(),
	}, log)
	adminService := services.NewAdminService(profileRepo, log)
	trackingService := services.NewTrackingService(sessions, visits)

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

	handlers.Routes{
		Health: handlers.NewHealthHandler(db, cfg.Server.Env, handlers.Capabilities{
			Storage: cfg.Storage.Configured(),
			Auth:    verifier.Configured(),
		}),
		Marketplace: handlers.NewMarketplaceHandler(marketplaceService, states),
		Dashboard:   handlers.NewDashboardHandler(listingService, dashboardService),
		Admin:       handlers.NewAdminHandler(dashboardService, adminService, listingService),
		Media:       handlers.NewMediaHandler(mediaService),
		Tracking:    handlers.NewTrackingHandler(trackingService, states),
		Diagnostics: handlers.NewDiagnosticsHandler(diagnosticsService),
		Auth:        auth.NewMiddleware(verifier, profileRepo),
	}.Register(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
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

	// Let queued tracking writes finish
	recorder.Wait()

	log.Info("Server exited", nil)
}
