package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transit/internal/app"
	"transit/internal/config"
	"transit/internal/handler"
	internalRedis "transit/internal/redis"
	"transit/internal/repository/postgres"
	"transit/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Redis is optional: without it the service still serializes ride
	// mutations per process and skips caching/idempotency.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores (nil-safe when Redis is disabled).
	var lockStore internalRedis.LockStoreInterface
	var availabilityStore internalRedis.AvailabilityStoreInterface
	var cacheStore *internalRedis.CacheStore
	if redisClient != nil {
		lockStore = internalRedis.NewLockStore(redisClient)
		availabilityStore = internalRedis.NewAvailabilityStore(redisClient)
		cacheStore = internalRedis.NewCacheStore(redisClient)
	}

	// Initialize repositories.
	memberRepo := postgres.NewMemberRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)

	// Initialize services. One guard instance serializes all ride mutations.
	guard := service.NewRideGuard(lockStore)
	rideService := service.NewRideService(rideRepo, memberRepo, guard, cacheStore)
	progressService := service.NewProgressService(rideRepo, guard, cacheStore)
	mileageService := service.NewMileageService(rideRepo, guard, cacheStore)
	tripService := service.NewTripService(rideRepo, guard, cacheStore)
	assignmentService := service.NewAssignmentService(rideRepo, driverRepo, availabilityStore, guard, cacheStore)

	// Initialize handlers.
	memberHandler := handler.NewMemberHandler(memberRepo)
	driverHandler := handler.NewDriverHandler(assignmentService, driverRepo)
	rideHandler := handler.NewRideHandler(rideService, tripService, assignmentService)
	progressHandler := handler.NewProgressHandler(progressService, mileageService)
	dashboardHandler := handler.NewDashboardHandler(rideService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:      rideHandler,
		ProgressHandler:  progressHandler,
		DriverHandler:    driverHandler,
		MemberHandler:    memberHandler,
		DashboardHandler: dashboardHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
