package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transit/internal/handler"
	"transit/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	ProgressHandler  *handler.ProgressHandler
	DriverHandler    *handler.DriverHandler
	MemberHandler    *handler.MemberHandler
	DashboardHandler *handler.DashboardHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Member routes.
		members := v1.Group("/members")
		{
			members.POST("/register", deps.MemberHandler.Register)
			members.GET("", deps.MemberHandler.GetAll)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/on-duty", deps.DriverHandler.GetOnDuty)
			drivers.POST("/:id/duty", deps.DriverHandler.SetDuty)
			drivers.GET("/:id/rides", deps.DriverHandler.GetRides)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.GET("/:id/status", deps.RideHandler.GetStatus)
			rides.POST("/:id/assign", deps.RideHandler.AssignDriver)
			rides.POST("/:id/return", deps.RideHandler.ScheduleReturn)
			rides.PATCH("/:id/schedule", deps.RideHandler.UpdateSchedule)
			rides.POST("/:id/transition", deps.ProgressHandler.ApplyTransition)
			rides.POST("/:id/mileage", deps.ProgressHandler.EditMileage)
		}

		// Dashboard.
		v1.GET("/dashboard", deps.DashboardHandler.Get)
	}

	return router
}
