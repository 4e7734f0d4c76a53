package routes

import (
	"net/http"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/delivery/http/handler"
	"fleet-tracker/internal/infrastructure/database/postgres"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/middleware"
	"fleet-tracker/internal/telematics"
	"fleet-tracker/internal/usecase/device"
	"fleet-tracker/internal/usecase/driver"
	"fleet-tracker/internal/usecase/geofence"
	"fleet-tracker/internal/usecase/platform"
	"fleet-tracker/internal/usecase/syncer"
	"fleet-tracker/internal/usecase/trip"
	"fleet-tracker/internal/usecase/webhook"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires repositories, services and handlers into the HTTP router.
// The webhook service is returned as well so the MQTT subscriber can share
// the same processing pipeline.
func SetupRoutes(cfg *config.Config, db *postgres.DB, client *telematics.Client) (*gin.Engine, *webhook.Service) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	if cfg.RateLimit.GeneralRPS > 0 {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))
	}

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	deviceRepository := postgres.NewDeviceRepository(db)
	driverRepository := postgres.NewDriverRepository(db)
	assignmentRepository := postgres.NewAssignmentRepository(db)
	tripRepository := postgres.NewTripRepository(db)
	geofenceRepository := postgres.NewGeofenceRepository(db)

	calcID := cfg.Telematics.TripCalculatorID

	deviceService := device.NewService(deviceRepository, driverRepository, assignmentRepository, client)
	driverService := driver.NewService(driverRepository, assignmentRepository)
	tripService := trip.NewService(tripRepository, deviceRepository, client, calcID)
	geofenceService := geofence.NewService(geofenceRepository, client)
	syncService := syncer.NewService(client, deviceRepository, tripRepository, geofenceRepository, calcID)
	webhookService := webhook.NewService(deviceRepository, tripRepository, geofenceRepository)
	platformService := platform.NewService(client, deviceRepository)

	deviceHandler := handler.NewDeviceHandler(deviceService)
	driverHandler := handler.NewDriverHandler(driverService)
	tripHandler := handler.NewTripHandler(tripService)
	geofenceHandler := handler.NewGeofenceHandler(geofenceService)
	syncHandler := handler.NewSyncHandler(syncService, webhookService)
	platformHandler := handler.NewPlatformHandler(platformService)

	v1 := router.Group("/api/v1")
	{
		deviceHandler.RegisterRoutes(v1)
		driverHandler.RegisterRoutes(v1)
		tripHandler.RegisterRoutes(v1)
		geofenceHandler.RegisterRoutes(v1)
		syncHandler.RegisterRoutes(v1)
		syncHandler.RegisterWebhookRoute(v1)
		platformHandler.RegisterRoutes(v1)
	}

	logger.Info("All routes initialized")
	return router, webhookService
}
