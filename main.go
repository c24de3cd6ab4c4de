package main

import (
	"fmt"
	"log"
	"os"

	"main/config"
	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	// Check required environment variables
	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"JWT_SECRET_KEY",
		"PORT",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()
	if os.Getenv("GO_ENV") != "test" {
		utils.InitMongoClient()
	}
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(64 * 1024))

	// Repositories
	deviceRepo := repository.GetDeviceRepo(utils.MongoClient)
	clickRepo := repository.GetClickRepo(utils.MongoClient)

	// Optional stats cache; an empty REDIS_URL runs without one
	redisCfg := config.LoadRedisConfig()
	if redisCfg.URL != "" {
		cache, err := services.NewStatsCache(redisCfg.URL, redisCfg.StatsTTL)
		if err != nil {
			log.Printf("Warning: stats cache disabled: %v", err)
		} else {
			services.GlobalStatsCache = cache
		}
	}

	// Services
	detector := services.NewDeviceDetector()
	geo := services.NewGeoResolver(utils.GetEnvAsBool("GEOIP_LOOKUP_ENABLED", false))
	trackingService := usecase.NewTrackingService(deviceRepo, clickRepo, detector, geo)
	statsService := usecase.NewStatsService(deviceRepo, services.GlobalStatsCache)
	activityService := usecase.NewActivityService(clickRepo, deviceRepo, services.GlobalStatsCache)

	// Handlers
	trackHandler := handler.NewTrackHandler(trackingService)
	statsHandler := handler.NewStatsHandler(statsService)
	activityHandler := handler.NewActivityHandler(activityService)

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public ingestion routes (fire-and-forget clients, no auth)
	track := router.Group("/api/track")
	{
		track.POST("/click", trackHandler.TrackClick)
		track.POST("/session", trackHandler.TrackSession)
	}

	// Admin routes (guest activity viewer + dashboard)
	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		devices := admin.Group("/devices")
		devices.Use(middleware.CacheControlMiddleware("30"))
		{
			devices.GET("/stats", statsHandler.GetDeviceStats)
			devices.GET("/popular", statsHandler.GetPopularDevices)
		}

		activity := admin.Group("/activity")
		{
			activity.GET("", activityHandler.ListActivity)
			activity.GET("/export", activityHandler.ExportActivity)
			activity.GET("/:id", activityHandler.GetActivityDetail)
			activity.DELETE("/:id", activityHandler.DeleteActivity)
			activity.DELETE("", activityHandler.DeleteAllActivity)
		}
	}

	return router
}

func main() {
	dbCfg := config.LoadDatabaseConfig()
	if err := repository.SetupIndexes(utils.MongoClient.Database(dbCfg.DatabaseName)); err != nil {
		log.Fatalf("Failed to set up indexes: %v", err)
	}

	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
