package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"rentfleet/internal/config"
	"rentfleet/internal/handlers"
	"rentfleet/internal/middleware"
	"rentfleet/internal/repositories/mongodb"
	"rentfleet/internal/services"
	"rentfleet/pkg/cache"
	"rentfleet/pkg/database"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/storage"
	"rentfleet/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		cancelIndexes()
		appLogger.WithError(err).Fatal("Failed to ensure indexes")
	}
	cancelIndexes()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	storageProvider, err := newStorageProvider(cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage provider")
	}

	// Repositories
	vehicleRepo := mongodb.NewVehicleRepository(db.Database, redisCache)
	locationRepo := mongodb.NewLocationRepository(db.Database)
	associationRepo := mongodb.NewVehicleLocationRepository(db.Database)

	// Services
	resolver := services.NewLocationResolver(locationRepo, appLogger)
	mediaService := services.NewMediaService(storageProvider, appLogger)
	junction := services.NewJunctionSynchronizer(associationRepo, appLogger)
	vehicleService := services.NewVehicleService(vehicleRepo, associationRepo, resolver, mediaService, junction, appLogger)
	locationService := services.NewLocationService(locationRepo, associationRepo, appLogger)

	// Handlers
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	locationHandler := handlers.NewLocationHandler(locationService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupVehicleRoutes(v1, vehicleHandler, cfg.Security.JWTSecret)
		routes.SetupLocationRoutes(v1, locationHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}

func newStorageProvider(cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "s3", "aws":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcs", "gcp":
		return storage.NewGCPStorage(cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	case "local":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
