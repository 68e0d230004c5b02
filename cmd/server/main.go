package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookhub/internal/cache"
	"bookhub/internal/config"
	"bookhub/internal/database"
	"bookhub/internal/handlers/ws"
	"bookhub/internal/middleware"
	"bookhub/internal/repositories"
	"bookhub/internal/response"
	"bookhub/internal/router"
	"bookhub/internal/services"
	"bookhub/internal/utils"

	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting BookHub application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	dbManager, err := database.NewManager(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cacheInstance, err := cache.NewCache(&cache.Config{
		Provider: cfg.Cache.Provider,
		TTL:      cfg.Cache.TTL,
		RedisURL: cfg.Cache.RedisURL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer cacheInstance.Close()

	// The hub is built before the services so it can be injected as the
	// message notifier; the message service is wired back in afterwards.
	hub := ws.NewHub(repositories.NewUserRepository(dbManager, logger), logger)

	serviceCollection, err := services.NewServiceCollection(dbManager, cacheInstance, cfg, hub, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	hub.SetMessageService(serviceCollection.Message)

	responseBuilder := response.NewBuilder(&response.Config{
		APIVersion:         "v1",
		MaskInternalErrors: cfg.IsProduction(),
	}, logger)

	// Uploads are optional; the endpoint reports unavailable when no
	// credentials are configured.
	var storage utils.FileStorage
	if cloudinarySvc, err := utils.NewCloudinaryService(cfg.Cloudinary, utils.DefaultStorageConfig(), logger); err != nil {
		logger.Warn("File storage disabled", zap.Error(err))
	} else {
		storage = cloudinarySvc
	}

	authMiddleware := middleware.NewAuthMiddleware(
		serviceCollection.Auth,
		cacheInstance,
		responseBuilder,
		middleware.DefaultAuthConfig(),
		logger,
	)

	handler := router.New(&router.Dependencies{
		Services:        serviceCollection,
		AuthMiddleware:  authMiddleware,
		ResponseBuilder: responseBuilder,
		Hub:             hub,
		Storage:         storage,
		DB:              dbManager,
		Cache:           cacheInstance,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("GO_ENV")
	var config zap.Config

	switch env {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
