package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/catalogdash/backend/internal/application/catalog"
	identityapp "github.com/catalogdash/backend/internal/application/identity"
	"github.com/catalogdash/backend/internal/infrastructure/config"
	"github.com/catalogdash/backend/internal/infrastructure/logger"
	"github.com/catalogdash/backend/internal/infrastructure/remote"
	"github.com/catalogdash/backend/internal/infrastructure/storage"
	"github.com/catalogdash/backend/internal/interfaces/http/handler"
	"github.com/catalogdash/backend/internal/interfaces/http/middleware"
	"github.com/catalogdash/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting catalog dashboard backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Platform client for sessions, accounts and documents
	client, err := remote.NewClient(&remote.Config{
		Endpoint:             cfg.Remote.Endpoint,
		ProjectID:            cfg.Remote.ProjectID,
		APIKey:               cfg.Remote.APIKey,
		DatabaseID:           cfg.Remote.DatabaseID,
		UsersCollectionID:    cfg.Remote.UsersCollectionID,
		ProductsCollectionID: cfg.Remote.ProductsCollectionID,
		SessionFile:          cfg.Remote.SessionFile,
		Timeout:              cfg.Remote.Timeout,
	}, log.Named("remote"))
	if err != nil {
		log.Fatal("Failed to create platform client", zap.Error(err))
	}

	// Image storage: S3-compatible backend when credentials are configured,
	// in-memory otherwise
	images := buildImageStorage(cfg, log)

	// Application services
	authService := identityapp.NewAuthService(client, log.Named("auth"))
	productService := catalogapp.NewProductService(client, images, log.Named("catalog"))

	// Settle the session store and warm the catalog. Failures are logged and
	// the server still starts; clients see the unauthenticated/empty state.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Remote.Timeout)
	if authService.InitialCheck(startupCtx) {
		if err := productService.Refresh(startupCtx); err != nil {
			log.Warn("Initial catalog refresh failed", zap.Error(err))
		}
	}
	cancelStartup()

	// Initialize Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.MaxMultipartMemory = cfg.HTTP.MaxBodySize

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewAuthHandler(authService))
	r.Register(handler.NewProductHandler(productService, middleware.RequireSession(authService)))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildImageStorage selects the image storage backend from configuration.
func buildImageStorage(cfg *config.Config, log *zap.Logger) catalogapp.ImageStorage {
	if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
		log.Warn("No storage credentials configured, using in-memory image storage")
		return storage.NewMemoryImageStorage()
	}

	s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage,
		storage.WithLogger(log.Named("storage")),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to create image storage", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to ensure storage bucket", zap.Error(err))
	}

	return s3Storage
}
