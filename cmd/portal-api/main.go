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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kontax/portal-backend/internal/config"
	"kontax/portal-backend/internal/greenentries"
	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/analytics"
	"kontax/portal-backend/internal/rcv"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db_name", cfg.Database.DBName))
	gormDB, err := config.OpenGorm(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := ledger.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate ledger tables", zap.Error(err))
	}

	snapshotDB, err := config.OpenSQLX(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect snapshot store", zap.Error(err))
	}
	defer snapshotDB.Close()

	snapshots := rcv.NewPostgresStore(snapshotDB)
	if err := snapshots.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("Failed to prepare snapshot store", zap.Error(err))
	}

	// Initialize green ledger module
	siiClient := rcv.NewClient(rcv.ClientConfig{
		BaseURL: cfg.SII.BaseURL,
		Token:   cfg.SII.Token,
		Timeout: cfg.SII.Timeout,
	}, logger)
	if cfg.SII.Token == "" {
		logger.Warn("SII_API_TOKEN not set, register syncs will fail")
	}

	reportCache := analytics.NewReportCache(cfg.Analytics.CacheTTL)
	defer reportCache.Stop()

	ledgerService := greenentries.NewService(ledger.NewRepository(gormDB), snapshots, siiClient, reportCache, logger)
	ledgerHandler := greenentries.NewHandler(ledgerService, logger)

	// Setup Router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization", "X-User-ID")
	corsConfig.AddExposeHeaders("Content-Disposition")
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	{
		ledgerHandler.RegisterRoutes(api)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"cache":     reportCache.Stats(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
