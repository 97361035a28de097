package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chipchip/sgl-tracker/internal/app"
	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/chipchip/sgl-tracker/internal/handlers"
	"github.com/chipchip/sgl-tracker/internal/middleware"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg.Server.LogLevel, os.Stdout)
	logger.Info("Starting SGL tracker API")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	application, err := app.New(cfg, logger, metrics)
	if err != nil {
		logger.Fatalf("Failed to initialize tracker: %v", err)
	}
	defer application.Close()

	// Follow-up sweep
	cronService := services.NewCronService(application.Tracker, cfg.Tracker.FollowUpSchedule, cfg.Location(), logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	router := newRouter(cfg, application, metrics, cronService)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

func newRouter(cfg *config.Config, application *app.App, metrics *middleware.Metrics, cronService *services.CronService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.EnableRequestLog {
		router.Use(middleware.RequestLogger(application.Logger))
	}
	router.Use(metrics.Middleware())

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(application))
	if cfg.Server.EnableMetrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	handlers.RegisterRoutes(v1, application.Tracker, application.Logger)

	admin := v1.Group("/admin")
	{
		admin.POST("/cron/follow-ups", func(c *gin.Context) {
			cronService.RunFollowUpSweepNow()
			c.JSON(http.StatusOK, gin.H{"message": "Follow-up sweep triggered"})
		})
		admin.GET("/cron/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, cronService.GetJobStatus())
		})
	}

	return router
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(application *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeStatus := "healthy"
		if err := application.Ping(); err != nil {
			storeStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"store":  storeStatus,
				"error":  err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"store":     storeStatus,
			"driver":    application.Config.Database.Driver,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
