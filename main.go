package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ecom-storefront/internal/di"
	"github.com/prohmpiriya/ecom-storefront/internal/mockapi"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/middleware"
	pkgredis "github.com/prohmpiriya/ecom-storefront/pkg/redis"
	"github.com/prohmpiriya/ecom-storefront/pkg/telemetry"
)

const serviceName = "storefront-web"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Storefront...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry disabled: %v", err))
	}

	// Initialize Redis connection
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
		}
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", cfg.Redis.Addr()))
	}

	// Start the in-memory remote API next to the web tier
	var mockSrv *http.Server
	if cfg.MockAPI.Embedded {
		api, err := mockapi.New(mockapi.ConfigFrom(cfg.MockAPI, appLog.With(zap.String("component", "mock-api"))))
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Mock API setup failed: %v", err))
		}
		mockSrv = &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.MockAPI.Port),
			Handler:           api.Handler(),
			ReadHeaderTimeout: 2 * time.Second,
		}
		cfg.API.BaseURL = "http://" + mockSrv.Addr
		go func() {
			appLog.Info(fmt.Sprintf("Mock API listening on %s", mockSrv.Addr))
			if err := mockSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.Fatal(fmt.Sprintf("Failed to start mock API: %v", err))
			}
		}()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config: cfg,
		Redis:  redisClient,
		Logger: appLog,
	})
	appLog.Info(fmt.Sprintf("Remote API at %s, sessions in %s", cfg.API.BaseURL, cfg.Session.Backend))

	// Setup Gin
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	container.RegisterRoutes(router)

	// Evict idle sessions
	go container.Registry.Run(ctx, time.Minute)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Storefront listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")
	stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if mockSrv != nil {
		_ = mockSrv.Shutdown(shutdownCtx)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Telemetry shutdown failed: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
