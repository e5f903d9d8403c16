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

	"github.com/prohmpiriya/ecom-storefront/internal/mockapi"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "storefront-mock-api",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	api, err := mockapi.New(mockapi.ConfigFrom(cfg.MockAPI, appLog))
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Mock API setup failed: %v", err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.MockAPI.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Mock API listening on %s (admin %s)", addr, cfg.MockAPI.AdminEmail))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	appLog.Info("Mock API stopped")
}
