package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"npc-dialogue-engine/backend/pkg/config"
	"npc-dialogue-engine/backend/pkg/di"
	"npc-dialogue-engine/backend/pkg/logger"
	"npc-dialogue-engine/backend/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	appLog := logger.New(logConfig)
	logger.SetGlobal(appLog)

	appLog.Info("Starting dialogue engine", "env", cfg.Server.Env)

	// Initialize dependency injection container
	container, err := di.New(cfg, appLog, nil)
	if err != nil {
		appLog.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	if err := r.Engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		appLog.LogError(err, "Failed to set trusted proxies")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r.Engine,
		ReadTimeout: cfg.Server.Timeout,
	}

	// Start the server in a goroutine
	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal
	<-quit
	appLog.Info("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		appLog.LogError(err, "Server forced to shutdown")
	}

	appLog.Info("Server exited gracefully")
}
