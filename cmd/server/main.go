package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/logger"
)

// @title Lunos API
// @version 1.0
// @description Account, session and study-assistant API for Lunos
// @description
// @description Features:
// @description - Email/password and OAuth (Google, GitHub) sign-in
// @description - Database or JWT sessions with sliding expiry
// @description - Study preferences, onboarding and daily message quota
// @description - Conversation history

// @contact.name API Support
// @contact.url https://codeberg.org/lunos/server

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name lunos.session-token
// @description Session token issued at sign-in

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.SetDefault(logger.New(cfg.Environment))
	logger.Info("starting lunos server", "environment", cfg.Environment, "session_strategy", cfg.SessionStrategy)

	ctx := context.Background()

	// create server with all dependencies
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// expired database sessions are swept in the background
	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	go srv.cleanupService.Start(cleanupCtx)

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cleanupCancel()

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
