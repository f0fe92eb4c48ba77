package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pevans/khabar/api"
	"github.com/pevans/khabar/config"
	"github.com/pevans/khabar/logging"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	archivePath := flag.String("archive", getEnv(config.EnvOutput, config.DefaultOutputPath), "Path to the JSON archive to serve (KHABAR_OUTPUT)")
	addr := flag.String("addr", getEnv("KHABAR_API_ADDR", "localhost:8080"), "Listen address (KHABAR_API_ADDR)")
	logLevel := flag.String("log-level", getEnv(config.EnvLogLevel, "info"), "Log level (KHABAR_LOG_LEVEL)")
	flag.Parse()

	logger := logging.Init(os.Stderr, *logLevel)
	gin.SetMode(gin.ReleaseMode)

	server := api.NewServer(api.FileLoader(*archivePath), logger)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting article API", "addr", *addr, "archive", *archivePath)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}
