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

	"github.com/jwaldner/breakingbad/internal/app"
	"github.com/jwaldner/breakingbad/internal/config"
	"github.com/jwaldner/breakingbad/internal/handlers"
	"github.com/jwaldner/breakingbad/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logging.LogLevel,
		File:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	err = run(cfg)
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives or the listener fails. Deferred cleanup
// happens before main exits.
func run(cfg *config.Config) error {
	logger.Always.Printf("🚀 Breaking Bad option calculator starting - Port: %s", cfg.Server.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - quote API calls and calculations will be logged to %s\n", cfg.Logging.LogFile)
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Error.Printf("❌ Failed to initialize: %v", err)
		return err
	}
	defer a.Close()

	h := handlers.NewOptionsHandler(a.Calculator, a.Quotes, a.Rates, a.Formatter)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigin:  cfg.Server.CORSOrigin,
		Metrics:     a.Metrics,
		MetricsPath: cfg.Metrics.Path,
	})

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("❌ Server failed: %v", err)
			return err
		}
	case <-ctx.Done():
		logger.Always.Printf("🛑 Shutting down (timeout %v)", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("❌ Graceful shutdown failed: %v", err)
		}
	}
	logger.Always.Printf("👋 Server stopped")
	return nil
}
