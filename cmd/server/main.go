package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
	"github.com/michaelcoll/card-collection-price-tracker/internal/config"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Background loops restart after a panic until shutdown
	if cfg.WorkerEnabled {
		go runForever(ctx, "price worker", a.Worker.Start)
	}
	go runForever(ctx, "valuation scheduler", a.Valuations.Start)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the background loops
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func runForever(ctx context.Context, name string, start func(context.Context)) {
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("PANIC in %s: %v - restarting in 30 seconds", name, r)
				}
			}()
			start(ctx)
		}()

		select {
		case <-ctx.Done():
			return
		case <-time.After(30 * time.Second):
			log.Infof("%s restarting after panic recovery...", name)
		}
	}
}
