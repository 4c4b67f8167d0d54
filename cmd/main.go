package main

import (
	"os"
	"os/signal"
	"syscall"

	"barometer/internal/bootstrap"
	"barometer/pkg/logger"
)

func main() {
	// Build the dependency container (fail-fast on any init error)
	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	// Start consumers, workers and the HTTP server
	if err := container.Start(); err != nil {
		container.Log.Fatalf("Failed to start: %v", err)
	}

	// Wait for shutdown signal
	waitForShutdown(container)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a fatal component error,
// then performs graceful shutdown
func waitForShutdown(container *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		container.Log.Info("Received shutdown signal", "signal", sig.String())
	case <-container.Context.Done():
		// A fatal error (e.g. HTTP server crash) cancelled the context
		container.Log.Warn("Application context cancelled, shutting down")
	}

	container.Shutdown()
}
