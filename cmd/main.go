package main

import (
	"os"
	"os/signal"
	"syscall"

	"minerva/internal/bootstrap"
	"minerva/pkg/logger"
)

func main() {
	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	log := container.Log

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	log.Info("System started, press Ctrl+C to stop")

	waitForShutdown(container)
}

// waitForShutdown blocks until an OS signal or an internal fatal error
// cancels the root context, then runs the ordered shutdown sequence.
func waitForShutdown(container *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		container.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-container.Context.Done():
		container.Log.Warn("Internal shutdown requested")
	}

	container.Shutdown()
	container.Log.Info("Shutdown complete")
}
