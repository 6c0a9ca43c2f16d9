package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/shenikar/emergency_dispatch/docs"
)

// @title Emergency Dispatch API
// @version 1.0
// @description Dispatch of ambulance, fire and police vehicles to reported incidents.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
