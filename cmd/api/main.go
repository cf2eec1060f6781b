package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/okanelab/receipt-sync-backend/internal/api"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/config"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/storage"
	"github.com/okanelab/receipt-sync-backend/internal/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Configuration file path")
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configFile)
	logger := observability.NewLogger(cfg.Observability.Logging)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	serverConfig := api.DefaultConfig()
	if cfg.API.Port != 0 {
		serverConfig.Port = cfg.API.Port
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = cfg.API.AllowedOrigins
	}

	server := api.NewServer(serverConfig, store, cfg.Matching.Criteria(), logger)
	if err := server.Run(); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
