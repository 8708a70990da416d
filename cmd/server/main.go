package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/icrp103-dose-server/internal/api"
	"github.com/icrp103-dose-server/internal/cache"
	"github.com/icrp103-dose-server/internal/config"
	"github.com/icrp103-dose-server/internal/factors"
	"github.com/icrp103-dose-server/internal/logging"
	"github.com/icrp103-dose-server/internal/metrics"
	"github.com/icrp103-dose-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(&cfg.Logging)

	// Load the ICRP 103 factor table. Integrity failures are fatal; the
	// service must not begin serving with a bad table.
	table, err := factors.Load(cfg.Factors.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load factor table")
	}
	logger.WithField("version", table.Version()).Info("Factor table loaded")

	calculator := service.NewCalculator(logger, table)

	opts := api.Options{}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.NewManager()
	}
	if cfg.Cache.Enabled {
		cacheClient, cacheErr := cache.NewClient(cfg.Cache)
		if cacheErr != nil {
			logger.WithError(cacheErr).Warn("Response cache unavailable, serving uncached")
		} else {
			opts.Cache = cacheClient
			defer cacheClient.Close()
		}
	}

	server := api.NewServer(configManager, logger, calculator, table.Version(), opts)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
