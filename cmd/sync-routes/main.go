package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"railbook/internal/config"
	"railbook/internal/database"
	"railbook/internal/logger"
	"railbook/internal/repository"
	"railbook/internal/search"
	"railbook/internal/service"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting route index synchronization")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	routeIndex, err := search.NewRouteIndex(config.LoadElasticsearchConfig())
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	if err := routeIndex.HealthCheck(context.Background()); err != nil {
		log.Fatalf("Elasticsearch is not healthy: %v", err)
	}

	trains := service.NewTrainService(repository.NewRepositories(db), routeIndex, nil)

	start := time.Now()
	indexed, err := trains.SyncRouteIndex(context.Background())
	if err != nil {
		log.Fatalf("Route index synchronization failed: %v", err)
	}

	slog.Info("Route index synchronization completed",
		"routes_indexed", indexed,
		"duration", time.Since(start).String())
}
