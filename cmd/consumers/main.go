package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railbook/cmd/consumers/jobs"
	"railbook/internal/config"
	"railbook/internal/consumers"
	"railbook/internal/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service")

	// own client ID so the streaming server does not kick the API off
	cfg.NATS.ClientID = "railbook-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	holdJob := jobs.NewPaymentHoldJob(consumerService.Bookings(), cfg.PaymentHold)
	holdJob.Start(jobCtx)

	log.Info("Consumers service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service")

	holdJob.Stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
