package consumers

import (
	"context"
	"log/slog"

	"railbook/internal/cache"
	"railbook/internal/config"
	"railbook/internal/database"
	"railbook/internal/external"
	"railbook/internal/messaging"
	"railbook/internal/models"
	"railbook/internal/repository"
	"railbook/internal/service"
)

// ConsumerService runs the durable NATS subscriptions that react to
// booking and payment events out of band.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, cache invalidation disabled", "error", err)
		valkeyClient = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	store := repository.NewStore(db)
	repos := repository.NewRepositories(db)
	services := service.NewServices(store, repos, natsClient, paymentClient, valkeyClient, nil,
		service.Options{RACCapacity: cfg.RACCapacity})

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		handlers: NewHandlers(services.Bookings, valkeyClient),
	}, nil
}

// Bookings exposes the booking service for background jobs that share
// this process.
func (cs *ConsumerService) Bookings() *service.BookingService {
	return cs.services.Bookings
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers")

	if _, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventBookingCancelled, "consumers", cs.handlers.HandleBookingCancelled); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventBookingPromoted, "consumers", cs.handlers.HandleBookingPromoted); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentInitiated, "consumers", cs.handlers.HandlePaymentInitiated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentCompleted, "consumers", cs.handlers.HandlePaymentCompleted); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentFailed, "consumers", cs.handlers.HandlePaymentFailed); err != nil {
		return err
	}

	slog.Info("All consumers started")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
