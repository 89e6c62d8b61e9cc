package service

import (
	"railbook/internal/cache"
	"railbook/internal/external"
	"railbook/internal/messaging"
	"railbook/internal/repository"
	"railbook/internal/search"
)

type Services struct {
	Bookings *BookingService
	Queues   *QueueService
	Trains   *TrainService
	Payments *PaymentService
}

type Options struct {
	RACCapacity int
}

func NewServices(store repository.Store, repos *repository.Repositories, natsClient *messaging.NATSClient, paymentClient *external.PaymentClient, valkey *cache.ValkeyClient, routeIndex *search.RouteIndex, opts Options) *Services {
	bookingService := NewBookingService(store, repos, paymentClient, natsClient, valkey, opts.RACCapacity)
	queueService := NewQueueService(repos)
	trainService := NewTrainService(repos, routeIndex, valkey)
	paymentService := NewPaymentService(repos, bookingService, paymentClient, natsClient)

	return &Services{
		Bookings: bookingService,
		Queues:   queueService,
		Trains:   trainService,
		Payments: paymentService,
	}
}
