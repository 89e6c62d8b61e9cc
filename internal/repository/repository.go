package repository

import (
	"railbook/internal/database"
)

type Repositories struct {
	Trains   *TrainRepository
	Seats    *SeatRepository
	RAC      *QueueRepository
	Waitlist *QueueRepository
	Bookings *BookingRepository
	Users    *UserRepository
	Payments *PaymentRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Trains:   NewTrainRepository(db),
		Seats:    NewSeatRepository(db),
		RAC:      NewRACRepository(db),
		Waitlist: NewWaitlistRepository(db),
		Bookings: NewBookingRepository(db),
		Users:    NewUserRepository(db),
		Payments: NewPaymentRepository(db),
	}
}
