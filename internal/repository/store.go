package repository

import (
	"context"
	"database/sql"

	"railbook/internal/database"
	"railbook/internal/models"
)

// Store runs a group of repository mutations atomically. Every
// admission decision and every cancellation cascade goes through
// WithinTx so either all of its effects commit or none do.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx bundles the repositories bound to one open transaction.
type Tx interface {
	Seats() SeatInventory
	RAC() Queue
	Waitlist() Queue
	Bookings() BookingLedger
	Routes() RouteCatalog
	Payments() PaymentLedger
}

// SeatInventory is the fixed seat pool of the trains. Reserve is the
// only way a seat leaves the pool and is compare-and-set on the
// availability flag.
type SeatInventory interface {
	FindAvailable(ctx context.Context, trainID int64) (*models.Seat, error)
	BelongsToTrain(ctx context.Context, seatID, trainID int64) (bool, error)
	Reserve(ctx context.Context, seatID int64) (bool, error)
	Release(ctx context.Context, seatID int64) error
}

// Queue is one waiting tier of one kind. Active entries per
// (train, route) stay densely numbered 1..N across every operation.
type Queue interface {
	Count(ctx context.Context, trainID, routeID int64) (int, error)
	Enqueue(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error)
	DequeueHead(ctx context.Context, trainID, routeID int64) (*models.QueueEntry, error)
	Remove(ctx context.Context, entryID int64) (bool, error)
	PositionOf(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error)
}

// BookingLedger is the append-only record of bookings. Rows change
// status but are never deleted.
type BookingLedger interface {
	Insert(ctx context.Context, b *models.Booking) error
	GetForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error)
	SetStatus(ctx context.Context, bookingID int64, status models.BookingStatus) error
	AssignSeat(ctx context.Context, bookingID, seatID int64) error
	ClearSeat(ctx context.Context, bookingID int64) error
	FindOldestByStatus(ctx context.Context, userID, trainID, routeID int64, status models.BookingStatus) (*models.Booking, error)
}

// RouteCatalog resolves route details needed during admission.
type RouteCatalog interface {
	GetRoute(ctx context.Context, routeID int64) (*models.Route, error)
}

// PaymentLedger records payment attempts made for bookings.
type PaymentLedger interface {
	Insert(ctx context.Context, p *models.Payment) error
}

// SQLStore is the Postgres-backed Store. One WithinTx call maps to one
// database transaction with retry on serialization failures.
type SQLStore struct {
	db *database.DB
}

func NewStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&sqlTx{tx: tx})
	})
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Seats() SeatInventory    { return &SeatRepository{q: t.tx} }
func (t *sqlTx) RAC() Queue              { return newQueueRepository(t.tx, models.KindRAC) }
func (t *sqlTx) Waitlist() Queue         { return newQueueRepository(t.tx, models.KindWaitlist) }
func (t *sqlTx) Bookings() BookingLedger { return &BookingRepository{q: t.tx} }
func (t *sqlTx) Routes() RouteCatalog    { return &TrainRepository{q: t.tx} }
func (t *sqlTx) Payments() PaymentLedger { return &PaymentRepository{q: t.tx} }
