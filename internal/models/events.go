package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingPromoted  = "booking.promoted"
	EventPaymentInitiated = "payment.initiated"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID int64         `json:"booking_id"`
	TrainID   int64         `json:"train_id"`
	RouteID   int64         `json:"route_id"`
	UserID    int64         `json:"user_id"`
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID int64     `json:"booking_id"`
	TrainID   int64     `json:"train_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingPromotedEvent records one step of a promotion cascade: a
// booking advancing from Waiting to RAC or from RAC to Confirmed.
type BookingPromotedEvent struct {
	BookingID int64         `json:"booking_id"`
	TrainID   int64         `json:"train_id"`
	From      BookingStatus `json:"from"`
	To        BookingStatus `json:"to"`
	SeatID    *int64        `json:"seat_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// PaymentInitiatedEvent represents a payment initiation event
type PaymentInitiatedEvent struct {
	BookingID int64     `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentCompletedEvent represents a successful payment event
type PaymentCompletedEvent struct {
	BookingID int64     `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentFailedEvent represents a failed payment event
type PaymentFailedEvent struct {
	BookingID int64     `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
