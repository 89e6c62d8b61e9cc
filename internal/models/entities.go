package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Train represents a train in the system
type Train struct {
	TrainID     int64  `json:"train_id" db:"train_id"`
	TrainNumber string `json:"train_number" db:"train_number"`
	TrainName   string `json:"train_name" db:"train_name"`
}

// Route represents a scheduled run of a train between two stations
type Route struct {
	RouteID            int64     `json:"route_id" db:"route_id"`
	TrainID            int64     `json:"train_id" db:"train_id"`
	SourceStation      string    `json:"source_station" db:"source_station"`
	DestinationStation string    `json:"destination_station" db:"destination_station"`
	DepartureTime      time.Time `json:"departure_time" db:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time" db:"arrival_time"`
	Price              int64     `json:"price" db:"price"`
}

// Class represents a coach class (Sleeper, AC 3-tier, ...) of a train
type Class struct {
	ClassID   int64  `json:"class_id" db:"class_id"`
	TrainID   int64  `json:"train_id" db:"train_id"`
	ClassName string `json:"class_name" db:"class_name"`
}

// Compartment represents a physical coach within a class
type Compartment struct {
	CompartmentID   int64  `json:"compartment_id" db:"compartment_id"`
	ClassID         int64  `json:"class_id" db:"class_id"`
	CompartmentName string `json:"compartment_name" db:"compartment_name"`
}

// Seat represents a single berth. IsAvailable is the sole admission
// conflict point: flipping it from true to false reserves the seat.
type Seat struct {
	SeatID        int64     `json:"seat_id" db:"seat_id"`
	CompartmentID int64     `json:"compartment_id" db:"compartment_id"`
	BerthType     BerthType `json:"berth_type" db:"berth_type"`
	SeatNumber    int       `json:"seat_number" db:"seat_number"`
	IsAvailable   bool      `json:"is_available" db:"is_available"`
}

// Booking represents a booking in the system. SeatID is set only while
// the booking is Confirmed.
type Booking struct {
	BookingID     int64         `json:"booking_id" db:"booking_id"`
	UserID        int64         `json:"user_id" db:"user_id"`
	TrainID       int64         `json:"train_id" db:"train_id"`
	RouteID       int64         `json:"route_id" db:"route_id"`
	SeatID        *int64        `json:"seat_id" db:"seat_id"`
	PassengerName string        `json:"passenger_name" db:"passenger_name"`
	PassengerAge  int           `json:"passenger_age" db:"passenger_age"`
	Status        BookingStatus `json:"status" db:"status"`
	BookingTime   time.Time     `json:"booking_time" db:"booking_time"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// QueueEntry represents one active or promoted slot in a waiting tier.
// Active entries of one (kind, train, route) group always occupy the
// dense position range 1..N.
type QueueEntry struct {
	EntryID     int64       `json:"entry_id" db:"entry_id"`
	Kind        QueueKind   `json:"kind" db:"kind"`
	UserID      int64       `json:"user_id" db:"user_id"`
	TrainID     int64       `json:"train_id" db:"train_id"`
	RouteID     int64       `json:"route_id" db:"route_id"`
	Position    int         `json:"position" db:"position"`
	Status      QueueStatus `json:"status" db:"status"`
	RequestTime time.Time   `json:"request_time" db:"request_time"`
}

// Payment represents one payment attempt against a booking
type Payment struct {
	PaymentID     int64         `json:"payment_id" db:"payment_id"`
	BookingID     int64         `json:"booking_id" db:"booking_id"`
	OrderID       string        `json:"order_id" db:"order_id"`
	TransactionID *string       `json:"transaction_id" db:"transaction_id"`
	Amount        int64         `json:"amount" db:"amount"`
	Method        string        `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	PaymentTime   time.Time     `json:"payment_time" db:"payment_time"`
}
