package models

import (
	"fmt"
	"strings"
)

// FlexibleBool parses a boolean out of strings and numbers as well as
// real JSON booleans. Payment gateways are not consistent here.
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreateBookingRequest - request body for creating a booking. SeatID is
// optional; when omitted the engine picks any free seat on the train.
type CreateBookingRequest struct {
	TrainID       int64  `json:"train_id" binding:"required"`
	RouteID       int64  `json:"route_id" binding:"required"`
	PassengerName string `json:"passenger_name" binding:"required"`
	PassengerAge  int    `json:"passenger_age" binding:"required"`
	SeatID        *int64 `json:"seat_id,omitempty"`
}

// BookingResult - outcome of an admission decision
type BookingResult struct {
	Success   bool          `json:"success"`
	BookingID int64         `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	SeatID    *int64        `json:"seat_id,omitempty"`
	Position  int           `json:"position,omitempty"`
	Message   string        `json:"message"`
}

// CancelBookingRequest - request body for cancelling a booking
type CancelBookingRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// CancelBookingResponse - outcome of a cancellation
type CancelBookingResponse struct {
	BookingID int64  `json:"booking_id"`
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

// BookingView - one row of a booking listing, joined with train and
// route details
type BookingView struct {
	BookingID     int64         `json:"booking_id"`
	TrainName     string        `json:"train_name"`
	TrainNumber   string        `json:"train_number"`
	Source        string        `json:"source_station"`
	Destination   string        `json:"destination_station"`
	PassengerName string        `json:"passenger_name"`
	PassengerAge  int           `json:"passenger_age"`
	SeatNumber    *int          `json:"seat_number,omitempty"`
	BerthType     *BerthType    `json:"berth_type,omitempty"`
	Status        BookingStatus `json:"status"`
	BookingTime   string        `json:"booking_time"`
}

// QueueEntryView - one row of a queue listing
type QueueEntryView struct {
	EntryID       int64  `json:"entry_id"`
	Position      int    `json:"position"`
	PassengerName string `json:"passenger_name"`
	TrainName     string `json:"train_name"`
	TrainNumber   string `json:"train_number"`
	RouteID       int64  `json:"route_id"`
	RequestTime   string `json:"request_time"`
}

// TrainAvailability - seat counts for one train
type TrainAvailability struct {
	TrainID        int64 `json:"train_id"`
	TotalSeats     int   `json:"total_seats"`
	AvailableSeats int   `json:"available_seats"`
	RACDepth       int   `json:"rac_depth"`
	WaitlistDepth  int   `json:"waitlist_depth"`
}

// SeatView - one seat of a train layout listing
type SeatView struct {
	SeatID          int64     `json:"seat_id"`
	ClassName       string    `json:"class_name"`
	CompartmentName string    `json:"compartment_name"`
	SeatNumber      int       `json:"seat_number"`
	BerthType       BerthType `json:"berth_type"`
	IsAvailable     bool      `json:"is_available"`
}

// RouteSearchResult - one hit of a route search
type RouteSearchResult struct {
	RouteID            int64  `json:"route_id"`
	TrainID            int64  `json:"train_id"`
	TrainName          string `json:"train_name"`
	TrainNumber        string `json:"train_number"`
	SourceStation      string `json:"source_station"`
	DestinationStation string `json:"destination_station"`
	DepartureTime      string `json:"departure_time"`
	ArrivalTime        string `json:"arrival_time"`
	Price              int64  `json:"price"`
}

// PaymentNotificationPayload - webhook body sent by the payment gateway
type PaymentNotificationPayload struct {
	PaymentID string                 `json:"paymentId"`
	OrderID   string                 `json:"orderId"`
	Status    string                 `json:"status"`
	Success   FlexibleBool           `json:"success"`
	TeamSlug  string                 `json:"teamSlug"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}
