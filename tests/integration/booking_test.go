package integration

import (
	"net/http"
	"testing"

	"railbook/internal/models"
)

func TestHealthCheck(t *testing.T) {
	c := newClient(t)
	c.HealthCheck(t)
}

func TestCreateAndCancelBooking(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	result := c.CreateBooking(t, models.CreateBookingRequest{
		TrainID:       train.TrainID,
		RouteID:       route.RouteID,
		PassengerName: "Integration Passenger",
		PassengerAge:  34,
	})

	if result.BookingID == 0 {
		t.Fatal("Expected non-zero booking ID")
	}
	if !result.Status.Valid() {
		t.Fatalf("Unexpected booking status %q", result.Status)
	}

	bookings := c.ListBookings(t)
	found := false
	for _, b := range bookings {
		if b.BookingID == result.BookingID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("Booking %d not found in listing", result.BookingID)
	}

	cancel := c.CancelBooking(t, result.BookingID)
	if !cancel.Cancelled {
		t.Fatalf("Expected booking %d to be cancelled: %s", result.BookingID, cancel.Message)
	}

	// cancelling again must still succeed
	again := c.CancelBooking(t, result.BookingID)
	if !again.Cancelled {
		t.Fatalf("Repeated cancel of booking %d failed: %s", result.BookingID, again.Message)
	}
}

func TestPreferredSeatBooking(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	seat := findFreeSeat(c.ListSeats(t, train.TrainID))
	if seat == nil {
		t.Skip("No free seat available on the first train")
	}

	result := c.CreateBooking(t, models.CreateBookingRequest{
		TrainID:       train.TrainID,
		RouteID:       route.RouteID,
		PassengerName: "Seat Picker",
		PassengerAge:  41,
		SeatID:        &seat.SeatID,
	})
	defer c.CancelBooking(t, result.BookingID)

	if result.Status != models.BookingConfirmed {
		t.Fatalf("Expected Confirmed for a free preferred seat, got %s", result.Status)
	}
	if result.SeatID == nil || *result.SeatID != seat.SeatID {
		t.Fatalf("Expected seat %d to be assigned, got %v", seat.SeatID, result.SeatID)
	}
}

func TestBookingValidation(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	cases := []struct {
		name string
		req  models.CreateBookingRequest
	}{
		{
			name: "short passenger name",
			req: models.CreateBookingRequest{
				TrainID:       train.TrainID,
				RouteID:       route.RouteID,
				PassengerName: "@#$%",
				PassengerAge:  30,
			},
		},
		{
			name: "age out of range",
			req: models.CreateBookingRequest{
				TrainID:       train.TrainID,
				RouteID:       route.RouteID,
				PassengerName: "Valid Name",
				PassengerAge:  121,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := c.makeRequest(t, "POST", "/api/bookings", tc.req)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAvailabilityCounts(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	before := c.Availability(t, train.TrainID)
	if before.TotalSeats == 0 {
		t.Skip("Train has no seats, run the generator first")
	}

	result := c.CreateBooking(t, models.CreateBookingRequest{
		TrainID:       train.TrainID,
		RouteID:       route.RouteID,
		PassengerName: "Counter Check",
		PassengerAge:  28,
	})
	defer c.CancelBooking(t, result.BookingID)

	if result.Status != models.BookingConfirmed {
		t.Skipf("Train is full, admission went to %s", result.Status)
	}

	if before.AvailableSeats == 0 {
		t.Fatalf("Got Confirmed with zero seats reported available: %+v", before)
	}
}

func TestUnauthorizedRequest(t *testing.T) {
	c := newClient(t)

	resp, err := c.HTTPClient.Get(c.BaseURL + "/api/bookings")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401 without credentials, got %d", resp.StatusCode)
	}
}

func TestRouteSearch(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	results := c.SearchRoutes(t, route.SourceStation)
	if len(results) == 0 {
		t.Fatalf("Search for %q returned nothing", route.SourceStation)
	}

	_ = train
	for _, r := range results {
		if r.RouteID == route.RouteID {
			return
		}
	}
	t.Logf("Route %d not in first page of results for %q", route.RouteID, route.SourceStation)
}
