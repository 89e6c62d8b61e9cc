package integration

import (
	"fmt"
	"testing"

	"railbook/internal/models"
)

// TestQueueAdmissionAndCascade books every remaining seat on one
// train, pushes two more bookings into RAC, then cancels a confirmed
// booking and watches the head of RAC take the freed seat.
//
// Needs a train that is small enough to fill; skips otherwise.
func TestQueueAdmissionAndCascade(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	avail := c.Availability(t, train.TrainID)
	if avail.AvailableSeats == 0 || avail.AvailableSeats > 60 {
		t.Skipf("Train %d has %d free seats, want 1..60 for this test", train.TrainID, avail.AvailableSeats)
	}
	if avail.RACDepth > 0 || avail.WaitlistDepth > 0 {
		t.Skipf("Train %d already has queued passengers", train.TrainID)
	}

	var created []int64
	defer func() {
		for _, id := range created {
			c.CancelBooking(t, id)
		}
	}()

	book := func(name string) *models.BookingResult {
		result := c.CreateBooking(t, models.CreateBookingRequest{
			TrainID:       train.TrainID,
			RouteID:       route.RouteID,
			PassengerName: name,
			PassengerAge:  30,
		})
		created = append(created, result.BookingID)
		return result
	}

	// fill the train
	var lastConfirmed *models.BookingResult
	for i := 0; i < avail.AvailableSeats; i++ {
		result := book(fmt.Sprintf("Filler %d", i))
		if result.Status != models.BookingConfirmed {
			t.Fatalf("Booking %d expected Confirmed while seats remain, got %s", i, result.Status)
		}
		lastConfirmed = result
	}

	// next two land in RAC at positions 1 and 2
	first := book("Rac One")
	if first.Status != models.BookingRAC || first.Position != 1 {
		t.Fatalf("Expected RAC position 1, got %s position %d", first.Status, first.Position)
	}
	if first.Message != "Added to RAC. Position: 1" {
		t.Fatalf("Unexpected RAC message: %q", first.Message)
	}

	second := book("Rac Two")
	if second.Status != models.BookingRAC || second.Position != 2 {
		t.Fatalf("Expected RAC position 2, got %s position %d", second.Status, second.Position)
	}

	entries := c.ListRAC(t, train.TrainID, route.RouteID)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 RAC entries, got %d", len(entries))
	}
	assertDensePositions(t, entries)

	// cancel a seat holder; the RAC head must take the freed seat
	cancel := c.CancelBooking(t, lastConfirmed.BookingID)
	if !cancel.Cancelled {
		t.Fatalf("Cancel failed: %s", cancel.Message)
	}

	entries = c.ListRAC(t, train.TrainID, route.RouteID)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 RAC entry after cascade, got %d", len(entries))
	}
	assertDensePositions(t, entries)

	bookings := c.ListBookings(t)
	for _, b := range bookings {
		if b.BookingID == first.BookingID && b.Status != models.BookingConfirmed {
			t.Fatalf("RAC head booking %d should be Confirmed after cascade, got %s", first.BookingID, b.Status)
		}
	}
}

// TestWaitlistDepthReporting checks availability numbers agree with
// the queue listings.
func TestWaitlistDepthReporting(t *testing.T) {
	c := newClient(t)
	train, route := pickRoute(t, c)

	avail := c.Availability(t, train.TrainID)
	rac := c.ListRAC(t, train.TrainID, route.RouteID)
	waitlist := c.ListWaitlist(t, train.TrainID, route.RouteID)

	if avail.RACDepth < len(rac) {
		t.Fatalf("Availability reports RAC depth %d, listing has %d entries", avail.RACDepth, len(rac))
	}
	if avail.WaitlistDepth < len(waitlist) {
		t.Fatalf("Availability reports waitlist depth %d, listing has %d entries", avail.WaitlistDepth, len(waitlist))
	}

	assertDensePositions(t, rac)
	assertDensePositions(t, waitlist)
}
