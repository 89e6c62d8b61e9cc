package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "railbook/internal/errors"
	"railbook/internal/models"
)

const (
	testTrainID = int64(1)
	testRouteID = int64(10)
)

func newTestService(t *testing.T, seats, racCapacity int) (*BookingService, *memStore) {
	t.Helper()

	store := newMemStore()
	store.addRoute(testRouteID, testTrainID, 5000)
	store.addSeats(testTrainID, seats)

	svc := NewBookingService(store, nil, nil, nil, nil, racCapacity)
	return svc, store
}

func bookingReq(name string) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		TrainID:       testTrainID,
		RouteID:       testRouteID,
		PassengerName: name,
		PassengerAge:  35,
	}
}

// assertDenseQueue fails unless the active entries of one queue occupy
// positions 1..N.
func assertDenseQueue(t *testing.T, store *memStore, kind models.QueueKind) {
	t.Helper()
	entries := store.activeEntries(kind, testTrainID, testRouteID)
	for i, e := range entries {
		require.Equal(t, i+1, e.Position, "entry %d of %s queue out of order", i, kind)
	}
}

func TestCreateConfirmsWhileSeatsRemain(t *testing.T) {
	svc, store := newTestService(t, 2, 100)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, bookingReq("Asel Nurlanova"))
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, models.BookingConfirmed, first.Status)
	require.NotNil(t, first.SeatID)
	assert.Equal(t, fmt.Sprintf("Booking confirmed. Seat: %d", *first.SeatID), first.Message)

	second, err := svc.Create(ctx, 2, bookingReq("Daniyar Omarov"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, second.Status)
	require.NotNil(t, second.SeatID)
	assert.NotEqual(t, *first.SeatID, *second.SeatID, "two bookings took the same seat")

	// a pending payment is opened per confirmed booking
	assert.Len(t, store.payments, 2)
	for _, p := range store.payments {
		assert.Equal(t, models.PaymentPending, p.Status)
		assert.Equal(t, int64(5000), p.Amount)
	}
}

func TestCreatePreferredSeat(t *testing.T) {
	svc, _ := newTestService(t, 3, 100)
	ctx := context.Background()

	wanted := int64(2)
	req := bookingReq("Picky Passenger")
	req.SeatID = &wanted

	result, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, result.Status)
	require.NotNil(t, result.SeatID)
	assert.Equal(t, wanted, *result.SeatID)
}

func TestCreatePreferredSeatTakenFallsToRAC(t *testing.T) {
	svc, _ := newTestService(t, 1, 100)
	ctx := context.Background()

	wanted := int64(1)
	first := bookingReq("First Passenger")
	first.SeatID = &wanted
	_, err := svc.Create(ctx, 1, first)
	require.NoError(t, err)

	// same seat requested again: no silent reassignment to another seat
	second := bookingReq("Second Passenger")
	second.SeatID = &wanted
	result, err := svc.Create(ctx, 2, second)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.BookingRAC, result.Status)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, "Added to RAC. Position: 1", result.Message)
}

func TestCreatePreferredSeatWrongTrain(t *testing.T) {
	svc, _ := newTestService(t, 1, 100)
	ctx := context.Background()

	wanted := int64(99)
	req := bookingReq("Wrong Seat")
	req.SeatID = &wanted

	_, err := svc.Create(ctx, 1, req)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestRACPositionsAssignedInOrder(t *testing.T) {
	svc, store := newTestService(t, 1, 100)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		result, err := svc.Create(ctx, int64(10+i), bookingReq(fmt.Sprintf("Queued %d", i)))
		require.NoError(t, err)
		assert.Equal(t, models.BookingRAC, result.Status)
		assert.Equal(t, i, result.Position)
		assert.Equal(t, fmt.Sprintf("Added to RAC. Position: %d", i), result.Message)
	}

	assertDenseQueue(t, store, models.KindRAC)
}

func TestWaitlistAfterRACFull(t *testing.T) {
	svc, _ := newTestService(t, 1, 2)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		result, err := svc.Create(ctx, int64(10+i), bookingReq("Rac Passenger"))
		require.NoError(t, err)
		require.Equal(t, models.BookingRAC, result.Status)
	}

	// RAC is at capacity, the next admission goes to the waitlist
	result, err := svc.Create(ctx, 20, bookingReq("Waiting Passenger"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.BookingWaiting, result.Status)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, "Added to Waitlist. Position: 1", result.Message)
}

func TestCreateValidation(t *testing.T) {
	svc, store := newTestService(t, 1, 100)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *models.CreateBookingRequest
	}{
		{"illegal characters only", &models.CreateBookingRequest{
			TrainID: testTrainID, RouteID: testRouteID, PassengerName: "@#!%", PassengerAge: 30,
		}},
		{"single surviving character", &models.CreateBookingRequest{
			TrainID: testTrainID, RouteID: testRouteID, PassengerName: " A @@", PassengerAge: 30,
		}},
		{"age zero", &models.CreateBookingRequest{
			TrainID: testTrainID, RouteID: testRouteID, PassengerName: "Valid Name", PassengerAge: 0,
		}},
		{"age over limit", &models.CreateBookingRequest{
			TrainID: testTrainID, RouteID: testRouteID, PassengerName: "Valid Name", PassengerAge: 121,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tc.req)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err), "expected a validation error, got %v", err)
		})
	}

	// nothing may be persisted on rejected input
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.entries)
}

func TestCreateNameSanitized(t *testing.T) {
	svc, store := newTestService(t, 1, 100)
	ctx := context.Background()

	result, err := svc.Create(ctx, 1, bookingReq("  J.R. O'Brien-Smith!  "))
	require.NoError(t, err)

	booking := store.bookings[result.BookingID]
	require.NotNil(t, booking)
	assert.Equal(t, "J.R. OBrien-Smith", booking.PassengerName)
}

func TestCreateUnknownRoute(t *testing.T) {
	svc, _ := newTestService(t, 1, 100)
	ctx := context.Background()

	req := bookingReq("Lost Passenger")
	req.RouteID = 999
	req.TrainID = testTrainID

	_, err := svc.Create(ctx, 1, req)
	assert.ErrorIs(t, err, errs.ErrRouteNotFound)
}

func TestCancelConfirmedPromotesRACHead(t *testing.T) {
	svc, store := newTestService(t, 1, 2)
	ctx := context.Background()

	holder, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	racFirst, err := svc.Create(ctx, 2, bookingReq("Rac One"))
	require.NoError(t, err)
	racSecond, err := svc.Create(ctx, 3, bookingReq("Rac Two"))
	require.NoError(t, err)
	waiting, err := svc.Create(ctx, 4, bookingReq("Waiting One"))
	require.NoError(t, err)
	require.Equal(t, models.BookingWaiting, waiting.Status)

	resp, err := svc.Cancel(ctx, holder.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.True(t, resp.Cancelled)

	// RAC head took the freed seat
	promotedBooking := store.bookings[racFirst.BookingID]
	assert.Equal(t, models.BookingConfirmed, promotedBooking.Status)
	require.NotNil(t, promotedBooking.SeatID)
	assert.False(t, store.seats[*promotedBooking.SeatID].IsAvailable)

	// second RAC entry moved up to position 1
	racEntries := store.activeEntries(models.KindRAC, testTrainID, testRouteID)
	require.Len(t, racEntries, 2)
	assert.Equal(t, int64(3), racEntries[0].UserID)
	assertDenseQueue(t, store, models.KindRAC)
	_ = racSecond

	// waitlist head backfilled into RAC
	waitingBooking := store.bookings[waiting.BookingID]
	assert.Equal(t, models.BookingRAC, waitingBooking.Status)
	assert.Empty(t, store.activeEntries(models.KindWaitlist, testTrainID, testRouteID))
}

func TestCancelPromoteBookCancelRoundTrip(t *testing.T) {
	svc, store := newTestService(t, 1, 100)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, bookingReq("Passenger A"))
	require.NoError(t, err)
	require.Equal(t, models.BookingConfirmed, a.Status)

	b, err := svc.Create(ctx, 2, bookingReq("Passenger B"))
	require.NoError(t, err)
	require.Equal(t, models.BookingRAC, b.Status)
	require.Equal(t, 1, b.Position)

	c, err := svc.Create(ctx, 3, bookingReq("Passenger C"))
	require.NoError(t, err)
	require.Equal(t, models.BookingRAC, c.Status)
	require.Equal(t, 2, c.Position)

	// first cancellation: B takes the seat, C moves up
	_, err = svc.Cancel(ctx, a.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, store.bookings[b.BookingID].Status)
	racEntries := store.activeEntries(models.KindRAC, testTrainID, testRouteID)
	require.Len(t, racEntries, 1)
	assert.Equal(t, int64(3), racEntries[0].UserID)
	assert.Equal(t, 1, racEntries[0].Position)

	// a new admission lands behind C
	d, err := svc.Create(ctx, 4, bookingReq("Passenger D"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingRAC, d.Status)
	assert.Equal(t, 2, d.Position)

	// second cancellation: C takes the seat, D moves up
	_, err = svc.Cancel(ctx, b.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, store.bookings[c.BookingID].Status)
	racEntries = store.activeEntries(models.KindRAC, testTrainID, testRouteID)
	require.Len(t, racEntries, 1)
	assert.Equal(t, int64(4), racEntries[0].UserID)
	assert.Equal(t, 1, racEntries[0].Position)
	assertDenseQueue(t, store, models.KindRAC)
}

func TestCancelConfirmedWithEmptyRAC(t *testing.T) {
	svc, store := newTestService(t, 2, 100)
	ctx := context.Background()

	holder, err := svc.Create(ctx, 1, bookingReq("Solo Passenger"))
	require.NoError(t, err)
	seatID := *holder.SeatID

	resp, err := svc.Cancel(ctx, holder.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.True(t, resp.Cancelled)

	// seat simply returns to the pool
	assert.True(t, store.seats[seatID].IsAvailable)
	assert.Equal(t, models.BookingCancelled, store.bookings[holder.BookingID].Status)
}

func TestWaitlistNeverJumpsToSeat(t *testing.T) {
	svc, store := newTestService(t, 1, 100)
	ctx := context.Background()

	holder, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	// force a waitlist entry with an empty RAC tier
	store.nextEntryID++
	store.entries[store.nextEntryID] = &models.QueueEntry{
		EntryID:  store.nextEntryID,
		Kind:     models.KindWaitlist,
		UserID:   5,
		TrainID:  testTrainID,
		RouteID:  testRouteID,
		Position: 1,
		Status:   models.QueueActive,
	}
	waitingBooking := &models.Booking{
		UserID:        5,
		TrainID:       testTrainID,
		RouteID:       testRouteID,
		PassengerName: "Waiting Passenger",
		PassengerAge:  40,
		Status:        models.BookingWaiting,
	}
	store.nextBookingID++
	waitingBooking.BookingID = store.nextBookingID
	store.bookings[waitingBooking.BookingID] = waitingBooking

	_, err = svc.Cancel(ctx, holder.BookingID, "User cancellation")
	require.NoError(t, err)

	// seat stays free; the waiting passenger does not get it directly
	assert.True(t, store.seats[1].IsAvailable)
	assert.Equal(t, models.BookingWaiting, store.bookings[waitingBooking.BookingID].Status)
	assert.Len(t, store.activeEntries(models.KindWaitlist, testTrainID, testRouteID), 1)
}

func TestCancelRACRemovesEntryAndBackfills(t *testing.T) {
	svc, store := newTestService(t, 1, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	racBooking, err := svc.Create(ctx, 2, bookingReq("Rac Passenger"))
	require.NoError(t, err)
	require.Equal(t, models.BookingRAC, racBooking.Status)

	waiting, err := svc.Create(ctx, 3, bookingReq("Waiting Passenger"))
	require.NoError(t, err)
	require.Equal(t, models.BookingWaiting, waiting.Status)

	_, err = svc.Cancel(ctx, racBooking.BookingID, "User cancellation")
	require.NoError(t, err)

	// the waitlist head took the vacated RAC slot
	assert.Equal(t, models.BookingRAC, store.bookings[waiting.BookingID].Status)
	racEntries := store.activeEntries(models.KindRAC, testTrainID, testRouteID)
	require.Len(t, racEntries, 1)
	assert.Equal(t, int64(3), racEntries[0].UserID)
	assert.Equal(t, 1, racEntries[0].Position)
	assert.Empty(t, store.activeEntries(models.KindWaitlist, testTrainID, testRouteID))
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, 1, 100)
	ctx := context.Background()

	holder, err := svc.Create(ctx, 1, bookingReq("Seat Holder"))
	require.NoError(t, err)

	first, err := svc.Cancel(ctx, holder.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.True(t, first.Cancelled)
	assert.Equal(t, "Booking cancelled", first.Message)

	second, err := svc.Cancel(ctx, holder.BookingID, "User cancellation")
	require.NoError(t, err)
	assert.True(t, second.Cancelled)
	assert.Equal(t, "Booking was already cancelled", second.Message)
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _ := newTestService(t, 1, 100)

	_, err := svc.Cancel(context.Background(), 404, "User cancellation")
	assert.ErrorIs(t, err, errs.ErrBookingNotFound)
}

func TestSanitizePassengerName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Asel Nurlanova", "Asel Nurlanova", false},
		{"  J.R. Smith  ", "J.R. Smith", false},
		{"O'Brien", "OBrien", false},
		{"Anna-Maria", "Anna-Maria", false},
		{"@#$%", "", true},
		{"X", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := sanitizePassengerName(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}
