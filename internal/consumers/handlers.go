package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"railbook/internal/cache"
	"railbook/internal/models"
	"railbook/internal/service"
)

type Handlers struct {
	bookings *service.BookingService
	valkey   *cache.ValkeyClient
}

func NewHandlers(bookings *service.BookingService, valkey *cache.ValkeyClient) *Handlers {
	return &Handlers{
		bookings: bookings,
		valkey:   valkey,
	}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Booking created",
		"booking_id", event.BookingID,
		"train_id", event.TrainID,
		"status", event.Status)

	h.invalidateAvailability(event.TrainID)

	m.Ack()
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Booking cancelled",
		"booking_id", event.BookingID,
		"train_id", event.TrainID,
		"reason", event.Reason)

	h.invalidateAvailability(event.TrainID)

	m.Ack()
}

func (h *Handlers) HandleBookingPromoted(m *stan.Msg) {
	var event models.BookingPromotedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking promoted event", "error", err)
		return
	}

	logger := slog.With(
		"booking_id", event.BookingID,
		"train_id", event.TrainID,
		"from", event.From,
		"to", event.To)
	if event.SeatID != nil {
		logger = logger.With("seat_id", *event.SeatID)
	}
	logger.Info("Booking promoted")

	h.invalidateAvailability(event.TrainID)

	m.Ack()
}

func (h *Handlers) HandlePaymentInitiated(m *stan.Msg) {
	var event models.PaymentInitiatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment initiated event", "error", err)
		return
	}

	slog.Info("Payment initiated",
		"booking_id", event.BookingID,
		"order_id", event.OrderID,
		"amount", event.Amount)

	m.Ack()
}

func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		return
	}

	slog.Info("Payment completed",
		"booking_id", event.BookingID,
		"order_id", event.OrderID)

	m.Ack()
}

// HandlePaymentFailed cancels the booking behind a failed payment. The
// API already does this synchronously on gateway notifications; cancel
// is idempotent so replays and the double path are harmless.
func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		return
	}

	slog.Info("Payment failed",
		"booking_id", event.BookingID,
		"order_id", event.OrderID,
		"reason", event.Reason)

	ctx := context.Background()
	if _, err := h.bookings.Cancel(ctx, event.BookingID, "Payment failed"); err != nil {
		slog.Error("Failed to cancel booking after payment failure",
			"booking_id", event.BookingID, "error", err)
		return
	}

	m.Ack()
}

func (h *Handlers) invalidateAvailability(trainID int64) {
	if h.valkey == nil {
		return
	}
	if err := h.valkey.InvalidateAvailability(context.Background(), trainID); err != nil {
		slog.Warn("Failed to invalidate availability cache", "train_id", trainID, "error", err)
	}
}
