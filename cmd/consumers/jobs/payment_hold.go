package jobs

import (
	"context"
	"log/slog"
	"time"

	"railbook/internal/service"
)

const checkInterval = 30 * time.Second

// PaymentHoldJob cancels Confirmed bookings whose payment never
// arrived within the hold window. Cancelling frees the seat, which
// drains the RAC and waitlist queues through the usual cascade.
type PaymentHoldJob struct {
	bookings *service.BookingService
	hold     time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

func NewPaymentHoldJob(bookings *service.BookingService, hold time.Duration) *PaymentHoldJob {
	return &PaymentHoldJob{
		bookings: bookings,
		hold:     hold,
		done:     make(chan struct{}),
	}
}

func (j *PaymentHoldJob) Start(ctx context.Context) {
	slog.Info("Starting payment hold job", "check_interval", checkInterval.String(), "hold", j.hold.String())

	j.ticker = time.NewTicker(checkInterval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Payment hold job stopped")
				return
			}
		}
	}()
}

func (j *PaymentHoldJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *PaymentHoldJob) sweep(ctx context.Context) {
	cancelled, err := j.bookings.CancelExpired(ctx, j.hold)
	if err != nil {
		slog.Error("Payment hold sweep failed", "error", err)
		return
	}

	if cancelled > 0 {
		slog.Info("Cancelled unpaid bookings", "count", cancelled)
	}
}
