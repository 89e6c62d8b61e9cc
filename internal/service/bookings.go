package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"railbook/internal/cache"
	errs "railbook/internal/errors"
	"railbook/internal/external"
	"railbook/internal/logger"
	"railbook/internal/messaging"
	"railbook/internal/metrics"
	"railbook/internal/models"
	"railbook/internal/repository"
)

// BookingService is the admission controller. Every create and cancel
// runs as one transaction against the store; events and cache
// invalidation happen only after the transaction committed.
type BookingService struct {
	store         repository.Store
	repos         *repository.Repositories
	paymentClient *external.PaymentClient
	natsClient    *messaging.NATSClient
	valkey        *cache.ValkeyClient
	racCapacity   int
}

func NewBookingService(store repository.Store, repos *repository.Repositories, paymentClient *external.PaymentClient, natsClient *messaging.NATSClient, valkey *cache.ValkeyClient, racCapacity int) *BookingService {
	return &BookingService{
		store:         store,
		repos:         repos,
		paymentClient: paymentClient,
		natsClient:    natsClient,
		valkey:        valkey,
		racCapacity:   racCapacity,
	}
}

var nameIllegalChars = regexp.MustCompile(`[^a-zA-Z0-9 .\-]`)

// sanitizePassengerName strips illegal characters and collapses the
// result. At least two characters must survive.
func sanitizePassengerName(name string) (string, error) {
	cleaned := strings.TrimSpace(nameIllegalChars.ReplaceAllString(name, ""))
	if len(cleaned) < 2 {
		return "", errs.Validationf("passenger name must have at least 2 valid characters")
	}
	return cleaned, nil
}

func validatePassengerAge(age int) error {
	if age <= 0 || age > 120 {
		return errs.Validationf("passenger age must be between 1 and 120")
	}
	return nil
}

// Create decides admission for one passenger: a Confirmed seat when
// one can be reserved, otherwise a RAC slot while the RAC tier has
// room, otherwise the waitlist. Nothing is persisted when validation
// fails.
func (s *BookingService) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest) (*models.BookingResult, error) {
	name, err := sanitizePassengerName(req.PassengerName)
	if err != nil {
		return nil, err
	}
	if err := validatePassengerAge(req.PassengerAge); err != nil {
		return nil, err
	}

	result := &models.BookingResult{}
	var created models.BookingCreatedEvent
	var initiated *models.PaymentInitiatedEvent
	var opened *models.Payment

	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		route, err := tx.Routes().GetRoute(ctx, req.RouteID)
		if err != nil {
			return fmt.Errorf("failed to get route: %w", err)
		}
		if route == nil {
			return errs.ErrRouteNotFound
		}
		if route.TrainID != req.TrainID {
			return errs.Validationf("route %d does not belong to train %d", req.RouteID, req.TrainID)
		}

		seatID, err := s.acquireSeat(ctx, tx, req)
		if err != nil {
			return err
		}

		booking := &models.Booking{
			UserID:        userID,
			TrainID:       req.TrainID,
			RouteID:       req.RouteID,
			PassengerName: name,
			PassengerAge:  req.PassengerAge,
		}

		if seatID != nil {
			booking.SeatID = seatID
			booking.Status = models.BookingConfirmed
			if err := tx.Bookings().Insert(ctx, booking); err != nil {
				return fmt.Errorf("failed to create booking: %w", err)
			}

			payment, err := s.openPayment(ctx, tx, booking.BookingID, route.Price)
			if err != nil {
				return err
			}
			opened = payment
			initiated = &models.PaymentInitiatedEvent{
				BookingID: booking.BookingID,
				OrderID:   payment.OrderID,
				Amount:    payment.Amount,
				Timestamp: time.Now(),
			}

			result.SeatID = seatID
			result.Message = fmt.Sprintf("Booking confirmed. Seat: %d", *seatID)
		} else {
			racCount, err := tx.RAC().Count(ctx, req.TrainID, req.RouteID)
			if err != nil {
				return fmt.Errorf("failed to count RAC entries: %w", err)
			}

			if racCount < s.racCapacity {
				booking.Status = models.BookingRAC
				if err := tx.Bookings().Insert(ctx, booking); err != nil {
					return fmt.Errorf("failed to create booking: %w", err)
				}
				entry, err := tx.RAC().Enqueue(ctx, userID, req.TrainID, req.RouteID)
				if err != nil {
					return err
				}
				result.Position = entry.Position
				result.Message = fmt.Sprintf("Added to RAC. Position: %d", entry.Position)
			} else {
				booking.Status = models.BookingWaiting
				if err := tx.Bookings().Insert(ctx, booking); err != nil {
					return fmt.Errorf("failed to create booking: %w", err)
				}
				entry, err := tx.Waitlist().Enqueue(ctx, userID, req.TrainID, req.RouteID)
				if err != nil {
					return err
				}
				result.Position = entry.Position
				result.Message = fmt.Sprintf("Added to Waitlist. Position: %d", entry.Position)
			}
		}

		result.Success = true
		result.BookingID = booking.BookingID
		result.Status = booking.Status
		created = models.BookingCreatedEvent{
			BookingID: booking.BookingID,
			TrainID:   booking.TrainID,
			RouteID:   booking.RouteID,
			UserID:    userID,
			Status:    booking.Status,
			Timestamp: time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(string(result.Status)).Inc()
	s.invalidateAvailability(ctx, req.TrainID)
	s.publish(ctx, models.EventBookingCreated, created)
	if initiated != nil {
		s.publish(ctx, models.EventPaymentInitiated, *initiated)
		s.registerGatewayPayment(ctx, opened)
	}

	return result, nil
}

// acquireSeat tries to take a seat for the new booking. A requested
// seat is reserved compare-and-set; without a request the engine keeps
// picking free seats until one reservation lands or the train is full.
// Returns nil when no seat could be taken.
func (s *BookingService) acquireSeat(ctx context.Context, tx repository.Tx, req *models.CreateBookingRequest) (*int64, error) {
	if req.SeatID != nil {
		ok, err := tx.Seats().BelongsToTrain(ctx, *req.SeatID, req.TrainID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.Validationf("seat %d does not belong to train %d", *req.SeatID, req.TrainID)
		}

		reserved, err := tx.Seats().Reserve(ctx, *req.SeatID)
		if err != nil {
			return nil, err
		}
		if reserved {
			return req.SeatID, nil
		}
		return nil, nil
	}

	for {
		seat, err := tx.Seats().FindAvailable(ctx, req.TrainID)
		if err != nil {
			return nil, err
		}
		if seat == nil {
			return nil, nil
		}

		reserved, err := tx.Seats().Reserve(ctx, seat.SeatID)
		if err != nil {
			return nil, err
		}
		if reserved {
			id := seat.SeatID
			return &id, nil
		}
		// someone else took it between lookup and reserve, look again
	}
}

// Cancel marks a booking Cancelled and cascades: a vacated seat drains
// through RAC, and a vacated RAC slot pulls the waitlist head forward.
// Cancelling an already cancelled booking is a no-op.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64, reason string) (*models.CancelBookingResponse, error) {
	resp := &models.CancelBookingResponse{BookingID: bookingID}
	var trainID int64
	var promoted []models.BookingPromotedEvent
	alreadyCancelled := false
	wasConfirmed := false

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		promoted = promoted[:0]
		wasConfirmed = false

		booking, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if booking == nil {
			return errs.ErrBookingNotFound
		}
		trainID = booking.TrainID

		if booking.Status == models.BookingCancelled {
			alreadyCancelled = true
			resp.Cancelled = true
			resp.Message = "Booking was already cancelled"
			return nil
		}

		if err := tx.Bookings().SetStatus(ctx, bookingID, models.BookingCancelled); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		switch booking.Status {
		case models.BookingConfirmed:
			wasConfirmed = true
			if booking.SeatID != nil {
				seatID := *booking.SeatID
				if err := tx.Bookings().ClearSeat(ctx, bookingID); err != nil {
					return err
				}
				if err := tx.Seats().Release(ctx, seatID); err != nil {
					return fmt.Errorf("failed to release seat: %w", err)
				}
				if err := s.fillVacatedSeat(ctx, tx, booking.TrainID, booking.RouteID, &promoted); err != nil {
					return err
				}
			}

		case models.BookingRAC:
			entry, err := tx.RAC().PositionOf(ctx, booking.UserID, booking.TrainID, booking.RouteID)
			if err != nil {
				return err
			}
			if entry != nil {
				if _, err := tx.RAC().Remove(ctx, entry.EntryID); err != nil {
					return err
				}
			}
			if err := s.backfillRAC(ctx, tx, booking.TrainID, booking.RouteID, &promoted); err != nil {
				return err
			}

		case models.BookingWaiting:
			entry, err := tx.Waitlist().PositionOf(ctx, booking.UserID, booking.TrainID, booking.RouteID)
			if err != nil {
				return err
			}
			if entry != nil {
				if _, err := tx.Waitlist().Remove(ctx, entry.EntryID); err != nil {
					return err
				}
			}
		}

		resp.Cancelled = true
		resp.Message = "Booking cancelled"
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyCancelled {
		return resp, nil
	}

	metrics.CancellationsTotal.Inc()
	s.invalidateAvailability(ctx, trainID)
	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID: bookingID,
		TrainID:   trainID,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	for _, p := range promoted {
		metrics.PromotionsTotal.WithLabelValues(string(p.From)).Inc()
		s.publish(ctx, models.EventBookingPromoted, p)
	}
	if wasConfirmed {
		s.voidGatewayPayment(ctx, bookingID, reason)
	}

	return resp, nil
}

// fillVacatedSeat moves the RAC head onto a free seat, then lets the
// waitlist head take the vacated RAC slot. With an empty RAC the seat
// simply stays free; the waitlist never jumps straight to a seat.
func (s *BookingService) fillVacatedSeat(ctx context.Context, tx repository.Tx, trainID, routeID int64, promoted *[]models.BookingPromotedEvent) error {
	seat, err := tx.Seats().FindAvailable(ctx, trainID)
	if err != nil {
		return err
	}
	if seat == nil {
		return nil
	}

	head, err := tx.RAC().DequeueHead(ctx, trainID, routeID)
	if err != nil {
		return err
	}
	if head == nil {
		return nil
	}

	booking, err := tx.Bookings().FindOldestByStatus(ctx, head.UserID, trainID, routeID, models.BookingRAC)
	if err != nil {
		return err
	}
	if booking == nil {
		// queue entry without a matching booking; consume the entry
		// and keep the seat free rather than fail the cancellation
		logger.WithFields("train_id", trainID, "route_id", routeID, "user_id", head.UserID).
			Warn("RAC entry has no matching RAC booking")
		return s.backfillRAC(ctx, tx, trainID, routeID, promoted)
	}

	reserved, err := tx.Seats().Reserve(ctx, seat.SeatID)
	if err != nil {
		return err
	}
	if !reserved {
		return errs.ErrSeatUnavailable
	}

	if err := tx.Bookings().AssignSeat(ctx, booking.BookingID, seat.SeatID); err != nil {
		return err
	}

	route, err := tx.Routes().GetRoute(ctx, routeID)
	if err != nil {
		return err
	}
	if route != nil {
		if _, err := s.openPayment(ctx, tx, booking.BookingID, route.Price); err != nil {
			return err
		}
	}

	seatID := seat.SeatID
	*promoted = append(*promoted, models.BookingPromotedEvent{
		BookingID: booking.BookingID,
		TrainID:   trainID,
		From:      models.BookingRAC,
		To:        models.BookingConfirmed,
		SeatID:    &seatID,
		Timestamp: time.Now(),
	})

	return s.backfillRAC(ctx, tx, trainID, routeID, promoted)
}

// backfillRAC advances the waitlist head into the RAC tail after a RAC
// slot opened up.
func (s *BookingService) backfillRAC(ctx context.Context, tx repository.Tx, trainID, routeID int64, promoted *[]models.BookingPromotedEvent) error {
	head, err := tx.Waitlist().DequeueHead(ctx, trainID, routeID)
	if err != nil {
		return err
	}
	if head == nil {
		return nil
	}

	if _, err := tx.RAC().Enqueue(ctx, head.UserID, trainID, routeID); err != nil {
		return err
	}

	booking, err := tx.Bookings().FindOldestByStatus(ctx, head.UserID, trainID, routeID, models.BookingWaiting)
	if err != nil {
		return err
	}
	if booking == nil {
		logger.WithFields("train_id", trainID, "route_id", routeID, "user_id", head.UserID).
			Warn("waitlist entry has no matching Waiting booking")
		return nil
	}

	if err := tx.Bookings().SetStatus(ctx, booking.BookingID, models.BookingRAC); err != nil {
		return err
	}

	*promoted = append(*promoted, models.BookingPromotedEvent{
		BookingID: booking.BookingID,
		TrainID:   trainID,
		From:      models.BookingWaiting,
		To:        models.BookingRAC,
		Timestamp: time.Now(),
	})

	return nil
}

// openPayment records a pending payment attempt for a confirmed
// booking.
func (s *BookingService) openPayment(ctx context.Context, tx repository.Tx, bookingID, amount int64) (*models.Payment, error) {
	payment := &models.Payment{
		BookingID: bookingID,
		OrderID:   uuid.New().String(),
		Amount:    amount,
		Method:    "card",
		Status:    models.PaymentPending,
	}
	if err := tx.Payments().Insert(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to open payment: %w", err)
	}
	return payment, nil
}

// registerGatewayPayment opens the committed payment at the gateway and
// records the gateway payment id. On gateway failure the payment stays
// Pending and the hold job reaps the booking if it never completes.
func (s *BookingService) registerGatewayPayment(ctx context.Context, payment *models.Payment) {
	if s.paymentClient == nil || s.repos == nil || payment == nil {
		return
	}

	description := fmt.Sprintf("Booking %d", payment.BookingID)
	resp, err := s.paymentClient.InitPayment(ctx, payment.Amount, payment.OrderID, "KZT", description)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to init payment at gateway",
			"order_id", payment.OrderID, "error", err)
		return
	}

	if err := s.repos.Payments.UpdateStatus(ctx, payment.PaymentID, models.PaymentPending, &resp.PaymentID); err != nil {
		logger.WithContext(ctx).Error("Failed to record gateway payment id",
			"order_id", payment.OrderID, "error", err)
	}
}

// voidGatewayPayment cancels the pending payment of a cancelled
// booking at the gateway so the hold there is released.
func (s *BookingService) voidGatewayPayment(ctx context.Context, bookingID int64, reason string) {
	if s.paymentClient == nil || s.repos == nil {
		return
	}

	payment, err := s.repos.Payments.LatestByBooking(ctx, bookingID)
	if err != nil {
		logger.WithBooking(bookingID).Error("Failed to look up payment for cancellation", "error", err)
		return
	}
	if payment == nil || payment.Status != models.PaymentPending {
		return
	}

	gatewayID := payment.OrderID
	if payment.TransactionID != nil {
		gatewayID = *payment.TransactionID
	}
	if err := s.paymentClient.CancelPayment(ctx, gatewayID, reason); err != nil {
		logger.WithBooking(bookingID).Warn("Failed to cancel payment at gateway",
			"order_id", payment.OrderID, "error", err)
		return
	}

	if err := s.repos.Payments.UpdateStatus(ctx, payment.PaymentID, models.PaymentFailed, payment.TransactionID); err != nil {
		logger.WithBooking(bookingID).Error("Failed to mark payment failed",
			"order_id", payment.OrderID, "error", err)
	}
}

// GetByID returns one booking, or ErrBookingNotFound.
func (s *BookingService) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, errs.ErrBookingNotFound
	}
	return booking, nil
}

// ListForUser returns the caller's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]models.BookingView, error) {
	views, err := s.repos.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return views, nil
}

// ListAll returns every booking in the system.
func (s *BookingService) ListAll(ctx context.Context) ([]models.BookingView, error) {
	views, err := s.repos.Bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return views, nil
}

// CancelExpired cancels Confirmed bookings that were never paid within
// the hold period. The expiration job calls it on a ticker.
func (s *BookingService) CancelExpired(ctx context.Context, hold time.Duration) (int, error) {
	cutoff := time.Now().Add(-hold)
	expired, err := s.repos.Bookings.ListUnpaidConfirmed(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid bookings: %w", err)
	}

	cancelled := 0
	for _, b := range expired {
		if _, err := s.Cancel(ctx, b.BookingID, "Payment hold expired"); err != nil {
			logger.WithBooking(b.BookingID).Error("Failed to cancel expired booking", "error", err)
			continue
		}
		cancelled++
	}

	return cancelled, nil
}

func (s *BookingService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.natsClient == nil {
		return
	}
	if err := s.natsClient.Publish(subject, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

func (s *BookingService) invalidateAvailability(ctx context.Context, trainID int64) {
	if s.valkey == nil {
		return
	}
	if err := s.valkey.InvalidateAvailability(ctx, trainID); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate availability cache",
			"error", err, "train_id", trainID)
	}
}
