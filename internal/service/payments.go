package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	errs "railbook/internal/errors"
	"railbook/internal/external"
	"railbook/internal/logger"
	"railbook/internal/messaging"
	"railbook/internal/models"
	"railbook/internal/repository"
)

// PaymentService resolves payment webhooks against the payment ledger.
// A failed payment cancels its booking, which runs the usual promotion
// cascade.
type PaymentService struct {
	repos         *repository.Repositories
	bookings      *BookingService
	paymentClient *external.PaymentClient
	natsClient    *messaging.NATSClient
}

func NewPaymentService(repos *repository.Repositories, bookings *BookingService, paymentClient *external.PaymentClient, natsClient *messaging.NATSClient) *PaymentService {
	return &PaymentService{
		repos:         repos,
		bookings:      bookings,
		paymentClient: paymentClient,
		natsClient:    natsClient,
	}
}

// HandleNotification applies one gateway webhook. Notifications for
// unknown orders and repeats of already resolved payments are ignored.
func (s *PaymentService) HandleNotification(ctx context.Context, notification *models.PaymentNotificationPayload) error {
	if notification.OrderID == "" {
		return errs.Validationf("notification has no orderId")
	}

	payment, err := s.repos.Payments.GetByOrderID(ctx, notification.OrderID)
	if err != nil {
		return fmt.Errorf("failed to look up payment: %w", err)
	}
	if payment == nil {
		logger.WithContext(ctx).Warn("Payment notification for unknown order",
			"order_id", notification.OrderID)
		return nil
	}
	if payment.Status != models.PaymentPending {
		logger.WithContext(ctx).Info("Payment already resolved, ignoring notification",
			"order_id", notification.OrderID, "status", payment.Status)
		return nil
	}

	var transactionID *string
	if notification.PaymentID != "" {
		transactionID = &notification.PaymentID
	}

	if paymentSucceeded(notification) {
		if err := s.repos.Payments.UpdateStatus(ctx, payment.PaymentID, models.PaymentSuccess, transactionID); err != nil {
			return fmt.Errorf("failed to mark payment successful: %w", err)
		}

		if s.paymentClient != nil && notification.PaymentID != "" {
			if err := s.paymentClient.ConfirmPayment(ctx, notification.PaymentID, payment.Amount); err != nil {
				logger.WithContext(ctx).Error("Failed to confirm payment with gateway",
					"error", err, "payment_id", notification.PaymentID)
			}
		}

		s.publish(ctx, models.EventPaymentCompleted, models.PaymentCompletedEvent{
			BookingID: payment.BookingID,
			OrderID:   payment.OrderID,
			PaymentID: notification.PaymentID,
			Timestamp: time.Now(),
		})
		return nil
	}

	if err := s.repos.Payments.UpdateStatus(ctx, payment.PaymentID, models.PaymentFailed, transactionID); err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	s.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
		BookingID: payment.BookingID,
		OrderID:   payment.OrderID,
		PaymentID: notification.PaymentID,
		Reason:    notification.Status,
		Timestamp: time.Now(),
	})

	if _, err := s.bookings.Cancel(ctx, payment.BookingID, "Payment failed"); err != nil {
		return fmt.Errorf("failed to cancel booking after payment failure: %w", err)
	}

	return nil
}

// CheckOrder queries the gateway for the current state of an order.
func (s *PaymentService) CheckOrder(ctx context.Context, orderID string) (*external.PaymentCheckResponse, error) {
	if s.paymentClient == nil {
		return nil, fmt.Errorf("payment gateway is not configured")
	}
	return s.paymentClient.CheckPayment(ctx, orderID)
}

func paymentSucceeded(n *models.PaymentNotificationPayload) bool {
	if n.Success.Bool() {
		return true
	}
	switch strings.ToUpper(n.Status) {
	case "CONFIRMED", "COMPLETED", "AUTHORIZED", "SUCCESS":
		return true
	}
	return false
}

func (s *PaymentService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.natsClient == nil {
		return
	}
	if err := s.natsClient.Publish(subject, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
