package repository

import (
	"context"
	"database/sql"

	"railbook/internal/database"
	"railbook/internal/models"
)

type PaymentRepository struct {
	q database.Executor
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (booking_id, order_id, transaction_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING payment_id, payment_time`

	err := r.q.QueryRowContext(ctx, query,
		payment.BookingID,
		payment.OrderID,
		payment.TransactionID,
		payment.Amount,
		payment.Method,
		payment.Status,
	).Scan(&payment.PaymentID, &payment.PaymentTime)

	return err
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT payment_id, booking_id, order_id, transaction_id, amount, method, status, payment_time
		FROM payments
		WHERE order_id = $1`

	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&payment.PaymentID,
		&payment.BookingID,
		&payment.OrderID,
		&payment.TransactionID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.PaymentTime,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}

// UpdateStatus resolves a pending payment, recording the gateway
// transaction id when one is known.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status models.PaymentStatus, transactionID *string) error {
	query := `UPDATE payments SET status = $1, transaction_id = COALESCE($2, transaction_id) WHERE payment_id = $3`
	_, err := r.q.ExecContext(ctx, query, status, transactionID, paymentID)
	return err
}

// LatestByBooking returns the most recent payment attempt of a
// booking, or nil when none was made.
func (r *PaymentRepository) LatestByBooking(ctx context.Context, bookingID int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT payment_id, booking_id, order_id, transaction_id, amount, method, status, payment_time
		FROM payments
		WHERE booking_id = $1
		ORDER BY payment_time DESC, payment_id DESC
		LIMIT 1`

	err := r.q.QueryRowContext(ctx, query, bookingID).Scan(
		&payment.PaymentID,
		&payment.BookingID,
		&payment.OrderID,
		&payment.TransactionID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.PaymentTime,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}
