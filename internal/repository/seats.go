package repository

import (
	"context"
	"database/sql"
	"fmt"

	"railbook/internal/database"
	"railbook/internal/models"
)

type SeatRepository struct {
	q database.Executor
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{q: db}
}

// FindAvailable returns the lowest-numbered free seat of the train, or
// nil when the train is sold out. Inside a transaction the row is
// locked so a concurrent admission cannot pick the same seat.
func (r *SeatRepository) FindAvailable(ctx context.Context, trainID int64) (*models.Seat, error) {
	seat := &models.Seat{}
	query := `
		SELECT s.seat_id, s.compartment_id, s.berth_type, s.seat_number, s.is_available
		FROM seats s
		JOIN compartments c ON s.compartment_id = c.compartment_id
		JOIN classes cl ON c.class_id = cl.class_id
		WHERE cl.train_id = $1 AND s.is_available = TRUE
		ORDER BY s.seat_id
		LIMIT 1
		FOR UPDATE OF s SKIP LOCKED`

	err := r.q.QueryRowContext(ctx, query, trainID).Scan(
		&seat.SeatID,
		&seat.CompartmentID,
		&seat.BerthType,
		&seat.SeatNumber,
		&seat.IsAvailable,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return seat, nil
}

// Reserve flips the availability flag of one seat. It returns false
// when the seat was already taken; the caller then falls through to
// the queues.
func (r *SeatRepository) Reserve(ctx context.Context, seatID int64) (bool, error) {
	query := `UPDATE seats SET is_available = FALSE WHERE seat_id = $1 AND is_available = TRUE`

	result, err := r.q.ExecContext(ctx, query, seatID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Release returns a seat to the pool. Releasing a free seat is a
// no-op, so cancellation stays idempotent.
func (r *SeatRepository) Release(ctx context.Context, seatID int64) error {
	query := `UPDATE seats SET is_available = TRUE WHERE seat_id = $1`

	_, err := r.q.ExecContext(ctx, query, seatID)
	return err
}

// GetByID returns one seat, or nil when it does not exist.
func (r *SeatRepository) GetByID(ctx context.Context, seatID int64) (*models.Seat, error) {
	seat := &models.Seat{}
	query := `
		SELECT seat_id, compartment_id, berth_type, seat_number, is_available
		FROM seats
		WHERE seat_id = $1`

	err := r.q.QueryRowContext(ctx, query, seatID).Scan(
		&seat.SeatID,
		&seat.CompartmentID,
		&seat.BerthType,
		&seat.SeatNumber,
		&seat.IsAvailable,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return seat, err
}

// BelongsToTrain reports whether a seat is part of the given train's
// coaches. A requested seat on the wrong train is rejected before any
// reservation attempt.
func (r *SeatRepository) BelongsToTrain(ctx context.Context, seatID, trainID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM seats s
			JOIN compartments c ON s.compartment_id = c.compartment_id
			JOIN classes cl ON c.class_id = cl.class_id
			WHERE s.seat_id = $1 AND cl.train_id = $2
		)`

	err := r.q.QueryRowContext(ctx, query, seatID, trainID).Scan(&exists)
	return exists, err
}

// ListByTrain returns the full seat layout of a train joined with its
// class and compartment names.
func (r *SeatRepository) ListByTrain(ctx context.Context, trainID int64) ([]models.SeatView, error) {
	query := `
		SELECT s.seat_id, cl.class_name, c.compartment_name, s.seat_number, s.berth_type, s.is_available
		FROM seats s
		JOIN compartments c ON s.compartment_id = c.compartment_id
		JOIN classes cl ON c.class_id = cl.class_id
		WHERE cl.train_id = $1
		ORDER BY cl.class_id, c.compartment_id, s.seat_number`

	rows, err := r.q.QueryContext(ctx, query, trainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.SeatView
	for rows.Next() {
		var sv models.SeatView
		err := rows.Scan(
			&sv.SeatID,
			&sv.ClassName,
			&sv.CompartmentName,
			&sv.SeatNumber,
			&sv.BerthType,
			&sv.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, sv)
	}

	return seats, rows.Err()
}

// CountByTrain returns total and free seat counts for one train.
func (r *SeatRepository) CountByTrain(ctx context.Context, trainID int64) (total, available int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE s.is_available)
		FROM seats s
		JOIN compartments c ON s.compartment_id = c.compartment_id
		JOIN classes cl ON c.class_id = cl.class_id
		WHERE cl.train_id = $1`

	err = r.q.QueryRowContext(ctx, query, trainID).Scan(&total, &available)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count seats for train %d: %w", trainID, err)
	}
	return total, available, nil
}
