package repository

import (
	"context"
	"database/sql"
	"time"

	"railbook/internal/database"
	"railbook/internal/models"
)

type BookingRepository struct {
	q database.Executor
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

const bookingColumns = `booking_id, user_id, train_id, route_id, seat_id,
	       passenger_name, passenger_age, status, booking_time, updated_at`

func (r *BookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (user_id, train_id, route_id, seat_id, passenger_name, passenger_age, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING booking_id, booking_time, updated_at`

	err := r.q.QueryRowContext(ctx, query,
		booking.UserID,
		booking.TrainID,
		booking.RouteID,
		booking.SeatID,
		booking.PassengerName,
		booking.PassengerAge,
		booking.Status,
	).Scan(&booking.BookingID, &booking.BookingTime, &booking.UpdatedAt)

	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_id = $1`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetForUpdate loads a booking and locks its row for the rest of the
// transaction. Concurrent cancellations of the same booking serialize
// here.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_id = $1
		FOR UPDATE`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *BookingRepository) SetStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE booking_id = $2`
	_, err := r.q.ExecContext(ctx, query, status, id)
	return err
}

// AssignSeat confirms a booking onto a seat in one step.
func (r *BookingRepository) AssignSeat(ctx context.Context, id, seatID int64) error {
	query := `UPDATE bookings SET seat_id = $1, status = 'Confirmed', updated_at = NOW() WHERE booking_id = $2`
	_, err := r.q.ExecContext(ctx, query, seatID, id)
	return err
}

// ClearSeat detaches the seat reference of a cancelled booking.
func (r *BookingRepository) ClearSeat(ctx context.Context, id int64) error {
	query := `UPDATE bookings SET seat_id = NULL, updated_at = NOW() WHERE booking_id = $1`
	_, err := r.q.ExecContext(ctx, query, id)
	return err
}

// FindOldestByStatus returns the user's oldest booking in the given
// status on one (train, route). Promotion uses it to find the booking
// behind a dequeued queue entry.
func (r *BookingRepository) FindOldestByStatus(ctx context.Context, userID, trainID, routeID int64, status models.BookingStatus) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND train_id = $2 AND route_id = $3 AND status = $4
		ORDER BY booking_time, booking_id
		LIMIT 1
		FOR UPDATE`

	return r.scanOne(r.q.QueryRowContext(ctx, query, userID, trainID, routeID, status))
}

// ListByUser returns the user's bookings joined with train, route and
// seat details, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.BookingView, error) {
	query := `
		SELECT b.booking_id, t.train_name, t.train_number, r.source_station, r.destination_station,
		       b.passenger_name, b.passenger_age, s.seat_number, s.berth_type, b.status, b.booking_time
		FROM bookings b
		JOIN trains t ON b.train_id = t.train_id
		JOIN routes r ON b.route_id = r.route_id
		LEFT JOIN seats s ON b.seat_id = s.seat_id
		WHERE b.user_id = $1
		ORDER BY b.booking_time DESC`

	return r.scanViews(ctx, query, userID)
}

// ListAll returns every booking in the system, newest first.
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.BookingView, error) {
	query := `
		SELECT b.booking_id, t.train_name, t.train_number, r.source_station, r.destination_station,
		       b.passenger_name, b.passenger_age, s.seat_number, s.berth_type, b.status, b.booking_time
		FROM bookings b
		JOIN trains t ON b.train_id = t.train_id
		JOIN routes r ON b.route_id = r.route_id
		LEFT JOIN seats s ON b.seat_id = s.seat_id
		ORDER BY b.booking_time DESC`

	return r.scanViews(ctx, query)
}

// ListUnpaidConfirmed returns Confirmed bookings whose latest payment
// is still Pending and that were booked before the cutoff. The
// expiration job cancels them.
func (r *BookingRepository) ListUnpaidConfirmed(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'Confirmed'
		  AND booking_time < $1
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.booking_id = bookings.booking_id
			  AND p.status = 'Pending'
			  AND NOT EXISTS (
				SELECT 1 FROM payments p2
				WHERE p2.booking_id = bookings.booking_id AND p2.status = 'Success'
			  )
		  )
		ORDER BY booking_time`

	rows, err := r.q.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.BookingID,
			&b.UserID,
			&b.TrainID,
			&b.RouteID,
			&b.SeatID,
			&b.PassengerName,
			&b.PassengerAge,
			&b.Status,
			&b.BookingTime,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) scanOne(row *sql.Row) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.BookingID,
		&booking.UserID,
		&booking.TrainID,
		&booking.RouteID,
		&booking.SeatID,
		&booking.PassengerName,
		&booking.PassengerAge,
		&booking.Status,
		&booking.BookingTime,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) scanViews(ctx context.Context, query string, args ...interface{}) ([]models.BookingView, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.BookingView
	for rows.Next() {
		var v models.BookingView
		var seatNumber sql.NullInt64
		var berthType sql.NullString
		var bookingTime time.Time
		err := rows.Scan(
			&v.BookingID,
			&v.TrainName,
			&v.TrainNumber,
			&v.Source,
			&v.Destination,
			&v.PassengerName,
			&v.PassengerAge,
			&seatNumber,
			&berthType,
			&v.Status,
			&bookingTime,
		)
		if err != nil {
			return nil, err
		}
		if seatNumber.Valid {
			n := int(seatNumber.Int64)
			v.SeatNumber = &n
		}
		if berthType.Valid {
			bt := models.BerthType(berthType.String)
			v.BerthType = &bt
		}
		v.BookingTime = bookingTime.Format("2006-01-02 15:04:05")
		views = append(views, v)
	}

	return views, rows.Err()
}
