package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSeats(t *testing.T) (*SeatRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &SeatRepository{q: db}, mock
}

func TestSeatReserve(t *testing.T) {
	repo, mock := newMockSeats(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET is_available = FALSE WHERE seat_id = $1 AND is_available = TRUE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reserved, err := repo.Reserve(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, reserved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatReserveAlreadyTaken(t *testing.T) {
	repo, mock := newMockSeats(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET is_available = FALSE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	reserved, err := repo.Reserve(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, reserved, "reserving a taken seat must report false, not error")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatReleaseIdempotent(t *testing.T) {
	repo, mock := newMockSeats(t)

	// zero affected rows is fine, the seat was already free
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET is_available = TRUE WHERE seat_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Release(context.Background(), 3)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatFindAvailableSoldOut(t *testing.T) {
	repo, mock := newMockSeats(t)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s SKIP LOCKED")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "compartment_id", "berth_type", "seat_number", "is_available"}))

	seat, err := repo.FindAvailable(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, seat)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatFindAvailablePicksLowest(t *testing.T) {
	repo, mock := newMockSeats(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.seat_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "compartment_id", "berth_type", "seat_number", "is_available"}).
			AddRow(int64(4), int64(2), "Lower", 4, true))

	seat, err := repo.FindAvailable(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, seat)
	assert.Equal(t, int64(4), seat.SeatID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatBelongsToTrain(t *testing.T) {
	repo, mock := newMockSeats(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.BelongsToTrain(context.Background(), 4, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
