package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railbook/internal/models"
)

func newMockQueue(t *testing.T, kind models.QueueKind) (*QueueRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return newQueueRepository(db, kind), mock
}

func TestQueueEnqueueAppendsAtTail(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindRAC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO queue_entries")).
		WithArgs(models.KindRAC, int64(7), int64(1), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "position", "request_time"}).
			AddRow(int64(42), 3, time.Now()))

	entry, err := repo.Enqueue(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.EntryID)
	assert.Equal(t, 3, entry.Position)
	assert.Equal(t, models.KindRAC, entry.Kind)
	assert.Equal(t, models.QueueActive, entry.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueDequeueHeadRenumbers(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindRAC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT entry_id, user_id, train_id, route_id, position, status, request_time")).
		WithArgs(models.KindRAC, int64(1), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "user_id", "train_id", "route_id", "position", "status", "request_time"}).
			AddRow(int64(5), int64(7), int64(1), int64(10), 1, "Active", time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE queue_entries SET status = 'Promoted'")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("SET position = position - 1")).
		WithArgs(models.KindRAC, int64(1), int64(10), 1).
		WillReturnResult(sqlmock.NewResult(0, 2))

	entry, err := repo.DequeueHead(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(5), entry.EntryID)
	assert.Equal(t, int64(7), entry.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueDequeueHeadEmpty(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindWaitlist)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT entry_id, user_id, train_id, route_id, position, status, request_time")).
		WithArgs(models.KindWaitlist, int64(1), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "user_id", "train_id", "route_id", "position", "status", "request_time"}))

	entry, err := repo.DequeueHead(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Nil(t, entry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRemoveClosesGap(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindRAC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT train_id, route_id, position")).
		WithArgs(int64(5), models.KindRAC).
		WillReturnRows(sqlmock.NewRows([]string{"train_id", "route_id", "position"}).
			AddRow(int64(1), int64(10), 2))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM queue_entries WHERE entry_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("SET position = position - 1")).
		WithArgs(models.KindRAC, int64(1), int64(10), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.Remove(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRemoveMissingEntry(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindRAC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT train_id, route_id, position")).
		WithArgs(int64(404), models.KindRAC).
		WillReturnRows(sqlmock.NewRows([]string{"train_id", "route_id", "position"}))

	removed, err := repo.Remove(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueuePositionOfNotQueued(t *testing.T) {
	repo, mock := newMockQueue(t, models.KindWaitlist)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE kind = $1 AND user_id = $2")).
		WithArgs(models.KindWaitlist, int64(7), int64(1), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "user_id", "train_id", "route_id", "position", "status", "request_time"}))

	entry, err := repo.PositionOf(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	assert.Nil(t, entry)

	assert.NoError(t, mock.ExpectationsWereMet())
}
