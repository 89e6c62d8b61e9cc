package repository

import (
	"context"
	"database/sql"
	"fmt"

	"railbook/internal/database"
	"railbook/internal/models"
)

// QueueRepository serves one waiting tier. The same code backs RAC and
// the waitlist; only the kind differs.
type QueueRepository struct {
	q    database.Executor
	kind models.QueueKind
}

func NewRACRepository(db *database.DB) *QueueRepository {
	return newQueueRepository(db, models.KindRAC)
}

func NewWaitlistRepository(db *database.DB) *QueueRepository {
	return newQueueRepository(db, models.KindWaitlist)
}

func newQueueRepository(q database.Executor, kind models.QueueKind) *QueueRepository {
	return &QueueRepository{q: q, kind: kind}
}

// Count returns the number of active entries for one (train, route).
func (r *QueueRepository) Count(ctx context.Context, trainID, routeID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM queue_entries
		WHERE kind = $1 AND train_id = $2 AND route_id = $3 AND status = 'Active'`

	err := r.q.QueryRowContext(ctx, query, r.kind, trainID, routeID).Scan(&count)
	return count, err
}

// CountByTrain returns the number of active entries across every
// route of one train.
func (r *QueueRepository) CountByTrain(ctx context.Context, trainID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM queue_entries
		WHERE kind = $1 AND train_id = $2 AND status = 'Active'`

	err := r.q.QueryRowContext(ctx, query, r.kind, trainID).Scan(&count)
	return count, err
}

// Enqueue appends a new active entry at position max+1. The position
// is computed and inserted in one statement so the tail stays dense
// under concurrent admissions within the surrounding transaction.
func (r *QueueRepository) Enqueue(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error) {
	entry := &models.QueueEntry{
		Kind:    r.kind,
		UserID:  userID,
		TrainID: trainID,
		RouteID: routeID,
		Status:  models.QueueActive,
	}

	query := `
		INSERT INTO queue_entries (kind, user_id, train_id, route_id, position, status)
		SELECT $1, $2, $3, $4, COALESCE(MAX(position), 0) + 1, 'Active'
		FROM queue_entries
		WHERE kind = $1 AND train_id = $3 AND route_id = $4 AND status = 'Active'
		RETURNING entry_id, position, request_time`

	err := r.q.QueryRowContext(ctx, query, r.kind, userID, trainID, routeID).Scan(
		&entry.EntryID,
		&entry.Position,
		&entry.RequestTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue into %s: %w", r.kind, err)
	}

	return entry, nil
}

// DequeueHead takes the head entry out of the active set: the entry is
// marked Promoted and every remaining active entry shifts down one
// position. Returns nil when the queue is empty.
func (r *QueueRepository) DequeueHead(ctx context.Context, trainID, routeID int64) (*models.QueueEntry, error) {
	entry := &models.QueueEntry{Kind: r.kind}

	selectQuery := `
		SELECT entry_id, user_id, train_id, route_id, position, status, request_time
		FROM queue_entries
		WHERE kind = $1 AND train_id = $2 AND route_id = $3 AND status = 'Active'
		ORDER BY position
		LIMIT 1
		FOR UPDATE`

	err := r.q.QueryRowContext(ctx, selectQuery, r.kind, trainID, routeID).Scan(
		&entry.EntryID,
		&entry.UserID,
		&entry.TrainID,
		&entry.RouteID,
		&entry.Position,
		&entry.Status,
		&entry.RequestTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	promoteQuery := `UPDATE queue_entries SET status = 'Promoted' WHERE entry_id = $1`
	if _, err := r.q.ExecContext(ctx, promoteQuery, entry.EntryID); err != nil {
		return nil, err
	}

	if err := r.shiftDown(ctx, trainID, routeID, entry.Position); err != nil {
		return nil, err
	}

	return entry, nil
}

// Remove drops an active entry entirely and closes the gap it leaves.
// Returns false when the entry does not exist or is not active.
func (r *QueueRepository) Remove(ctx context.Context, entryID int64) (bool, error) {
	var trainID, routeID int64
	var position int

	selectQuery := `
		SELECT train_id, route_id, position
		FROM queue_entries
		WHERE entry_id = $1 AND kind = $2 AND status = 'Active'
		FOR UPDATE`

	err := r.q.QueryRowContext(ctx, selectQuery, entryID, r.kind).Scan(&trainID, &routeID, &position)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleteQuery := `DELETE FROM queue_entries WHERE entry_id = $1`
	if _, err := r.q.ExecContext(ctx, deleteQuery, entryID); err != nil {
		return false, err
	}

	if err := r.shiftDown(ctx, trainID, routeID, position); err != nil {
		return false, err
	}

	return true, nil
}

// PositionOf returns the oldest active entry of a user on one
// (train, route), or nil when the user is not queued.
func (r *QueueRepository) PositionOf(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error) {
	entry := &models.QueueEntry{Kind: r.kind}

	query := `
		SELECT entry_id, user_id, train_id, route_id, position, status, request_time
		FROM queue_entries
		WHERE kind = $1 AND user_id = $2 AND train_id = $3 AND route_id = $4 AND status = 'Active'
		ORDER BY position
		LIMIT 1`

	err := r.q.QueryRowContext(ctx, query, r.kind, userID, trainID, routeID).Scan(
		&entry.EntryID,
		&entry.UserID,
		&entry.TrainID,
		&entry.RouteID,
		&entry.Position,
		&entry.Status,
		&entry.RequestTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns the active entries of one (train, route) in position
// order, joined with passenger and train details.
func (r *QueueRepository) List(ctx context.Context, trainID, routeID int64) ([]models.QueueEntryView, error) {
	query := `
		SELECT q.entry_id, q.position, u.full_name, t.train_name, t.train_number, q.route_id, q.request_time
		FROM queue_entries q
		JOIN users u ON q.user_id = u.user_id
		JOIN trains t ON q.train_id = t.train_id
		WHERE q.kind = $1 AND q.train_id = $2 AND q.route_id = $3 AND q.status = 'Active'
		ORDER BY q.position`

	return r.scanViews(ctx, query, r.kind, trainID, routeID)
}

// ListAll returns every active entry of this tier across all trains.
func (r *QueueRepository) ListAll(ctx context.Context) ([]models.QueueEntryView, error) {
	query := `
		SELECT q.entry_id, q.position, u.full_name, t.train_name, t.train_number, q.route_id, q.request_time
		FROM queue_entries q
		JOIN users u ON q.user_id = u.user_id
		JOIN trains t ON q.train_id = t.train_id
		WHERE q.kind = $1 AND q.status = 'Active'
		ORDER BY q.train_id, q.route_id, q.position`

	return r.scanViews(ctx, query, r.kind)
}

func (r *QueueRepository) scanViews(ctx context.Context, query string, args ...interface{}) ([]models.QueueEntryView, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.QueueEntryView
	for rows.Next() {
		var v models.QueueEntryView
		var requestTime sql.NullTime
		err := rows.Scan(
			&v.EntryID,
			&v.Position,
			&v.PassengerName,
			&v.TrainName,
			&v.TrainNumber,
			&v.RouteID,
			&requestTime,
		)
		if err != nil {
			return nil, err
		}
		if requestTime.Valid {
			v.RequestTime = requestTime.Time.Format("2006-01-02 15:04:05")
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

func (r *QueueRepository) shiftDown(ctx context.Context, trainID, routeID int64, removedPosition int) error {
	query := `
		UPDATE queue_entries
		SET position = position - 1
		WHERE kind = $1 AND train_id = $2 AND route_id = $3 AND status = 'Active' AND position > $4`

	_, err := r.q.ExecContext(ctx, query, r.kind, trainID, routeID, removedPosition)
	return err
}
