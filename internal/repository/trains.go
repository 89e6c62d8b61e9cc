package repository

import (
	"context"
	"database/sql"
	"fmt"

	"railbook/internal/database"
	"railbook/internal/models"
)

type TrainRepository struct {
	q database.Executor
}

func NewTrainRepository(db *database.DB) *TrainRepository {
	return &TrainRepository{q: db}
}

func (r *TrainRepository) List(ctx context.Context) ([]models.Train, error) {
	query := `SELECT train_id, train_number, train_name FROM trains ORDER BY train_id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trains []models.Train
	for rows.Next() {
		var t models.Train
		if err := rows.Scan(&t.TrainID, &t.TrainNumber, &t.TrainName); err != nil {
			return nil, err
		}
		trains = append(trains, t)
	}

	return trains, rows.Err()
}

func (r *TrainRepository) GetByID(ctx context.Context, id int64) (*models.Train, error) {
	train := &models.Train{}
	query := `SELECT train_id, train_number, train_name FROM trains WHERE train_id = $1`

	err := r.q.QueryRowContext(ctx, query, id).Scan(&train.TrainID, &train.TrainNumber, &train.TrainName)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return train, err
}

func (r *TrainRepository) GetRoute(ctx context.Context, routeID int64) (*models.Route, error) {
	route := &models.Route{}
	query := `
		SELECT route_id, train_id, source_station, destination_station, departure_time, arrival_time, price
		FROM routes
		WHERE route_id = $1`

	err := r.q.QueryRowContext(ctx, query, routeID).Scan(
		&route.RouteID,
		&route.TrainID,
		&route.SourceStation,
		&route.DestinationStation,
		&route.DepartureTime,
		&route.ArrivalTime,
		&route.Price,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return route, err
}

// ListRoutesByTrain returns all scheduled runs of one train.
func (r *TrainRepository) ListRoutesByTrain(ctx context.Context, trainID int64) ([]models.Route, error) {
	query := `
		SELECT route_id, train_id, source_station, destination_station, departure_time, arrival_time, price
		FROM routes
		WHERE train_id = $1
		ORDER BY departure_time`

	rows, err := r.q.QueryContext(ctx, query, trainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var rt models.Route
		err := rows.Scan(
			&rt.RouteID,
			&rt.TrainID,
			&rt.SourceStation,
			&rt.DestinationStation,
			&rt.DepartureTime,
			&rt.ArrivalTime,
			&rt.Price,
		)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}

	return routes, rows.Err()
}

// SearchRoutes is the SQL fallback route search used when the search
// index is unavailable. It matches stations and train names with a
// case-insensitive substring.
func (r *TrainRepository) SearchRoutes(ctx context.Context, query string, page, pageSize int) ([]models.RouteSearchResult, error) {
	sqlQuery := `
		SELECT r.route_id, r.train_id, t.train_name, t.train_number,
		       r.source_station, r.destination_station, r.departure_time, r.arrival_time, r.price
		FROM routes r
		JOIN trains t ON r.train_id = t.train_id
		WHERE r.source_station ILIKE $1
		   OR r.destination_station ILIKE $1
		   OR t.train_name ILIKE $1
		   OR t.train_number ILIKE $1
		ORDER BY r.departure_time`

	args := []interface{}{"%" + query + "%"}
	if page > 0 && pageSize > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", 2, 3)
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := r.q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RouteSearchResult
	for rows.Next() {
		var res models.RouteSearchResult
		var departure, arrival sql.NullTime
		err := rows.Scan(
			&res.RouteID,
			&res.TrainID,
			&res.TrainName,
			&res.TrainNumber,
			&res.SourceStation,
			&res.DestinationStation,
			&departure,
			&arrival,
			&res.Price,
		)
		if err != nil {
			return nil, err
		}
		if departure.Valid {
			res.DepartureTime = departure.Time.Format("2006-01-02 15:04:05")
		}
		if arrival.Valid {
			res.ArrivalTime = arrival.Time.Format("2006-01-02 15:04:05")
		}
		results = append(results, res)
	}

	return results, rows.Err()
}
