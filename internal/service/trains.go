package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"railbook/internal/cache"
	"railbook/internal/logger"
	"railbook/internal/metrics"
	"railbook/internal/models"
	"railbook/internal/repository"
	"railbook/internal/search"
)

const availabilityTTL = 10 * time.Second

// TrainService serves train, seat-layout and route lookups. Route
// search goes through the search index when one is wired and falls
// back to SQL otherwise. Availability answers are cached briefly in
// Valkey because they are the hottest read.
type TrainService struct {
	repos      *repository.Repositories
	routeIndex *search.RouteIndex
	valkey     *cache.ValkeyClient
}

func NewTrainService(repos *repository.Repositories, routeIndex *search.RouteIndex, valkey *cache.ValkeyClient) *TrainService {
	return &TrainService{
		repos:      repos,
		routeIndex: routeIndex,
		valkey:     valkey,
	}
}

func (s *TrainService) List(ctx context.Context) ([]models.Train, error) {
	trains, err := s.repos.Trains.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trains: %w", err)
	}
	return trains, nil
}

func (s *TrainService) ListSeats(ctx context.Context, trainID int64) ([]models.SeatView, error) {
	seats, err := s.repos.Seats.ListByTrain(ctx, trainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}

func (s *TrainService) ListRoutes(ctx context.Context, trainID int64) ([]models.Route, error) {
	routes, err := s.repos.Trains.ListRoutesByTrain(ctx, trainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// Availability returns seat and queue counts for one train.
func (s *TrainService) Availability(ctx context.Context, trainID int64) (*models.TrainAvailability, error) {
	if s.valkey != nil {
		if raw, err := s.valkey.GetAvailability(ctx, trainID); err == nil && raw != nil {
			var cached models.TrainAvailability
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, available, err := s.repos.Seats.CountByTrain(ctx, trainID)
	if err != nil {
		return nil, err
	}

	racDepth, err := s.repos.RAC.CountByTrain(ctx, trainID)
	if err != nil {
		return nil, fmt.Errorf("failed to count RAC entries: %w", err)
	}

	waitlistDepth, err := s.repos.Waitlist.CountByTrain(ctx, trainID)
	if err != nil {
		return nil, fmt.Errorf("failed to count waitlist entries: %w", err)
	}

	trainLabel := strconv.FormatInt(trainID, 10)
	metrics.QueueDepth.WithLabelValues("RAC", trainLabel).Set(float64(racDepth))
	metrics.QueueDepth.WithLabelValues("Waitlist", trainLabel).Set(float64(waitlistDepth))

	availability := &models.TrainAvailability{
		TrainID:        trainID,
		TotalSeats:     total,
		AvailableSeats: available,
		RACDepth:       racDepth,
		WaitlistDepth:  waitlistDepth,
	}

	if s.valkey != nil {
		if raw, err := json.Marshal(availability); err == nil {
			if err := s.valkey.SetAvailability(ctx, trainID, raw, availabilityTTL); err != nil {
				logger.WithContext(ctx).Warn("Failed to cache availability",
					"error", err, "train_id", trainID)
			}
		}
	}

	return availability, nil
}

// SearchRoutes runs a route search by station or train name.
func (s *TrainService) SearchRoutes(ctx context.Context, query string, page, pageSize int) ([]models.RouteSearchResult, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	if s.routeIndex != nil {
		results, err := s.routeIndex.Search(ctx, query, page, pageSize)
		if err == nil {
			return results, nil
		}
		logger.WithContext(ctx).Warn("Route index search failed, falling back to SQL",
			"error", err, "query", query)
	}

	results, err := s.repos.Trains.SearchRoutes(ctx, query, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search routes: %w", err)
	}
	return results, nil
}

// SyncRouteIndex reindexes every route of every train. The generator
// and the consumers call it after seeding or schedule changes.
func (s *TrainService) SyncRouteIndex(ctx context.Context) (int, error) {
	if s.routeIndex == nil {
		return 0, nil
	}

	trains, err := s.repos.Trains.List(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, train := range trains {
		routes, err := s.repos.Trains.ListRoutesByTrain(ctx, train.TrainID)
		if err != nil {
			return indexed, err
		}
		for _, route := range routes {
			doc := models.RouteSearchResult{
				RouteID:            route.RouteID,
				TrainID:            train.TrainID,
				TrainName:          train.TrainName,
				TrainNumber:        train.TrainNumber,
				SourceStation:      route.SourceStation,
				DestinationStation: route.DestinationStation,
				DepartureTime:      route.DepartureTime.Format("2006-01-02 15:04:05"),
				ArrivalTime:        route.ArrivalTime.Format("2006-01-02 15:04:05"),
				Price:              route.Price,
			}
			if err := s.routeIndex.IndexRoute(ctx, doc); err != nil {
				return indexed, fmt.Errorf("failed to index route %d: %w", route.RouteID, err)
			}
			indexed++
		}
	}

	return indexed, nil
}
