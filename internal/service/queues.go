package service

import (
	"context"
	"fmt"

	errs "railbook/internal/errors"
	"railbook/internal/models"
	"railbook/internal/repository"
)

// QueueService serves read-only views over the two waiting tiers.
type QueueService struct {
	repos *repository.Repositories
}

func NewQueueService(repos *repository.Repositories) *QueueService {
	return &QueueService{repos: repos}
}

func (s *QueueService) tier(kind models.QueueKind) (*repository.QueueRepository, error) {
	switch kind {
	case models.KindRAC:
		return s.repos.RAC, nil
	case models.KindWaitlist:
		return s.repos.Waitlist, nil
	}
	return nil, errs.Validationf("unknown queue kind: %s", kind)
}

// List returns the active entries of one (train, route) in position
// order.
func (s *QueueService) List(ctx context.Context, kind models.QueueKind, trainID, routeID int64) ([]models.QueueEntryView, error) {
	repo, err := s.tier(kind)
	if err != nil {
		return nil, err
	}

	views, err := repo.List(ctx, trainID, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s queue: %w", kind, err)
	}
	return views, nil
}

// ListAll returns every active entry of one tier across all trains.
func (s *QueueService) ListAll(ctx context.Context, kind models.QueueKind) ([]models.QueueEntryView, error) {
	repo, err := s.tier(kind)
	if err != nil {
		return nil, err
	}

	views, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s queue: %w", kind, err)
	}
	return views, nil
}
