package services

import (
	"context"
	"time"

	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

type StatsRepository interface {
	Dashboard(ctx context.Context, today string) (types.DashboardStats, error)
}

// StatsService reports dashboard counters for administrators.
type StatsService struct {
	repo  StatsRepository
	clock func() time.Time
	gate  Gate
}

func NewStatsService(repo StatsRepository, clock func() time.Time) *StatsService {
	if clock == nil {
		clock = time.Now
	}
	return &StatsService{repo: repo, clock: clock}
}

func (s *StatsService) Dashboard(ctx context.Context, actor types.User) (types.DashboardStats, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.DashboardStats{}, err
	}
	today := s.clock().Format(dateLayout)
	stats, err := retryRead(ctx, func(ctx context.Context) (types.DashboardStats, error) {
		return s.repo.Dashboard(ctx, today)
	})
	if err != nil {
		return types.DashboardStats{}, apperr.Transient(err)
	}
	return stats, nil
}
