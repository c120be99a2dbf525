package service

import (
	"context"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
)

// StatsService serves the dashboard counters.
type StatsService struct {
	Store store.Store
}

func (s *StatsService) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	return s.Store.Stats().Dashboard(ctx)
}
