package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
)

type AnalyticsServiceInterface interface {
	Dashboard(ctx context.Context) (*entities.AnalyticsDashboard, error)
}

type AnalyticsService struct {
	txManager repositories.TxManagerInterface
	repo      repositories.AnalyticsRepositoryInterface
	clock     func() time.Time
	logger    *zap.Logger
}

func NewAnalyticsService(
	txManager repositories.TxManagerInterface,
	repo repositories.AnalyticsRepositoryInterface,
	clock func() time.Time,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{txManager: txManager, repo: repo, clock: clock, logger: logger}
}

// Dashboard считает сводку на текущую дату по часам сервиса.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*entities.AnalyticsDashboard, error) {
	today := repositories.DateOnly(s.clock())
	var dash *entities.AnalyticsDashboard
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		dash, err = s.repo.ComputeDashboard(ctx, today)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при расчете аналитики", zap.Error(err))
		return nil, err
	}
	return dash, nil
}
