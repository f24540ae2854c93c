package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	"it-inventory/pkg/types"
)

type AuditServiceInterface interface {
	// Record пишет одну строку журнала в текущую единицу работы, не фиксируя её.
	Record(ctx context.Context, action entities.ActionType, entityType string, entityID int64, detail map[string]any, actor *entities.Actor) error
	List(ctx context.Context, filter types.AuditFilter) ([]entities.ActionLog, types.Pagination, error)
}

type AuditService struct {
	txManager repositories.TxManagerInterface
	repo      repositories.ActionLogRepositoryInterface
	clock     func() time.Time
	logger    *zap.Logger
}

func NewAuditService(
	txManager repositories.TxManagerInterface,
	repo repositories.ActionLogRepositoryInterface,
	clock func() time.Time,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{txManager: txManager, repo: repo, clock: clock, logger: logger}
}

func (s *AuditService) Record(ctx context.Context, action entities.ActionType, entityType string, entityID int64, detail map[string]any, actor *entities.Actor) error {
	entry := entities.ActionLog{
		Timestamp:  s.clock().UTC(),
		UserID:     actor.ID(),
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    NormalizeDetail(detail),
	}
	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Не удалось записать действие в журнал",
			zap.String("action", string(action)),
			zap.String("entity_type", entityType),
			zap.Int64("entity_id", entityID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, filter types.AuditFilter) ([]entities.ActionLog, types.Pagination, error) {
	var (
		logs  []entities.ActionLog
		total int64
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		logs, total, err = s.repo.List(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при получении журнала действий", zap.Error(err))
		return nil, types.Pagination{}, err
	}
	return logs, types.NewPagination(total, filter.Page, filter.PageSize), nil
}

// NormalizeDetail приводит значения к JSON-представлению журнала:
// даты в ГГГГ-ММ-ДД, моменты времени в RFC3339 UTC, деньги строкой с двумя знаками.
func NormalizeDetail(detail map[string]any) map[string]any {
	if detail == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(detail))
	for k, v := range detail {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return NormalizeDetail(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		return formatTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return formatTime(*val)
	case dto.Date:
		return val.Format(dto.DateLayout)
	case *dto.Date:
		if val == nil {
			return nil
		}
		return val.Format(dto.DateLayout)
	case decimal.Decimal:
		return val.StringFixed(2)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.StringFixed(2)
	case decimal.NullDecimal:
		if !val.Valid {
			return nil
		}
		return val.Decimal.StringFixed(2)
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case *int:
		if val == nil {
			return nil
		}
		return *val
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}

// полночь UTC считается календарной датой
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dto.DateLayout)
	}
	return t.Format(time.RFC3339)
}
