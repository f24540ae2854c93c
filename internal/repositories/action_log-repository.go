package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	"it-inventory/pkg/types"
)

const actionLogTable = "action_logs"

type ActionLogRepositoryInterface interface {
	Create(ctx context.Context, entry entities.ActionLog) (int64, error)
	List(ctx context.Context, filter types.AuditFilter) ([]entities.ActionLog, int64, error)
}

type ActionLogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewActionLogRepository(storage *pgxpool.Pool, logger *zap.Logger) ActionLogRepositoryInterface {
	return &ActionLogRepository{storage: storage, logger: logger}
}

// Create пишет строку журнала в текущую единицу работы.
func (r *ActionLogRepository) Create(ctx context.Context, entry entities.ActionLog) (int64, error) {
	query, args, err := sq.Insert(actionLogTable).
		PlaceholderFormat(sq.Dollar).
		Columns(`"timestamp"`, "user_id", "action_type", "entity_type", "entity_id", "details").
		Values(entry.Timestamp, entry.UserID, string(entry.ActionType), entry.EntityType, entry.EntityID, entry.Details).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapStorageError("ошибка записи в журнал действий", err)
	}
	return id, nil
}

func applyAuditFilter(b sq.SelectBuilder, filter types.AuditFilter) sq.SelectBuilder {
	if filter.UserID != nil {
		b = b.Where(sq.Eq{"al.user_id": *filter.UserID})
	}
	if filter.ActionType != "" {
		b = b.Where(sq.Eq{"al.action_type": filter.ActionType})
	}
	if filter.EntityType != "" {
		b = b.Where(sq.Eq{"al.entity_type": filter.EntityType})
	}
	if filter.EntityID != nil {
		b = b.Where(sq.Eq{"al.entity_id": *filter.EntityID})
	}
	if filter.From != nil {
		b = b.Where(sq.GtOrEq{`al."timestamp"`: *filter.From})
	}
	if filter.To != nil {
		b = b.Where(sq.Lt{`al."timestamp"`: *filter.To})
	}
	return b
}

func (r *ActionLogRepository) List(ctx context.Context, filter types.AuditFilter) ([]entities.ActionLog, int64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := applyAuditFilter(psql.Select("COUNT(*)").From(actionLogTable+" al"), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapStorageError("ошибка подсчета записей журнала", err)
	}
	if total == 0 {
		return []entities.ActionLog{}, 0, nil
	}

	b := psql.Select(
		"al.id", `al."timestamp"`, "al.user_id", "al.action_type", "al.entity_type", "al.entity_id", "al.details", "u.email",
	).
		From(actionLogTable + " al").
		LeftJoin("users u ON u.id = al.user_id").
		OrderBy(`al."timestamp" DESC`, "al.id DESC")
	b = applyAuditFilter(b, filter)
	if filter.PageSize > 0 {
		b = b.Limit(uint64(filter.PageSize)).Offset(uint64(filter.Offset()))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("Выборка журнала действий", zap.String("query", query), zap.Any("args", args))

	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapStorageError("ошибка получения журнала действий", err)
	}
	defer rows.Close()

	logs := make([]entities.ActionLog, 0)
	for rows.Next() {
		var (
			entry      entities.ActionLog
			actionType string
		)
		if err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.UserID, &actionType, &entry.EntityType,
			&entry.EntityID, &entry.Details, &entry.UserEmail,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		entry.ActionType = entities.ActionType(actionType)
		logs = append(logs, entry)
	}
	return logs, total, rows.Err()
}
