package repositories

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DeviceLabel - краткое описание актива для диагностических сообщений.
type DeviceLabel struct {
	ID              int64
	Name            string
	InventoryNumber string
}

// Reference - ссылка на запись справочника для пакетной проверки существования.
type Reference struct {
	Table string
	ID    int64
	Label string
}

type CheckRepositoryInterface interface {
	// Exists проверяет, есть ли в таблице строка по условию, кроме excludeID (0 - без исключения).
	Exists(ctx context.Context, table string, where sq.Sqlizer, excludeID int64) (bool, error)
	Count(ctx context.Context, table string, where sq.Sqlizer) (int64, error)
	CountDevices(ctx context.Context, where sq.Sqlizer) (int64, error)
	SampleDevices(ctx context.Context, where sq.Sqlizer, limit uint64) ([]DeviceLabel, error)
	// MissingReferences за один запрос возвращает ссылки, которых нет в БД.
	MissingReferences(ctx context.Context, refs []Reference) ([]Reference, error)
}

type CheckRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCheckRepository(storage *pgxpool.Pool, logger *zap.Logger) CheckRepositoryInterface {
	return &CheckRepository{storage: storage, logger: logger}
}

func (r *CheckRepository) Exists(ctx context.Context, table string, where sq.Sqlizer, excludeID int64) (bool, error) {
	inner := sq.Select("1").From(table).Where(where).Limit(1)
	if excludeID > 0 {
		inner = inner.Where(sq.NotEq{"id": excludeID})
	}
	innerSQL, args, err := inner.ToSql()
	if err != nil {
		return false, err
	}
	query, err := sq.Dollar.ReplacePlaceholders("SELECT EXISTS (" + innerSQL + ")")
	if err != nil {
		return false, err
	}
	var exists bool
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, mapStorageError("проверка уникальности "+table, err)
	}
	return exists, nil
}

func (r *CheckRepository) Count(ctx context.Context, table string, where sq.Sqlizer) (int64, error) {
	query, args, err := sq.Select("COUNT(*)").From(table).Where(where).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, mapStorageError("подсчет зависимых записей "+table, err)
	}
	return total, nil
}

func (r *CheckRepository) CountDevices(ctx context.Context, where sq.Sqlizer) (int64, error) {
	return r.Count(ctx, "devices d", where)
}

func (r *CheckRepository) SampleDevices(ctx context.Context, where sq.Sqlizer, limit uint64) ([]DeviceLabel, error) {
	query, args, err := sq.Select("d.id", "d.name", "d.inventory_number").
		From("devices d").
		Where(where).
		OrderBy("d.id").
		Limit(limit).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("выборка связанных активов", err)
	}
	defer rows.Close()

	labels := make([]DeviceLabel, 0, limit)
	for rows.Next() {
		var l DeviceLabel
		if err := rows.Scan(&l.ID, &l.Name, &l.InventoryNumber); err != nil {
			return nil, fmt.Errorf("ошибка сканирования актива: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (r *CheckRepository) MissingReferences(ctx context.Context, refs []Reference) ([]Reference, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(refs))
	args := make([]any, 0, len(refs))
	for i, ref := range refs {
		// имена таблиц приходят только из описаний справочников
		parts = append(parts, fmt.Sprintf("SELECT %d AS idx WHERE EXISTS (SELECT 1 FROM %s WHERE id = $%d)", i, ref.Table, i+1))
		args = append(args, ref.ID)
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, strings.Join(parts, " UNION ALL "), args...)
	if err != nil {
		return nil, mapStorageError("проверка ссылок на справочники", err)
	}
	defer rows.Close()

	found := make(map[int]bool, len(refs))
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		found[idx] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []Reference
	for i, ref := range refs {
		if !found[i] {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}
