package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
)

const deviceModelTable = "device_models"

var deviceModelColumns = []string{
	"id", "name", "manufacturer_id", "asset_type_id", "description", "specification", "created_at", "updated_at",
}

type DeviceModelRepositoryInterface interface {
	// ListAll возвращает модели вместе с производителем и типом актива.
	ListAll(ctx context.Context) ([]entities.DeviceModel, error)
	FindByID(ctx context.Context, id int64) (*entities.DeviceModel, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, item entities.DeviceModel) (*entities.DeviceModel, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*entities.DeviceModel, error)
	Delete(ctx context.Context, id int64) error
}

type DeviceModelRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDeviceModelRepository(storage *pgxpool.Pool, logger *zap.Logger) DeviceModelRepositoryInterface {
	return &DeviceModelRepository{storage: storage, logger: logger}
}

func scanDeviceModel(row pgx.Row) (*entities.DeviceModel, error) {
	var m entities.DeviceModel
	err := row.Scan(
		&m.ID, &m.Name, &m.ManufacturerID, &m.AssetTypeID,
		&m.Description, &m.Specification, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования модели устройства", err)
	}
	return &m, nil
}

const deviceModelJoinedSelect = `
	SELECT dm.id, dm.name, dm.manufacturer_id, dm.asset_type_id, dm.description, dm.specification,
	       dm.created_at, dm.updated_at,
	       m.id, m.name, m.description, m.created_at, m.updated_at,
	       ast.id, ast.name, ast.prefix, ast.slug, ast.description, ast.created_at, ast.updated_at
	FROM device_models dm
		JOIN manufacturers m ON m.id = dm.manufacturer_id
		JOIN asset_types ast ON ast.id = dm.asset_type_id
`

func scanDeviceModelJoined(row pgx.Row) (*entities.DeviceModel, error) {
	var (
		m   entities.DeviceModel
		man entities.Manufacturer
		at  entities.AssetType
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.ManufacturerID, &m.AssetTypeID, &m.Description, &m.Specification,
		&m.CreatedAt, &m.UpdatedAt,
		&man.ID, &man.Name, &man.Description, &man.CreatedAt, &man.UpdatedAt,
		&at.ID, &at.Name, &at.Prefix, &at.Slug, &at.Description, &at.CreatedAt, &at.UpdatedAt,
	)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования модели устройства", err)
	}
	m.Manufacturer = &man
	m.AssetType = &at
	return &m, nil
}

func (r *DeviceModelRepository) ListAll(ctx context.Context) ([]entities.DeviceModel, error) {
	rows, err := dbFrom(ctx, r.storage).Query(ctx, deviceModelJoinedSelect+" ORDER BY dm.name, m.name")
	if err != nil {
		return nil, mapStorageError("ошибка получения моделей устройств", err)
	}
	defer rows.Close()

	items := make([]entities.DeviceModel, 0)
	for rows.Next() {
		m, err := scanDeviceModelJoined(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (r *DeviceModelRepository) FindByID(ctx context.Context, id int64) (*entities.DeviceModel, error) {
	return scanDeviceModelJoined(dbFrom(ctx, r.storage).QueryRow(ctx, deviceModelJoinedSelect+" WHERE dm.id = $1", id))
}

func (r *DeviceModelRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, "SELECT COUNT(*) FROM "+deviceModelTable).Scan(&total); err != nil {
		return 0, mapStorageError("ошибка подсчета моделей устройств", err)
	}
	return total, nil
}

func (r *DeviceModelRepository) Create(ctx context.Context, item entities.DeviceModel) (*entities.DeviceModel, error) {
	query, args, err := sq.Insert(deviceModelTable).
		PlaceholderFormat(sq.Dollar).
		Columns("name", "manufacturer_id", "asset_type_id", "description", "specification").
		Values(item.Name, item.ManufacturerID, item.AssetTypeID, item.Description, item.Specification).
		Suffix("RETURNING " + joinColumns(deviceModelColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanDeviceModel(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DeviceModelRepository) Update(ctx context.Context, id int64, fields map[string]any) (*entities.DeviceModel, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}
	query, args, err := sq.Update(deviceModelTable).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(deviceModelColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanDeviceModel(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DeviceModelRepository) Delete(ctx context.Context, id int64) error {
	result, err := dbFrom(ctx, r.storage).Exec(ctx, "DELETE FROM "+deviceModelTable+" WHERE id = $1", id)
	if err != nil {
		return mapDeleteError("ошибка удаления модели устройства", "Модель устройства", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
