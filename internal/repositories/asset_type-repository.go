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

const assetTypeTable = "asset_types"

var assetTypeColumns = []string{"id", "name", "prefix", "slug", "description", "created_at", "updated_at"}

type AssetTypeRepositoryInterface interface {
	ListAll(ctx context.Context) ([]entities.AssetType, error)
	FindByID(ctx context.Context, id int64) (*entities.AssetType, error)
	FindBySlugOrName(ctx context.Context, slug, name string) (*entities.AssetType, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, item entities.AssetType) (*entities.AssetType, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*entities.AssetType, error)
	Delete(ctx context.Context, id int64) error
}

type AssetTypeRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetTypeRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetTypeRepositoryInterface {
	return &AssetTypeRepository{storage: storage, logger: logger}
}

func scanAssetType(row pgx.Row) (*entities.AssetType, error) {
	var t entities.AssetType
	err := row.Scan(&t.ID, &t.Name, &t.Prefix, &t.Slug, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования типа актива", err)
	}
	return &t, nil
}

func (r *AssetTypeRepository) findOne(ctx context.Context, b sq.SelectBuilder) (*entities.AssetType, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return scanAssetType(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *AssetTypeRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select(assetTypeColumns...).From(assetTypeTable).PlaceholderFormat(sq.Dollar)
}

func (r *AssetTypeRepository) ListAll(ctx context.Context) ([]entities.AssetType, error) {
	query, args, err := r.selectBuilder().OrderBy("name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("ошибка получения типов активов", err)
	}
	defer rows.Close()

	items := make([]entities.AssetType, 0)
	for rows.Next() {
		t, err := scanAssetType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

func (r *AssetTypeRepository) FindByID(ctx context.Context, id int64) (*entities.AssetType, error) {
	return r.findOne(ctx, r.selectBuilder().Where(sq.Eq{"id": id}))
}

func (r *AssetTypeRepository) FindBySlugOrName(ctx context.Context, slug, name string) (*entities.AssetType, error) {
	b := r.selectBuilder().Limit(1)
	if slug != "" {
		b = b.Where(sq.Or{sq.Eq{"slug": slug}, sq.Eq{"name": name}}).
			OrderByClause("CASE WHEN slug = ? THEN 0 ELSE 1 END", slug)
	} else {
		b = b.Where(sq.Eq{"name": name})
	}
	return r.findOne(ctx, b)
}

func (r *AssetTypeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, "SELECT COUNT(*) FROM "+assetTypeTable).Scan(&total); err != nil {
		return 0, mapStorageError("ошибка подсчета типов активов", err)
	}
	return total, nil
}

func (r *AssetTypeRepository) Create(ctx context.Context, item entities.AssetType) (*entities.AssetType, error) {
	query, args, err := sq.Insert(assetTypeTable).
		PlaceholderFormat(sq.Dollar).
		Columns("name", "prefix", "slug", "description").
		Values(item.Name, item.Prefix, item.Slug, item.Description).
		Suffix("RETURNING " + joinColumns(assetTypeColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanAssetType(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *AssetTypeRepository) Update(ctx context.Context, id int64, fields map[string]any) (*entities.AssetType, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}
	query, args, err := sq.Update(assetTypeTable).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(assetTypeColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanAssetType(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *AssetTypeRepository) Delete(ctx context.Context, id int64) error {
	result, err := dbFrom(ctx, r.storage).Exec(ctx, "DELETE FROM "+assetTypeTable+" WHERE id = $1", id)
	if err != nil {
		return mapDeleteError("ошибка удаления типа актива", "Тип актива", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
