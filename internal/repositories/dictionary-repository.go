package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
)

// DictionaryRepositoryInterface - хранилище простого справочника
// (статусы, отделы, местоположения, производители, поставщики, теги).
type DictionaryRepositoryInterface interface {
	Meta() entities.DictionaryMeta
	ListAll(ctx context.Context) ([]entities.DictionaryItem, error)
	FindByID(ctx context.Context, id int64) (*entities.DictionaryItem, error)
	FindByIDs(ctx context.Context, ids []int64) ([]entities.DictionaryItem, error)
	FindBySlugOrName(ctx context.Context, slug, name string) (*entities.DictionaryItem, error)
	Search(ctx context.Context, term string, limit uint64) ([]entities.DictionaryItem, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, item entities.DictionaryItem) (*entities.DictionaryItem, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*entities.DictionaryItem, error)
	Delete(ctx context.Context, id int64) error
}

type DictionaryRepository struct {
	storage *pgxpool.Pool
	meta    entities.DictionaryMeta
	logger  *zap.Logger
}

func NewDictionaryRepository(storage *pgxpool.Pool, kind entities.DictionaryKind, logger *zap.Logger) DictionaryRepositoryInterface {
	return &DictionaryRepository{storage: storage, meta: kind.Meta(), logger: logger}
}

func (r *DictionaryRepository) Meta() entities.DictionaryMeta { return r.meta }

func (r *DictionaryRepository) columns() []string {
	slug, description := "NULL::varchar AS slug", "NULL::text AS description"
	if r.meta.HasSlug {
		slug = "slug"
	}
	if r.meta.HasDescription {
		description = "description"
	}
	return []string{"id", "name", slug, description, "created_at", "updated_at"}
}

func (r *DictionaryRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select(r.columns()...).From(r.meta.Table).PlaceholderFormat(sq.Dollar)
}

func scanDictionaryItem(row pgx.Row) (*entities.DictionaryItem, error) {
	var item entities.DictionaryItem
	err := row.Scan(&item.ID, &item.Name, &item.Slug, &item.Description, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования записи справочника", err)
	}
	return &item, nil
}

func (r *DictionaryRepository) queryItems(ctx context.Context, b sq.SelectBuilder) ([]entities.DictionaryItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("ошибка чтения справочника "+r.meta.Table, err)
	}
	defer rows.Close()

	items := make([]entities.DictionaryItem, 0)
	for rows.Next() {
		item, err := scanDictionaryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *DictionaryRepository) ListAll(ctx context.Context) ([]entities.DictionaryItem, error) {
	return r.queryItems(ctx, r.selectBuilder().OrderBy("name"))
}

func (r *DictionaryRepository) FindByID(ctx context.Context, id int64) (*entities.DictionaryItem, error) {
	query, args, err := r.selectBuilder().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanDictionaryItem(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DictionaryRepository) FindByIDs(ctx context.Context, ids []int64) ([]entities.DictionaryItem, error) {
	if len(ids) == 0 {
		return []entities.DictionaryItem{}, nil
	}
	return r.queryItems(ctx, r.selectBuilder().Where(sq.Eq{"id": ids}).OrderBy("name"))
}

func (r *DictionaryRepository) FindBySlugOrName(ctx context.Context, slug, name string) (*entities.DictionaryItem, error) {
	b := r.selectBuilder().Limit(1)
	if r.meta.HasSlug && slug != "" {
		// совпадение по slug приоритетнее совпадения по имени
		b = b.Where(sq.Or{sq.Eq{"slug": slug}, sq.Eq{"name": name}}).
			OrderByClause("CASE WHEN slug = ? THEN 0 ELSE 1 END", slug)
	} else {
		b = b.Where(sq.Eq{"name": name})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return scanDictionaryItem(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DictionaryRepository) Search(ctx context.Context, term string, limit uint64) ([]entities.DictionaryItem, error) {
	b := r.selectBuilder().OrderBy("name").Limit(limit)
	if term != "" {
		b = b.Where(sq.ILike{"name": "%" + escapeLike(term) + "%"})
	}
	return r.queryItems(ctx, b)
}

func (r *DictionaryRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.meta.Table)
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, mapStorageError("ошибка подсчета записей "+r.meta.Table, err)
	}
	return total, nil
}

func (r *DictionaryRepository) Create(ctx context.Context, item entities.DictionaryItem) (*entities.DictionaryItem, error) {
	insert := sq.Insert(r.meta.Table).PlaceholderFormat(sq.Dollar)
	columns := []string{"name"}
	values := []any{item.Name}
	if r.meta.HasSlug {
		columns = append(columns, "slug")
		values = append(values, item.Slug)
	}
	if r.meta.HasDescription {
		columns = append(columns, "description")
		values = append(values, item.Description)
	}
	query, args, err := insert.Columns(columns...).Values(values...).
		Suffix("RETURNING " + joinColumns(r.columns())).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanDictionaryItem(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DictionaryRepository) Update(ctx context.Context, id int64, fields map[string]any) (*entities.DictionaryItem, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}
	query, args, err := sq.Update(r.meta.Table).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(r.columns())).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanDictionaryItem(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *DictionaryRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.meta.Table)
	result, err := dbFrom(ctx, r.storage).Exec(ctx, query, id)
	if err != nil {
		return mapDeleteError("ошибка удаления из "+r.meta.Table, r.meta.Label, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
