package seeders

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
)

// Repositories - хранилища справочников, которые заполняет сидер.
type Repositories struct {
	AssetTypes     repositories.AssetTypeRepositoryInterface
	DeviceStatuses repositories.DictionaryRepositoryInterface
	Departments    repositories.DictionaryRepositoryInterface
	Locations      repositories.DictionaryRepositoryInterface
}

func NewRepositories(pool *pgxpool.Pool, logger *zap.Logger) Repositories {
	return Repositories{
		AssetTypes:     repositories.NewAssetTypeRepository(pool, logger),
		DeviceStatuses: repositories.NewDictionaryRepository(pool, entities.KindDeviceStatus, logger),
		Departments:    repositories.NewDictionaryRepository(pool, entities.KindDepartment, logger),
		Locations:      repositories.NewDictionaryRepository(pool, entities.KindLocation, logger),
	}
}

// SyncResult - счетчики одного прогона синхронизации.
type SyncResult struct {
	Created   int
	Updated   int
	Unchanged int
}

func (r *SyncResult) track(changed, created bool) {
	switch {
	case created:
		r.Created++
	case changed:
		r.Updated++
	default:
		r.Unchanged++
	}
}

// SyncInitialData приводит справочники к содержимому файла за одну транзакцию.
// Запись ищется по slug, затем по имени. Найденная обновляется, если поля
// отличаются, иначе создается новая. Журнал аудита сидер не пишет.
func SyncInitialData(ctx context.Context, txManager repositories.TxManagerInterface, repos Repositories, data *InitialData, logger *zap.Logger) (SyncResult, error) {
	var result SyncResult
	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, item := range data.AssetTypes {
			changed, created, err := syncAssetType(ctx, repos.AssetTypes, item)
			if err != nil {
				return err
			}
			result.track(changed, created)
		}
		dictionaries := []struct {
			repo  repositories.DictionaryRepositoryInterface
			items []InitialItem
		}{
			{repos.DeviceStatuses, data.DeviceStatuses},
			{repos.Departments, data.Departments},
			{repos.Locations, data.Locations},
		}
		for _, d := range dictionaries {
			for _, item := range d.items {
				changed, created, err := syncDictionaryItem(ctx, d.repo, item)
				if err != nil {
					return err
				}
				result.track(changed, created)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Ошибка синхронизации начальных данных", zap.Error(err))
		return SyncResult{}, err
	}
	logger.Info("Начальные данные синхронизированы",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
	)
	return result, nil
}

// mutableFields собирает отличающиеся поля. Пустое описание в файле
// не затирает описание в базе.
func mutableFields(item InitialItem, name string, slug, description *string) map[string]any {
	fields := map[string]any{}
	if n := strings.TrimSpace(item.Name); n != name {
		fields["name"] = n
	}
	if d := strings.TrimSpace(item.Description); d != "" && (description == nil || *description != d) {
		fields["description"] = d
	}
	if slug == nil {
		fields["slug"] = strings.TrimSpace(item.Slug)
	}
	return fields
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func syncAssetType(ctx context.Context, repo repositories.AssetTypeRepositoryInterface, item InitialItem) (changed, created bool, err error) {
	slug, name := strings.TrimSpace(item.Slug), strings.TrimSpace(item.Name)
	prefix := strings.ToUpper(strings.TrimSpace(item.Prefix))

	current, err := repo.FindBySlugOrName(ctx, slug, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		if prefix == "" {
			return false, false, apperrors.NewValidationError("asset_types."+slug+".prefix", "префикс обязателен для нового типа актива")
		}
		_, err = repo.Create(ctx, entities.AssetType{
			Name:        name,
			Prefix:      prefix,
			Slug:        &slug,
			Description: optional(item.Description),
		})
		return false, err == nil, err
	}
	if err != nil {
		return false, false, err
	}

	fields := mutableFields(item, current.Name, current.Slug, current.Description)
	if prefix != "" && prefix != current.Prefix {
		fields["prefix"] = prefix
	}
	if len(fields) == 0 {
		return false, false, nil
	}
	_, err = repo.Update(ctx, current.ID, fields)
	return err == nil, false, err
}

func syncDictionaryItem(ctx context.Context, repo repositories.DictionaryRepositoryInterface, item InitialItem) (changed, created bool, err error) {
	slug, name := strings.TrimSpace(item.Slug), strings.TrimSpace(item.Name)

	current, err := repo.FindBySlugOrName(ctx, slug, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		_, err = repo.Create(ctx, entities.DictionaryItem{
			Name:        name,
			Slug:        &slug,
			Description: optional(item.Description),
		})
		return false, err == nil, err
	}
	if err != nil {
		return false, false, err
	}

	fields := mutableFields(item, current.Name, current.Slug, current.Description)
	if len(fields) == 0 {
		return false, false, nil
	}
	_, err = repo.Update(ctx, current.ID, fields)
	return err == nil, false, err
}
