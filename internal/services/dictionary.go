package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
)

// DictionaryService - общий контракт справочников.
// T - сущность, C и U - DTO создания и обновления.
type DictionaryService[T any, C any, U any] interface {
	Kind() entities.DictionaryKind
	ListAll(ctx context.Context) ([]T, error)
	// Get возвращает nil без ошибки, если записи нет.
	Get(ctx context.Context, id int64) (*T, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, in C, actor *entities.Actor) (*T, error)
	Update(ctx context.Context, id int64, in U, actor *entities.Actor) (*T, error)
	Delete(ctx context.Context, id int64, actor *entities.Actor) error
}

// DictionaryDeps - общие зависимости сервисов справочников.
type DictionaryDeps struct {
	TxManager repositories.TxManagerInterface
	Checks    repositories.CheckRepositoryInterface
	Audit     AuditServiceInterface
	Logger    *zap.Logger
}

type dictionaryBase struct {
	kind         entities.DictionaryKind
	meta         entities.DictionaryMeta
	txManager    repositories.TxManagerInterface
	checks       repositories.CheckRepositoryInterface
	duplicates   *DuplicateCheck
	dependencies *DependencyCheck
	audit        AuditServiceInterface
	logger       *zap.Logger
}

func newDictionaryBase(kind entities.DictionaryKind, deps DictionaryDeps) dictionaryBase {
	return dictionaryBase{
		kind:         kind,
		meta:         kind.Meta(),
		txManager:    deps.TxManager,
		checks:       deps.Checks,
		duplicates:   NewDuplicateCheck(deps.Checks),
		dependencies: NewDependencyCheck(deps.Checks),
		audit:        deps.Audit,
		logger:       deps.Logger.With(zap.String("dictionary", string(kind))),
	}
}

func (b *dictionaryBase) Kind() entities.DictionaryKind { return b.kind }

func (b *dictionaryBase) notFound(id int64) error {
	return apperrors.NewNotFoundError(b.meta.Label, id)
}

// wrapNotFound заменяет общий ErrNotFound на ошибку с именем сущности и id.
func (b *dictionaryBase) wrapNotFound(err error, id int64) error {
	var nf *apperrors.NotFoundError
	if errors.Is(err, apperrors.ErrNotFound) && !errors.As(err, &nf) {
		return b.notFound(id)
	}
	return err
}

// ensureReferences проверяет существование связанных записей одним запросом.
func (b *dictionaryBase) ensureReferences(ctx context.Context, refs ...repositories.Reference) error {
	missing, err := b.checks.MissingReferences(ctx, refs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperrors.NewNotFoundError(missing[0].Label, missing[0].ID)
	}
	return nil
}

func (b *dictionaryBase) logMutation(msg string, id int64, err error) {
	if err != nil {
		b.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
		return
	}
}

func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperrors.NewValidationError(field, "обязательное поле")
	}
	return v, nil
}

// SimpleDictionaryService обслуживает справочники с одним уникальным полем name.
type SimpleDictionaryService struct {
	dictionaryBase
	repo repositories.DictionaryRepositoryInterface
}

func NewSimpleDictionaryService(repo repositories.DictionaryRepositoryInterface, deps DictionaryDeps) *SimpleDictionaryService {
	return &SimpleDictionaryService{
		dictionaryBase: newDictionaryBase(repo.Meta().Kind, deps),
		repo:           repo,
	}
}

var _ DictionaryService[entities.DictionaryItem, dto.CreateDictionaryItemDTO, dto.UpdateDictionaryItemDTO] = (*SimpleDictionaryService)(nil)

func (s *SimpleDictionaryService) ListAll(ctx context.Context) ([]entities.DictionaryItem, error) {
	var items []entities.DictionaryItem
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при получении справочника", zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *SimpleDictionaryService) Get(ctx context.Context, id int64) (*entities.DictionaryItem, error) {
	var item *entities.DictionaryItem
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.repo.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

func (s *SimpleDictionaryService) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		total, err = s.repo.Count(ctx)
		return err
	})
	return total, err
}

func (s *SimpleDictionaryService) Create(ctx context.Context, in dto.CreateDictionaryItemDTO, actor *entities.Actor) (*entities.DictionaryItem, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	item := entities.DictionaryItem{Name: name}
	rules := []UniqueRule{EqualRule("name", name)}
	if s.meta.HasSlug {
		item.Slug = emptyToNil(in.Slug.Ptr())
		if item.Slug != nil {
			rules = append(rules, EqualRule("slug", *item.Slug))
		}
	}
	if s.meta.HasDescription {
		item.Description = emptyToNil(in.Description.Ptr())
	}

	var created *entities.DictionaryItem
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, 0, rules...); err != nil {
			return err
		}
		var err error
		created, err = s.repo.Create(ctx, item)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionCreate, s.meta.EntityType, created.ID, map[string]any{
			"name":        created.Name,
			"slug":        created.Slug,
			"description": created.Description,
		}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при создании записи справочника", 0, err)
		return nil, err
	}
	s.logger.Info("Запись справочника создана", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *SimpleDictionaryService) Update(ctx context.Context, id int64, in dto.UpdateDictionaryItemDTO, actor *entities.Actor) (*entities.DictionaryItem, error) {
	var result *entities.DictionaryItem
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.wrapNotFound(err, id)
		}

		cs := newChangeSet()
		if in.Name != nil {
			name, err := requireText("name", *in.Name)
			if err != nil {
				return err
			}
			cs.add("name", current.Name, name)
		}
		if in.Description != nil && s.meta.HasDescription {
			cs.add("description", current.Description, emptyToNil(in.Description))
		}
		if cs.empty() {
			result = current
			return nil
		}

		if cs.changed("name") {
			if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, id, EqualRule("name", cs.fields["name"].(string))); err != nil {
				return err
			}
		}
		result, err = s.repo.Update(ctx, id, cs.fields)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionUpdate, s.meta.EntityType, id, map[string]any{"changes": cs.diff}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при обновлении записи справочника", id, err)
		return nil, err
	}
	return result, nil
}

func (s *SimpleDictionaryService) Delete(ctx context.Context, id int64, actor *entities.Actor) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.wrapNotFound(err, id)
		}
		if err := s.dependencies.Ensure(ctx, s.kind, id, current.Name); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, entities.ActionDelete, s.meta.EntityType, id, map[string]any{"name": current.Name}, actor); err != nil {
			return err
		}
		return s.wrapNotFound(s.repo.Delete(ctx, id), id)
	})
	if err != nil {
		s.logMutation("Ошибка при удалении записи справочника", id, err)
		return err
	}
	s.logger.Info("Запись справочника удалена", zap.Int64("id", id))
	return nil
}
