package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
)

// runRead выполняет чтение в единице работы и переводит ErrNotFound в nil.
func runRead[T any](ctx context.Context, tx repositories.TxManagerInterface, fn func(ctx context.Context) (*T, error)) (*T, error) {
	var out *T
	err := tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

func runList[T any](ctx context.Context, tx repositories.TxManagerInterface, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// --- Типы активов ---

type AssetTypeService struct {
	dictionaryBase
	repo repositories.AssetTypeRepositoryInterface
}

func NewAssetTypeService(repo repositories.AssetTypeRepositoryInterface, deps DictionaryDeps) *AssetTypeService {
	return &AssetTypeService{dictionaryBase: newDictionaryBase(entities.KindAssetType, deps), repo: repo}
}

var _ DictionaryService[entities.AssetType, dto.CreateAssetTypeDTO, dto.UpdateAssetTypeDTO] = (*AssetTypeService)(nil)

func prefixRule(prefix string) UniqueRule {
	return UniqueRule{
		Field: "prefix",
		Value: prefix,
		Where: sq.Expr("UPPER(prefix) = ?", prefix),
		Msg:   fmt.Sprintf("Тип актива с префиксом '%s' уже существует.", prefix),
	}
}

func (s *AssetTypeService) ListAll(ctx context.Context) ([]entities.AssetType, error) {
	return runList(ctx, s.txManager, s.repo.ListAll)
}

func (s *AssetTypeService) Get(ctx context.Context, id int64) (*entities.AssetType, error) {
	return runRead(ctx, s.txManager, func(ctx context.Context) (*entities.AssetType, error) {
		return s.repo.FindByID(ctx, id)
	})
}

func (s *AssetTypeService) Count(ctx context.Context) (int64, error) {
	return runList(ctx, s.txManager, s.repo.Count)
}

func (s *AssetTypeService) Create(ctx context.Context, in dto.CreateAssetTypeDTO, actor *entities.Actor) (*entities.AssetType, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	prefix, err := requireText("prefix", in.Prefix)
	if err != nil {
		return nil, err
	}
	item := entities.AssetType{
		Name:        name,
		Prefix:      strings.ToUpper(prefix),
		Slug:        emptyToNil(in.Slug.Ptr()),
		Description: emptyToNil(in.Description.Ptr()),
	}
	rules := []UniqueRule{EqualRule("name", item.Name), prefixRule(item.Prefix)}
	if item.Slug != nil {
		rules = append(rules, EqualRule("slug", *item.Slug))
	}

	var created *entities.AssetType
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, 0, rules...); err != nil {
			return err
		}
		var err error
		if created, err = s.repo.Create(ctx, item); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionCreate, s.meta.EntityType, created.ID, map[string]any{
			"name":        created.Name,
			"prefix":      created.Prefix,
			"slug":        created.Slug,
			"description": created.Description,
		}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при создании типа актива", 0, err)
		return nil, err
	}
	s.logger.Info("Тип актива создан", zap.Int64("id", created.ID), zap.String("prefix", created.Prefix))
	return created, nil
}

func (s *AssetTypeService) Update(ctx context.Context, id int64, in dto.UpdateAssetTypeDTO, actor *entities.Actor) (*entities.AssetType, error) {
	var result *entities.AssetType
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
		if in.Prefix != nil {
			prefix, err := requireText("prefix", *in.Prefix)
			if err != nil {
				return err
			}
			cs.add("prefix", current.Prefix, strings.ToUpper(prefix))
		}
		if in.Description != nil {
			cs.add("description", current.Description, emptyToNil(in.Description))
		}
		if cs.empty() {
			result = current
			return nil
		}

		var rules []UniqueRule
		if cs.changed("name") {
			rules = append(rules, EqualRule("name", cs.fields["name"].(string)))
		}
		if cs.changed("prefix") {
			rules = append(rules, prefixRule(cs.fields["prefix"].(string)))
		}
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, id, rules...); err != nil {
			return err
		}
		if result, err = s.repo.Update(ctx, id, cs.fields); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionUpdate, s.meta.EntityType, id, map[string]any{"changes": cs.diff}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при обновлении типа актива", id, err)
		return nil, err
	}
	return result, nil
}

func (s *AssetTypeService) Delete(ctx context.Context, id int64, actor *entities.Actor) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.wrapNotFound(err, id)
		}
		if err := s.dependencies.Ensure(ctx, s.kind, id, current.Name); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, entities.ActionDelete, s.meta.EntityType, id, map[string]any{"name": current.Name, "prefix": current.Prefix}, actor); err != nil {
			return err
		}
		return s.wrapNotFound(s.repo.Delete(ctx, id), id)
	})
	if err != nil {
		s.logMutation("Ошибка при удалении типа актива", id, err)
	}
	return err
}

// --- Модели устройств ---

type DeviceModelService struct {
	dictionaryBase
	repo repositories.DeviceModelRepositoryInterface
}

func NewDeviceModelService(repo repositories.DeviceModelRepositoryInterface, deps DictionaryDeps) *DeviceModelService {
	return &DeviceModelService{dictionaryBase: newDictionaryBase(entities.KindDeviceModel, deps), repo: repo}
}

var _ DictionaryService[entities.DeviceModel, dto.CreateDeviceModelDTO, dto.UpdateDeviceModelDTO] = (*DeviceModelService)(nil)

// модель уникальна в пределах производителя
func modelRule(name string, manufacturerID int64) UniqueRule {
	return UniqueRule{
		Field: "name",
		Value: name,
		Where: sq.Eq{"name": name, "manufacturer_id": manufacturerID},
		Msg:   fmt.Sprintf("Модель '%s' у этого производителя уже существует.", name),
	}
}

func modelReferences(manufacturerID, assetTypeID int64) []repositories.Reference {
	return []repositories.Reference{
		{Table: entities.KindManufacturer.Meta().Table, ID: manufacturerID, Label: entities.KindManufacturer.Meta().Label},
		{Table: entities.KindAssetType.Meta().Table, ID: assetTypeID, Label: entities.KindAssetType.Meta().Label},
	}
}

func (s *DeviceModelService) ListAll(ctx context.Context) ([]entities.DeviceModel, error) {
	return runList(ctx, s.txManager, s.repo.ListAll)
}

func (s *DeviceModelService) Get(ctx context.Context, id int64) (*entities.DeviceModel, error) {
	return runRead(ctx, s.txManager, func(ctx context.Context) (*entities.DeviceModel, error) {
		return s.repo.FindByID(ctx, id)
	})
}

func (s *DeviceModelService) Count(ctx context.Context) (int64, error) {
	return runList(ctx, s.txManager, s.repo.Count)
}

func (s *DeviceModelService) Create(ctx context.Context, in dto.CreateDeviceModelDTO, actor *entities.Actor) (*entities.DeviceModel, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	item := entities.DeviceModel{
		Name:           name,
		ManufacturerID: in.ManufacturerID,
		AssetTypeID:    in.AssetTypeID,
		Description:    emptyToNil(in.Description.Ptr()),
		Specification:  in.Specification,
	}

	var created *entities.DeviceModel
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureReferences(ctx, modelReferences(item.ManufacturerID, item.AssetTypeID)...); err != nil {
			return err
		}
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, 0, modelRule(item.Name, item.ManufacturerID)); err != nil {
			return err
		}
		var err error
		if created, err = s.repo.Create(ctx, item); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionCreate, s.meta.EntityType, created.ID, map[string]any{
			"name":            created.Name,
			"manufacturer_id": created.ManufacturerID,
			"asset_type_id":   created.AssetTypeID,
			"description":     created.Description,
			"specification":   created.Specification,
		}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при создании модели устройства", 0, err)
		return nil, err
	}
	s.logger.Info("Модель устройства создана", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *DeviceModelService) Update(ctx context.Context, id int64, in dto.UpdateDeviceModelDTO, actor *entities.Actor) (*entities.DeviceModel, error) {
	var result *entities.DeviceModel
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
		if in.ManufacturerID != nil {
			cs.add("manufacturer_id", current.ManufacturerID, *in.ManufacturerID)
		}
		if in.AssetTypeID != nil {
			cs.add("asset_type_id", current.AssetTypeID, *in.AssetTypeID)
		}
		if in.Description != nil {
			cs.add("description", current.Description, emptyToNil(in.Description))
		}
		if in.Specification != nil {
			cs.add("specification", current.Specification, in.Specification)
		}
		if cs.empty() {
			result = current
			return nil
		}

		name, manufacturerID, assetTypeID := current.Name, current.ManufacturerID, current.AssetTypeID
		if cs.changed("name") {
			name = cs.fields["name"].(string)
		}
		if cs.changed("manufacturer_id") {
			manufacturerID = cs.fields["manufacturer_id"].(int64)
		}
		if cs.changed("asset_type_id") {
			assetTypeID = cs.fields["asset_type_id"].(int64)
		}
		if cs.changed("manufacturer_id") || cs.changed("asset_type_id") {
			if err := s.ensureReferences(ctx, modelReferences(manufacturerID, assetTypeID)...); err != nil {
				return err
			}
		}
		if cs.changed("name") || cs.changed("manufacturer_id") {
			if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, id, modelRule(name, manufacturerID)); err != nil {
				return err
			}
		}
		if result, err = s.repo.Update(ctx, id, cs.fields); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionUpdate, s.meta.EntityType, id, map[string]any{"changes": cs.diff}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при обновлении модели устройства", id, err)
		return nil, err
	}
	return result, nil
}

func (s *DeviceModelService) Delete(ctx context.Context, id int64, actor *entities.Actor) error {
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
		s.logMutation("Ошибка при удалении модели устройства", id, err)
	}
	return err
}

// --- Сотрудники ---

type EmployeeService struct {
	dictionaryBase
	repo repositories.EmployeeRepositoryInterface
}

func NewEmployeeService(repo repositories.EmployeeRepositoryInterface, deps DictionaryDeps) *EmployeeService {
	return &EmployeeService{dictionaryBase: newDictionaryBase(entities.KindEmployee, deps), repo: repo}
}

var _ DictionaryService[entities.Employee, dto.CreateEmployeeDTO, dto.UpdateEmployeeDTO] = (*EmployeeService)(nil)

func employeeRules(code, email *string) []UniqueRule {
	var rules []UniqueRule
	if code != nil {
		rules = append(rules, EqualRule("employee_code", *code))
	}
	if email != nil {
		rules = append(rules, EqualRule("email", *email))
	}
	return rules
}

func departmentReference(id int64) repositories.Reference {
	meta := entities.KindDepartment.Meta()
	return repositories.Reference{Table: meta.Table, ID: id, Label: meta.Label}
}

func (s *EmployeeService) ListAll(ctx context.Context) ([]entities.Employee, error) {
	return runList(ctx, s.txManager, s.repo.ListAll)
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*entities.Employee, error) {
	return runRead(ctx, s.txManager, func(ctx context.Context) (*entities.Employee, error) {
		return s.repo.FindByID(ctx, id)
	})
}

func (s *EmployeeService) Count(ctx context.Context) (int64, error) {
	return runList(ctx, s.txManager, s.repo.Count)
}

func (s *EmployeeService) Create(ctx context.Context, in dto.CreateEmployeeDTO, actor *entities.Actor) (*entities.Employee, error) {
	lastName, err := requireText("last_name", in.LastName)
	if err != nil {
		return nil, err
	}
	firstName, err := requireText("first_name", in.FirstName)
	if err != nil {
		return nil, err
	}
	item := entities.Employee{
		LastName:     lastName,
		FirstName:    firstName,
		Patronymic:   emptyToNil(in.Patronymic.Ptr()),
		EmployeeCode: emptyToNil(in.EmployeeCode.Ptr()),
		Email:        emptyToNil(in.Email.Ptr()),
		Phone:        emptyToNil(in.Phone.Ptr()),
		DepartmentID: in.DepartmentID.Ptr(),
	}

	var created *entities.Employee
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if item.DepartmentID != nil {
			if err := s.ensureReferences(ctx, departmentReference(*item.DepartmentID)); err != nil {
				return err
			}
		}
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, 0, employeeRules(item.EmployeeCode, item.Email)...); err != nil {
			return err
		}
		var err error
		if created, err = s.repo.Create(ctx, item); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionCreate, s.meta.EntityType, created.ID, map[string]any{
			"last_name":     created.LastName,
			"first_name":    created.FirstName,
			"patronymic":    created.Patronymic,
			"employee_code": created.EmployeeCode,
			"email":         created.Email,
			"phone":         created.Phone,
			"department_id": created.DepartmentID,
		}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при создании сотрудника", 0, err)
		return nil, err
	}
	s.logger.Info("Сотрудник создан", zap.Int64("id", created.ID))
	return created, nil
}

func (s *EmployeeService) Update(ctx context.Context, id int64, in dto.UpdateEmployeeDTO, actor *entities.Actor) (*entities.Employee, error) {
	var result *entities.Employee
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.wrapNotFound(err, id)
		}

		cs := newChangeSet()
		if in.LastName != nil {
			v, err := requireText("last_name", *in.LastName)
			if err != nil {
				return err
			}
			cs.add("last_name", current.LastName, v)
		}
		if in.FirstName != nil {
			v, err := requireText("first_name", *in.FirstName)
			if err != nil {
				return err
			}
			cs.add("first_name", current.FirstName, v)
		}
		optional := []struct {
			column string
			old    *string
			new    *string
		}{
			{"patronymic", current.Patronymic, in.Patronymic},
			{"employee_code", current.EmployeeCode, in.EmployeeCode},
			{"email", current.Email, in.Email},
			{"phone", current.Phone, in.Phone},
		}
		for _, f := range optional {
			if f.new != nil {
				cs.add(f.column, f.old, emptyToNil(f.new))
			}
		}
		if in.DepartmentID != nil {
			var dep *int64
			if *in.DepartmentID != 0 {
				dep = in.DepartmentID
			}
			cs.add("department_id", current.DepartmentID, dep)
		}
		if cs.empty() {
			result = current
			return nil
		}

		if dep, ok := cs.fields["department_id"].(*int64); ok && dep != nil {
			if err := s.ensureReferences(ctx, departmentReference(*dep)); err != nil {
				return err
			}
		}
		var code, email *string
		if cs.changed("employee_code") {
			code = cs.fields["employee_code"].(*string)
		}
		if cs.changed("email") {
			email = cs.fields["email"].(*string)
		}
		if err := s.duplicates.Ensure(ctx, s.meta.Table, s.meta.Label, id, employeeRules(code, email)...); err != nil {
			return err
		}
		if result, err = s.repo.Update(ctx, id, cs.fields); err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionUpdate, s.meta.EntityType, id, map[string]any{"changes": cs.diff}, actor)
	})
	if err != nil {
		s.logMutation("Ошибка при обновлении сотрудника", id, err)
		return nil, err
	}
	return result, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64, actor *entities.Actor) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.wrapNotFound(err, id)
		}
		if err := s.dependencies.Ensure(ctx, s.kind, id, current.FullName()); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, entities.ActionDelete, s.meta.EntityType, id, map[string]any{"name": current.FullName()}, actor); err != nil {
			return err
		}
		return s.wrapNotFound(s.repo.Delete(ctx, id), id)
	})
	if err != nil {
		s.logMutation("Ошибка при удалении сотрудника", id, err)
	}
	return err
}
