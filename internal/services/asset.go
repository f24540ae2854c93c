package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/types"
)

const (
	deviceLabel    = "Актив"
	tagSearchLimit = 20
	bulkSource     = "bulk_update"
)

type AssetServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Device, types.Pagination, error)
	Get(ctx context.Context, id int64) (*entities.Device, error)
	Create(ctx context.Context, in dto.CreateAssetDTO, actor *entities.Actor) (*entities.Device, error)
	Update(ctx context.Context, id int64, in dto.UpdateAssetDTO, actor *entities.Actor) (*entities.Device, error)
	Delete(ctx context.Context, id int64, actor *entities.Actor) error
	BulkDelete(ctx context.Context, ids []int64, actor *entities.Actor) (int64, []string, error)
	BulkUpdate(ctx context.Context, in dto.BulkUpdateAssetsDTO, actor *entities.Actor) (int64, error)
	DashboardCounts(ctx context.Context) (*entities.AssetDashboard, error)
	SearchTags(ctx context.Context, q string) ([]entities.Tag, error)
}

type AssetService struct {
	txManager  repositories.TxManagerInterface
	devices    repositories.DeviceRepositoryInterface
	assetTypes repositories.AssetTypeRepositoryInterface
	tags       repositories.DictionaryRepositoryInterface
	statuses   repositories.DictionaryRepositoryInterface
	depts      repositories.DictionaryRepositoryInterface
	locations  repositories.DictionaryRepositoryInterface
	checks     repositories.CheckRepositoryInterface
	duplicates *DuplicateCheck
	audit      AuditServiceInterface
	clock      func() time.Time
	logger     *zap.Logger
}

// AssetRepositories - хранилища, с которыми работает сервис активов.
type AssetRepositories struct {
	Devices     repositories.DeviceRepositoryInterface
	AssetTypes  repositories.AssetTypeRepositoryInterface
	Tags        repositories.DictionaryRepositoryInterface
	Statuses    repositories.DictionaryRepositoryInterface
	Departments repositories.DictionaryRepositoryInterface
	Locations   repositories.DictionaryRepositoryInterface
	Checks      repositories.CheckRepositoryInterface
}

func NewAssetService(
	txManager repositories.TxManagerInterface,
	repos AssetRepositories,
	audit AuditServiceInterface,
	clock func() time.Time,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		txManager:  txManager,
		devices:    repos.Devices,
		assetTypes: repos.AssetTypes,
		tags:       repos.Tags,
		statuses:   repos.Statuses,
		depts:      repos.Departments,
		locations:  repos.Locations,
		checks:     repos.Checks,
		duplicates: NewDuplicateCheck(repos.Checks),
		audit:      audit,
		clock:      clock,
		logger:     logger,
	}
}

// InventoryPrefix - общая часть номеров одного типа за один день.
func InventoryPrefix(typePrefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", strings.ToUpper(typePrefix), day.UTC().Format("20060102"))
}

// FormatInventoryNumber: PRN-20250115-001. После 999 номер просто становится длиннее.
func FormatInventoryNumber(typePrefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", InventoryPrefix(typePrefix, day), seq)
}

func (s *AssetService) List(ctx context.Context, filter types.Filter) ([]entities.Device, types.Pagination, error) {
	var (
		devices []entities.Device
		total   int64
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		devices, total, err = s.devices.List(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при получении списка активов", zap.Error(err))
		return nil, types.Pagination{}, err
	}
	return devices, types.NewPagination(total, filter.Page, filter.PageSize), nil
}

func (s *AssetService) Get(ctx context.Context, id int64) (*entities.Device, error) {
	var device *entities.Device
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		device, err = s.findDevice(ctx, id)
		return err
	})
	return device, err
}

func (s *AssetService) findDevice(ctx context.Context, id int64) (*entities.Device, error) {
	device, err := s.devices.FindByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError(deviceLabel, id)
	}
	return device, err
}

func reference(kind entities.DictionaryKind, id int64) repositories.Reference {
	meta := kind.Meta()
	return repositories.Reference{Table: meta.Table, ID: id, Label: meta.Label}
}

func appendOptionalRef(refs []repositories.Reference, kind entities.DictionaryKind, id *int64) []repositories.Reference {
	if id == nil {
		return refs
	}
	return append(refs, reference(kind, *id))
}

func (s *AssetService) ensureReferences(ctx context.Context, refs []repositories.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	missing, err := s.checks.MissingReferences(ctx, refs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperrors.NewNotFoundError(missing[0].Label, missing[0].ID)
	}
	return nil
}

func (s *AssetService) ensureUnique(ctx context.Context, excludeID int64, serial, mac *string) error {
	var rules []UniqueRule
	if serial != nil {
		rules = append(rules, EqualRule("serial_number", *serial))
	}
	if mac != nil {
		rules = append(rules, EqualRule("mac_address", *mac))
	}
	return s.duplicates.Ensure(ctx, "devices", deviceLabel, excludeID, rules...)
}

// resolveTags оставляет только существующие теги; результат отсортирован.
func (s *AssetService) resolveTags(ctx context.Context, ids []int64) ([]int64, error) {
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return []int64{}, nil
	}
	found, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(found))
	for _, t := range found {
		out = append(out, t.ID)
	}
	return uniqueSorted(out), nil
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *AssetService) Create(ctx context.Context, in dto.CreateAssetDTO, actor *entities.Actor) (*entities.Device, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	device := entities.Device{
		Name:                  name,
		SerialNumber:          emptyToNil(in.SerialNumber.Ptr()),
		MACAddress:            emptyToNil(in.MACAddress.Ptr()),
		IPAddress:             emptyToNil(in.IPAddress.Ptr()),
		Notes:                 emptyToNil(in.Notes.Ptr()),
		Source:                entities.DefaultDeviceSource,
		PurchaseDate:          in.PurchaseDate.TimePtr(),
		WarrantyEndDate:       in.WarrantyEndDate.TimePtr(),
		Price:                 in.Price,
		ExpectedLifespanYears: in.ExpectedLifespanYears.Ptr(),
		CurrentWearPercentage: in.CurrentWearPercentage.Ptr(),
		Attributes:            in.Attributes,
		AssetTypeID:           in.AssetTypeID,
		DeviceModelID:         in.DeviceModelID,
		StatusID:              in.StatusID,
		DepartmentID:          in.DepartmentID.Ptr(),
		LocationID:            in.LocationID.Ptr(),
		EmployeeID:            in.EmployeeID.Ptr(),
		SupplierID:            in.SupplierID.Ptr(),
	}
	if src := emptyToNil(in.Source.Ptr()); src != nil {
		device.Source = *src
	}
	if device.Price.Valid && device.Price.Decimal.IsNegative() {
		return nil, apperrors.NewValidationError("price", "цена не может быть отрицательной")
	}

	var created *entities.Device
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		assetType, err := s.assetTypes.FindByID(ctx, device.AssetTypeID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewNotFoundError(entities.KindAssetType.Meta().Label, device.AssetTypeID)
			}
			return err
		}

		refs := []repositories.Reference{
			reference(entities.KindDeviceModel, device.DeviceModelID),
			reference(entities.KindDeviceStatus, device.StatusID),
		}
		refs = appendOptionalRef(refs, entities.KindDepartment, device.DepartmentID)
		refs = appendOptionalRef(refs, entities.KindLocation, device.LocationID)
		refs = appendOptionalRef(refs, entities.KindEmployee, device.EmployeeID)
		refs = appendOptionalRef(refs, entities.KindSupplier, device.SupplierID)
		if err := s.ensureReferences(ctx, refs); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, 0, device.SerialNumber, device.MACAddress); err != nil {
			return err
		}

		day := s.clock().UTC()
		seq, err := s.devices.NextInventorySequence(ctx, InventoryPrefix(assetType.Prefix, day))
		if err != nil {
			return err
		}
		device.InventoryNumber = FormatInventoryNumber(assetType.Prefix, day, seq)

		tagIDs, err := s.resolveTags(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		id, err := s.devices.Create(ctx, device)
		if err != nil {
			return err
		}
		if err := s.devices.ReplaceTags(ctx, id, tagIDs); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, entities.ActionCreate, entities.EntityDevice, id, map[string]any{
			"inventory_number": device.InventoryNumber,
			"name":             device.Name,
		}, actor); err != nil {
			return err
		}
		created, err = s.findDevice(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании актива", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Актив создан", zap.Int64("id", created.ID), zap.String("inventory_number", created.InventoryNumber))
	return created, nil
}

func requiredMissing(field string) error {
	return apperrors.NewValidationError(field, "поле не может быть пустым")
}

// diffAsset сравнивает переданные поля с текущим активом.
// tagIDs - уже разрешённый набор тегов или nil, если теги не передавались.
func diffAsset(current entities.Device, in dto.UpdateAssetDTO, tagIDs []int64) (*changeSet, error) {
	cs := newChangeSet()

	if in.Has("name", in.Name != nil) {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return nil, requiredMissing("name")
		}
		cs.add("name", current.Name, strings.TrimSpace(*in.Name))
	}

	required := []struct {
		key string
		old int64
		new *int64
	}{
		{"asset_type_id", current.AssetTypeID, in.AssetTypeID},
		{"device_model_id", current.DeviceModelID, in.DeviceModelID},
		{"status_id", current.StatusID, in.StatusID},
	}
	for _, f := range required {
		if !in.Has(f.key, f.new != nil) {
			continue
		}
		if f.new == nil {
			return nil, requiredMissing(f.key)
		}
		cs.add(f.key, f.old, *f.new)
	}

	optionalRefs := []struct {
		key string
		old *int64
		new *int64
	}{
		{"department_id", current.DepartmentID, in.DepartmentID},
		{"location_id", current.LocationID, in.LocationID},
		{"employee_id", current.EmployeeID, in.EmployeeID},
		{"supplier_id", current.SupplierID, in.SupplierID},
	}
	for _, f := range optionalRefs {
		if in.Has(f.key, f.new != nil) {
			cs.add(f.key, f.old, f.new)
		}
	}

	texts := []struct {
		key string
		old *string
		new *string
	}{
		{"serial_number", current.SerialNumber, in.SerialNumber},
		{"mac_address", current.MACAddress, in.MACAddress},
		{"ip_address", current.IPAddress, in.IPAddress},
		{"notes", current.Notes, in.Notes},
	}
	for _, f := range texts {
		if in.Has(f.key, f.new != nil) {
			cs.add(f.key, f.old, emptyToNil(f.new))
		}
	}

	if in.Has("source", in.Source != nil) {
		source := entities.DefaultDeviceSource
		if v := emptyToNil(in.Source); v != nil {
			source = *v
		}
		cs.add("source", current.Source, source)
	}

	if in.Has("purchase_date", in.PurchaseDate != nil) {
		cs.add("purchase_date", current.PurchaseDate, in.PurchaseDate.TimePtr())
	}
	if in.Has("warranty_end_date", in.WarrantyEndDate != nil) {
		cs.add("warranty_end_date", current.WarrantyEndDate, in.WarrantyEndDate.TimePtr())
	}
	if in.Has("price", in.Price != nil) {
		price := decimal.NullDecimal{}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return nil, apperrors.NewValidationError("price", "цена не может быть отрицательной")
			}
			price = decimal.NullDecimal{Decimal: *in.Price, Valid: true}
		}
		cs.add("price", current.Price, price)
	}
	if in.Has("expected_lifespan_years", in.ExpectedLifespanYears != nil) {
		cs.add("expected_lifespan_years", current.ExpectedLifespanYears, in.ExpectedLifespanYears)
	}
	if in.Has("current_wear_percentage", in.CurrentWearPercentage != nil) {
		cs.add("current_wear_percentage", current.CurrentWearPercentage, in.CurrentWearPercentage)
	}
	if in.Has("attributes", in.Attributes != nil) {
		cs.add("attributes", current.Attributes, in.Attributes)
	}

	if tagIDs != nil {
		oldTags := uniqueSorted(current.TagIDs())
		if !slices.Equal(oldTags, tagIDs) {
			cs.addDiff("tag_ids", oldTags, tagIDs)
		}
	}
	return cs, nil
}

// deviceRefColumns задаёт порядок проверки ссылок: первой сообщается
// ошибка по самой ранней колонке.
var deviceRefColumns = []struct {
	column string
	kind   entities.DictionaryKind
}{
	{"asset_type_id", entities.KindAssetType},
	{"device_model_id", entities.KindDeviceModel},
	{"status_id", entities.KindDeviceStatus},
	{"department_id", entities.KindDepartment},
	{"location_id", entities.KindLocation},
	{"employee_id", entities.KindEmployee},
	{"supplier_id", entities.KindSupplier},
}

func changedReferences(cs *changeSet) []repositories.Reference {
	var refs []repositories.Reference
	for _, c := range deviceRefColumns {
		switch v := cs.fields[c.column].(type) {
		case int64:
			refs = append(refs, reference(c.kind, v))
		case *int64:
			refs = appendOptionalRef(refs, c.kind, v)
		}
	}
	return refs
}

func (s *AssetService) Update(ctx context.Context, id int64, in dto.UpdateAssetDTO, actor *entities.Actor) (*entities.Device, error) {
	var result *entities.Device
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.findDevice(ctx, id)
		if err != nil {
			return err
		}

		var tagIDs []int64
		if in.Has("tag_ids", in.TagIDs != nil) {
			var requested []int64
			if in.TagIDs != nil {
				requested = *in.TagIDs
			}
			if tagIDs, err = s.resolveTags(ctx, requested); err != nil {
				return err
			}
		}

		cs, err := diffAsset(*current, in, tagIDs)
		if err != nil {
			return err
		}
		if cs.empty() {
			result = current
			return nil
		}

		if err := s.ensureReferences(ctx, changedReferences(cs)); err != nil {
			return err
		}

		var serial, mac *string
		if cs.changed("serial_number") {
			serial = cs.fields["serial_number"].(*string)
		}
		if cs.changed("mac_address") {
			mac = cs.fields["mac_address"].(*string)
		}
		if err := s.ensureUnique(ctx, id, serial, mac); err != nil {
			return err
		}

		if _, ok := cs.diff["tag_ids"]; ok {
			if err := s.devices.ReplaceTags(ctx, id, tagIDs); err != nil {
				return err
			}
		}
		if err := s.devices.Update(ctx, id, cs.fields); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, entities.ActionUpdate, entities.EntityDevice, id, map[string]any{"changes": cs.diff}, actor); err != nil {
			return err
		}
		result, err = s.findDevice(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении актива", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *AssetService) Delete(ctx context.Context, id int64, actor *entities.Actor) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.findDevice(ctx, id)
		if err != nil {
			return err
		}
		// запись журнала до удаления, пока данные актива доступны
		if err := s.audit.Record(ctx, entities.ActionDelete, entities.EntityDevice, id, map[string]any{
			"inventory_number": current.InventoryNumber,
			"name":             current.Name,
		}, actor); err != nil {
			return err
		}
		return s.devices.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("Ошибка при удалении актива", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Актив удален", zap.Int64("id", id))
	return nil
}

// BulkDelete удаляет найденные активы; отсутствующие id молча пропускаются.
func (s *AssetService) BulkDelete(ctx context.Context, ids []int64, actor *entities.Actor) (int64, []string, error) {
	var deleted int64
	errs := make([]string, 0)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		devices, err := s.devices.FindByIDs(ctx, uniqueSorted(ids))
		if err != nil {
			return err
		}
		found := make([]int64, 0, len(devices))
		for _, d := range devices {
			if err := s.audit.Record(ctx, entities.ActionDelete, entities.EntityDevice, d.ID, map[string]any{
				"inventory_number": d.InventoryNumber,
				"name":             d.Name,
			}, actor); err != nil {
				return err
			}
			found = append(found, d.ID)
		}
		deleted, err = s.devices.BulkDelete(ctx, found)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при массовом удалении активов", zap.Int("requested", len(ids)), zap.Error(err))
		return 0, nil, err
	}
	s.logger.Info("Активы удалены", zap.Int64("deleted", deleted))
	return deleted, errs, nil
}

type bulkField struct {
	column string
	label  string
	repo   repositories.DictionaryRepositoryInterface
	kind   entities.DictionaryKind
	value  *int64
	target *entities.DictionaryItem
	oldOf  func(d entities.Device) *entities.DictionaryItem
}

func (s *AssetService) bulkFields(in dto.BulkUpdateAssetsDTO) []*bulkField {
	all := []*bulkField{
		{column: "status_id", label: "Статус", repo: s.statuses, kind: entities.KindDeviceStatus, value: in.StatusID,
			oldOf: func(d entities.Device) *entities.DictionaryItem { return d.Status }},
		{column: "department_id", label: "Отдел", repo: s.depts, kind: entities.KindDepartment, value: in.DepartmentID,
			oldOf: func(d entities.Device) *entities.DictionaryItem { return d.Department }},
		{column: "location_id", label: "Местоположение", repo: s.locations, kind: entities.KindLocation, value: in.LocationID,
			oldOf: func(d entities.Device) *entities.DictionaryItem { return d.Location }},
	}
	out := make([]*bulkField, 0, len(all))
	for _, f := range all {
		if f.value != nil {
			out = append(out, f)
		}
	}
	return out
}

// bulkDiff - diff одного актива для массового обновления, ключи - русские названия полей.
func bulkDiff(d entities.Device, fields []*bulkField) map[string]any {
	diff := map[string]any{}
	for _, f := range fields {
		old := f.oldOf(d)
		oldLabel := ""
		if old != nil {
			if old.ID == f.target.ID {
				continue
			}
			oldLabel = old.Name
		}
		diff[f.label] = map[string]any{"old": oldLabel, "new": f.target.Name}
	}
	return diff
}

func (s *AssetService) BulkUpdate(ctx context.Context, in dto.BulkUpdateAssetsDTO, actor *entities.Actor) (int64, error) {
	fields := s.bulkFields(in)
	if len(fields) == 0 || len(in.IDs) == 0 {
		return 0, nil
	}

	var updated int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		patch := make(map[string]any, len(fields))
		for _, f := range fields {
			item, err := f.repo.FindByID(ctx, *f.value)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewNotFoundError(f.kind.Meta().Label, *f.value)
				}
				return err
			}
			f.target = item
			patch[f.column] = *f.value
		}

		devices, err := s.devices.FindByIDs(ctx, uniqueSorted(in.IDs))
		if err != nil {
			return err
		}
		found := make([]int64, 0, len(devices))
		for _, d := range devices {
			found = append(found, d.ID)
			diff := bulkDiff(d, fields)
			if len(diff) == 0 {
				continue
			}
			if err := s.audit.Record(ctx, entities.ActionUpdate, entities.EntityDevice, d.ID, map[string]any{
				"diff":   diff,
				"source": bulkSource,
			}, actor); err != nil {
				return err
			}
		}
		updated, err = s.devices.BulkUpdate(ctx, found, patch)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при массовом обновлении активов", zap.Int("requested", len(in.IDs)), zap.Error(err))
		return 0, err
	}
	s.logger.Info("Активы обновлены", zap.Int64("updated", updated))
	return updated, nil
}

func (s *AssetService) DashboardCounts(ctx context.Context) (*entities.AssetDashboard, error) {
	var dash *entities.AssetDashboard
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		dash, err = s.devices.DashboardCounts(ctx)
		return err
	})
	return dash, err
}

func (s *AssetService) SearchTags(ctx context.Context, q string) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		tags, err = s.tags.Search(ctx, strings.TrimSpace(q), tagSearchLimit)
		return err
	})
	return tags, err
}
