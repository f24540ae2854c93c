package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/types"
)

const deviceTable = "devices"

var deviceSelectColumns = []string{
	"d.id", "d.name", "d.inventory_number", "d.serial_number", "d.mac_address", "d.ip_address", "d.notes",
	"d.source", "d.purchase_date", "d.warranty_end_date", "d.price", "d.expected_lifespan_years",
	"d.current_wear_percentage", "d.attributes",
	"d.asset_type_id", "d.device_model_id", "d.status_id", "d.department_id", "d.location_id",
	"d.employee_id", "d.supplier_id", "d.created_at", "d.updated_at",
	"ast.id", "ast.name", "ast.prefix",
	"dm.id", "dm.name", "dm.manufacturer_id", "dm.asset_type_id",
	"m.id", "m.name",
	"ds.id", "ds.name", "ds.slug",
	"dep.id", "dep.name",
	"loc.id", "loc.name",
	"e.id", "e.last_name", "e.first_name", "e.patronymic",
	"sup.id", "sup.name",
}

// ключ сортировки из query string -> выражение ORDER BY
var deviceSortColumns = map[string]string{
	"id":                "d.id",
	"name":              "d.name",
	"inventory_number":  "d.inventory_number",
	"asset_type":        "ast.name",
	"asset_type.name":   "ast.name",
	"device_model":      "dm.name",
	"device_model.name": "dm.name",
	"status":            "ds.name",
	"status.name":       "ds.name",
	"location":          "loc.name",
	"location.name":     "loc.name",
	"updated_at":        "d.updated_at",
	"tags":              "(SELECT MIN(t.name) FROM device_tags dt JOIN tags t ON t.id = dt.tag_id WHERE dt.device_id = d.id)",
}

// фильтры на равенство; manufacturer_id идёт через модель
var deviceFilterColumns = map[string]string{
	"asset_type_id":   "d.asset_type_id",
	"status_id":       "d.status_id",
	"department_id":   "d.department_id",
	"location_id":     "d.location_id",
	"manufacturer_id": "dm.manufacturer_id",
}

var deviceSearchColumns = []string{"d.name", "d.inventory_number", "d.serial_number", "d.mac_address"}

type DeviceRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*entities.Device, error)
	FindByIDs(ctx context.Context, ids []int64) ([]entities.Device, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Device, int64, error)
	// NextInventorySequence блокирует префикс до конца транзакции и возвращает следующий номер.
	NextInventorySequence(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, device entities.Device) (int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	ReplaceTags(ctx context.Context, deviceID int64, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (int64, error)
	BulkUpdate(ctx context.Context, ids []int64, fields map[string]any) (int64, error)
	DashboardCounts(ctx context.Context) (*entities.AssetDashboard, error)
}

type DeviceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDeviceRepository(storage *pgxpool.Pool, logger *zap.Logger) DeviceRepositoryInterface {
	return &DeviceRepository{storage: storage, logger: logger}
}

func (r *DeviceRepository) baseSelect(columns ...string) sq.SelectBuilder {
	return sq.Select(columns...).
		From(deviceTable + " d").
		Join("asset_types ast ON ast.id = d.asset_type_id").
		Join("device_models dm ON dm.id = d.device_model_id").
		Join("manufacturers m ON m.id = dm.manufacturer_id").
		Join("device_statuses ds ON ds.id = d.status_id").
		LeftJoin("departments dep ON dep.id = d.department_id").
		LeftJoin("locations loc ON loc.id = d.location_id").
		LeftJoin("employees e ON e.id = d.employee_id").
		LeftJoin("suppliers sup ON sup.id = d.supplier_id").
		PlaceholderFormat(sq.Dollar)
}

func scanDevice(row pgx.Row) (*entities.Device, error) {
	var (
		d      entities.Device
		at     entities.AssetType
		model  entities.DeviceModel
		man    entities.Manufacturer
		status entities.DeviceStatus

		depID, locID, empID, supID       *int64
		depName, locName, supName        *string
		empLast, empFirst, empPatronymic *string
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.InventoryNumber, &d.SerialNumber, &d.MACAddress, &d.IPAddress, &d.Notes,
		&d.Source, &d.PurchaseDate, &d.WarrantyEndDate, &d.Price, &d.ExpectedLifespanYears,
		&d.CurrentWearPercentage, &d.Attributes,
		&d.AssetTypeID, &d.DeviceModelID, &d.StatusID, &d.DepartmentID, &d.LocationID,
		&d.EmployeeID, &d.SupplierID, &d.CreatedAt, &d.UpdatedAt,
		&at.ID, &at.Name, &at.Prefix,
		&model.ID, &model.Name, &model.ManufacturerID, &model.AssetTypeID,
		&man.ID, &man.Name,
		&status.ID, &status.Name, &status.Slug,
		&depID, &depName,
		&locID, &locName,
		&empID, &empLast, &empFirst, &empPatronymic,
		&supID, &supName,
	)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования актива", err)
	}

	model.Manufacturer = &man
	d.AssetType = &at
	d.DeviceModel = &model
	d.Status = &status
	if depID != nil {
		d.Department = &entities.Department{ID: *depID, Name: deref(depName)}
	}
	if locID != nil {
		d.Location = &entities.Location{ID: *locID, Name: deref(locName)}
	}
	if empID != nil {
		d.Employee = &entities.Employee{ID: *empID, LastName: deref(empLast), FirstName: deref(empFirst), Patronymic: empPatronymic}
	}
	if supID != nil {
		d.Supplier = &entities.Supplier{ID: *supID, Name: deref(supName)}
	}
	d.Tags = []entities.Tag{}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *DeviceRepository) queryDevices(ctx context.Context, b sq.SelectBuilder) ([]entities.Device, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("ошибка получения активов", err)
	}
	defer rows.Close()

	devices := make([]entities.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// attachTags загружает теги всех активов одним запросом.
func (r *DeviceRepository) attachTags(ctx context.Context, devices []entities.Device) error {
	if len(devices) == 0 {
		return nil
	}
	ids := make([]int64, len(devices))
	index := make(map[int64]int, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
		index[d.ID] = i
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, `
		SELECT dt.device_id, t.id, t.name, t.created_at, t.updated_at
		FROM device_tags dt
			JOIN tags t ON t.id = dt.tag_id
		WHERE dt.device_id = ANY($1)
		ORDER BY t.name`, ids)
	if err != nil {
		return mapStorageError("ошибка получения тегов активов", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			deviceID int64
			tag      entities.Tag
		)
		if err := rows.Scan(&deviceID, &tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return fmt.Errorf("ошибка сканирования тега: %w", err)
		}
		i := index[deviceID]
		devices[i].Tags = append(devices[i].Tags, tag)
	}
	return rows.Err()
}

func (r *DeviceRepository) FindByID(ctx context.Context, id int64) (*entities.Device, error) {
	devices, err := r.queryDevices(ctx, r.baseSelect(deviceSelectColumns...).Where(sq.Eq{"d.id": id}))
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &devices[0], nil
}

func (r *DeviceRepository) FindByIDs(ctx context.Context, ids []int64) ([]entities.Device, error) {
	if len(ids) == 0 {
		return []entities.Device{}, nil
	}
	return r.queryDevices(ctx, r.baseSelect(deviceSelectColumns...).Where(sq.Eq{"d.id": ids}).OrderBy("d.id"))
}

func applyDeviceFilter(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		or := make(sq.Or, 0, len(deviceSearchColumns))
		for _, col := range deviceSearchColumns {
			or = append(or, sq.ILike{col: pattern})
		}
		b = b.Where(or)
	}
	for key, value := range filter.Filter {
		if col, ok := deviceFilterColumns[key]; ok {
			b = b.Where(sq.Eq{col: value})
		}
	}
	return b
}

func (r *DeviceRepository) List(ctx context.Context, filter types.Filter) ([]entities.Device, int64, error) {
	countQuery, countArgs, err := applyDeviceFilter(r.baseSelect("COUNT(*)"), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapStorageError("ошибка подсчета активов", err)
	}
	if total == 0 {
		return []entities.Device{}, 0, nil
	}

	b := applyDeviceFilter(r.baseSelect(deviceSelectColumns...), filter)
	if col, ok := deviceSortColumns[filter.SortBy]; ok {
		direction := "ASC"
		if strings.EqualFold(filter.SortOrder, "desc") {
			direction = "DESC"
		}
		b = b.OrderBy(col+" "+direction+" NULLS LAST", "d.id DESC")
	} else {
		b = b.OrderBy("d.id DESC")
	}
	if filter.PageSize > 0 {
		b = b.Limit(uint64(filter.PageSize)).Offset(uint64(filter.Offset()))
	}

	devices, err := r.queryDevices(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

func (r *DeviceRepository) NextInventorySequence(ctx context.Context, prefix string) (int, error) {
	db := dbFrom(ctx, r.storage)
	if _, err := db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", prefix); err != nil {
		return 0, mapStorageError("ошибка блокировки инвентарного префикса", err)
	}
	var last int
	err := db.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(inventory_number FROM '[0-9]+$')::int), 0)
		FROM devices
		WHERE inventory_number LIKE $1`, escapeLike(prefix)+"%").Scan(&last)
	if err != nil {
		return 0, mapStorageError("ошибка чтения последнего инвентарного номера", err)
	}
	return last + 1, nil
}

func (r *DeviceRepository) Create(ctx context.Context, d entities.Device) (int64, error) {
	source := d.Source
	if source == "" {
		source = entities.DefaultDeviceSource
	}
	query, args, err := sq.Insert(deviceTable).
		PlaceholderFormat(sq.Dollar).
		Columns(
			"name", "inventory_number", "serial_number", "mac_address", "ip_address", "notes", "source",
			"purchase_date", "warranty_end_date", "price", "expected_lifespan_years", "current_wear_percentage",
			"attributes", "asset_type_id", "device_model_id", "status_id", "department_id", "location_id",
			"employee_id", "supplier_id",
		).
		Values(
			d.Name, d.InventoryNumber, d.SerialNumber, d.MACAddress, d.IPAddress, d.Notes, source,
			d.PurchaseDate, d.WarrantyEndDate, d.Price, d.ExpectedLifespanYears, d.CurrentWearPercentage,
			d.Attributes, d.AssetTypeID, d.DeviceModelID, d.StatusID, d.DepartmentID, d.LocationID,
			d.EmployeeID, d.SupplierID,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapStorageError("ошибка создания актива", err)
	}
	return id, nil
}

func (r *DeviceRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	query, args, err := sq.Update(deviceTable).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := dbFrom(ctx, r.storage).Exec(ctx, query, args...)
	if err != nil {
		return mapStorageError("ошибка обновления актива", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReplaceTags заменяет набор тегов актива; повторы схлопываются.
func (r *DeviceRepository) ReplaceTags(ctx context.Context, deviceID int64, tagIDs []int64) error {
	db := dbFrom(ctx, r.storage)
	if _, err := db.Exec(ctx, "DELETE FROM device_tags WHERE device_id = $1", deviceID); err != nil {
		return mapStorageError("ошибка очистки тегов актива", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO device_tags (device_id, tag_id)
		SELECT $1, t FROM unnest($2::bigint[]) AS t
		ON CONFLICT DO NOTHING`, deviceID, tagIDs)
	if err != nil {
		return mapStorageError("ошибка привязки тегов к активу", err)
	}
	// связь меняет актив, поэтому двигаем updated_at
	if _, err := db.Exec(ctx, "UPDATE devices SET updated_at = NOW() WHERE id = $1", deviceID); err != nil {
		return mapStorageError("ошибка обновления актива", err)
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id int64) error {
	result, err := dbFrom(ctx, r.storage).Exec(ctx, "DELETE FROM devices WHERE id = $1", id)
	if err != nil {
		return mapStorageError("ошибка удаления актива", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DeviceRepository) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := dbFrom(ctx, r.storage).Exec(ctx, "DELETE FROM devices WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, mapStorageError("ошибка массового удаления активов", err)
	}
	return result.RowsAffected(), nil
}

func (r *DeviceRepository) BulkUpdate(ctx context.Context, ids []int64, fields map[string]any) (int64, error) {
	if len(ids) == 0 || len(fields) == 0 {
		return 0, nil
	}
	query, args, err := sq.Update(deviceTable).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	result, err := dbFrom(ctx, r.storage).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapStorageError("ошибка массового обновления активов", err)
	}
	return result.RowsAffected(), nil
}

func (r *DeviceRepository) labelCounts(ctx context.Context, query string) ([]entities.LabelCount, error) {
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query)
	if err != nil {
		return nil, mapStorageError("ошибка подсчета активов по справочнику", err)
	}
	defer rows.Close()

	out := make([]entities.LabelCount, 0)
	for rows.Next() {
		var lc entities.LabelCount
		if err := rows.Scan(&lc.ID, &lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счетчика: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func (r *DeviceRepository) DashboardCounts(ctx context.Context) (*entities.AssetDashboard, error) {
	start := time.Now()
	var dash entities.AssetDashboard
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, "SELECT COUNT(*) FROM devices").Scan(&dash.Total); err != nil {
		return nil, mapStorageError("ошибка подсчета активов", err)
	}

	var err error
	dash.ByType, err = r.labelCounts(ctx, `
		SELECT ast.id, ast.name, COUNT(d.id)
		FROM asset_types ast
			LEFT JOIN devices d ON d.asset_type_id = ast.id
		GROUP BY ast.id, ast.name
		ORDER BY ast.name`)
	if err != nil {
		return nil, err
	}
	dash.ByStatus, err = r.labelCounts(ctx, `
		SELECT ds.id, ds.name, COUNT(d.id)
		FROM device_statuses ds
			LEFT JOIN devices d ON d.status_id = ds.id
		GROUP BY ds.id, ds.name
		ORDER BY ds.name`)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Счетчики активов посчитаны", zap.Duration("duration", time.Since(start)))
	return &dash, nil
}
