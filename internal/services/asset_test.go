package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

func TestFormatInventoryNumber(t *testing.T) {
	day := time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "PRN-20250115-", InventoryPrefix("prn", day))
	assert.Equal(t, "PRN-20250115-001", FormatInventoryNumber("PRN", day, 1))
	assert.Equal(t, "PRN-20250115-042", FormatInventoryNumber("PRN", day, 42))
	assert.Equal(t, "PRN-20250115-1000", FormatInventoryNumber("PRN", day, 1000))
}

func TestFormatInventoryNumber_UsesUTCDate(t *testing.T) {
	almaty := time.FixedZone("UTC+5", 5*60*60)
	day := time.Date(2025, 1, 16, 2, 0, 0, 0, almaty)

	assert.Equal(t, "NB-20250115-007", FormatInventoryNumber("NB", day, 7))
}

func sampleDevice() entities.Device {
	purchase := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return entities.Device{
		ID:              10,
		Name:            "HP LaserJet",
		InventoryNumber: "PRN-20250115-001",
		Source:          entities.DefaultDeviceSource,
		PurchaseDate:    &purchase,
		Price:           decimal.NewNullDecimal(decimal.RequireFromString("100.00")),
		AssetTypeID:     1,
		DeviceModelID:   2,
		StatusID:        3,
		DepartmentID:    utils.ToPtr(int64(4)),
		Tags:            []entities.Tag{{ID: 9}, {ID: 5}},
	}
}

func TestDiffAsset_PriceChange(t *testing.T) {
	price := decimal.RequireFromString("150.5")
	in := dto.UpdateAssetDTO{Price: &price}

	cs, err := diffAsset(sampleDevice(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"price": map[string]any{"old": "100.00", "new": "150.50"},
	}, cs.diff)
	assert.Contains(t, cs.fields, "price")
}

func TestDiffAsset_SameValuesProduceNoDiff(t *testing.T) {
	price := decimal.RequireFromString("100")
	purchase := dto.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	in := dto.UpdateAssetDTO{
		Name:         utils.ToPtr("HP LaserJet"),
		Price:        &price,
		PurchaseDate: &purchase,
		DepartmentID: utils.ToPtr(int64(4)),
		TagIDs:       &[]int64{5, 9},
	}

	cs, err := diffAsset(sampleDevice(), in, []int64{5, 9})
	require.NoError(t, err)
	assert.True(t, cs.empty())
}

func TestDiffAsset_TagsComparedAsSets(t *testing.T) {
	cs, err := diffAsset(sampleDevice(), dto.UpdateAssetDTO{TagIDs: &[]int64{5}}, []int64{5})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"old": []int64{5, 9}, "new": []int64{5}}, cs.diff["tag_ids"])
	assert.NotContains(t, cs.fields, "tag_ids")
}

func TestDiffAsset_ExplicitNullClearsOptionalField(t *testing.T) {
	in := dto.UpdateAssetDTO{Provided: map[string]bool{"department_id": true, "purchase_date": true}}

	cs, err := diffAsset(sampleDevice(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"old": int64(4), "new": nil}, cs.diff["department_id"])
	assert.Equal(t, map[string]any{"old": "2024-03-01", "new": nil}, cs.diff["purchase_date"])
}

func TestDiffAsset_RequiredFieldCannotBeNull(t *testing.T) {
	in := dto.UpdateAssetDTO{Provided: map[string]bool{"status_id": true}}

	_, err := diffAsset(sampleDevice(), in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status_id")
}

func TestDiffAsset_UnprovidedFieldsIgnored(t *testing.T) {
	in := dto.UpdateAssetDTO{
		Name:     utils.ToPtr("Новое имя"),
		Notes:    utils.ToPtr("не передано"),
		Provided: map[string]bool{"name": true},
	}

	cs, err := diffAsset(sampleDevice(), in, nil)
	require.NoError(t, err)
	assert.Len(t, cs.diff, 1)
	assert.Equal(t, "Новое имя", cs.fields["name"])
}

func TestBulkDiff(t *testing.T) {
	d := sampleDevice()
	d.Status = &entities.DeviceStatus{ID: 3, Name: "На складе"}

	fields := []*bulkField{
		{column: "status_id", label: "Статус", target: &entities.DictionaryItem{ID: 4, Name: "В эксплуатации"},
			oldOf: func(d entities.Device) *entities.DictionaryItem { return d.Status }},
		{column: "location_id", label: "Местоположение", target: &entities.DictionaryItem{ID: 8, Name: "Склад"},
			oldOf: func(d entities.Device) *entities.DictionaryItem { return d.Location }},
	}

	assert.Equal(t, map[string]any{
		"Статус":         map[string]any{"old": "На складе", "new": "В эксплуатации"},
		"Местоположение": map[string]any{"old": "", "new": "Склад"},
	}, bulkDiff(d, fields))

	d.Status.ID = 4
	d.Location = &entities.Location{ID: 8, Name: "Склад"}
	assert.Empty(t, bulkDiff(d, fields))
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []int64{1, 3, 7}, uniqueSorted([]int64{7, 1, 3, 7, 1}))
	assert.Empty(t, uniqueSorted(nil))
}

var (
	_ repositories.DeviceRepositoryInterface     = (*fakeDevices)(nil)
	_ repositories.DictionaryRepositoryInterface = (*memoryDictionary)(nil)
)

type assetFixture struct {
	svc       *AssetService
	devices   *fakeDevices
	types     *memoryAssetTypes
	tags      *memoryDictionary
	statuses  *memoryDictionary
	locations *memoryDictionary
	checks    *fakeChecks
	audit     *fakeAudit
	tx        *passThroughTx
	trail     *callTrail
	laptops   *entities.AssetType
}

func newAssetFixture(t *testing.T) *assetFixture {
	t.Helper()
	trail := &callTrail{}
	f := &assetFixture{
		devices:   newFakeDevices(trail),
		types:     newMemoryAssetTypes(),
		tags:      newMemoryDictionary(entities.KindTag, "офис", "резерв"),
		statuses:  newMemoryDictionary(entities.KindDeviceStatus, "На складе", "В эксплуатации"),
		locations: newMemoryDictionary(entities.KindLocation, "Склад", "Офис 301"),
		checks:    &fakeChecks{existing: map[string]bool{}},
		audit:     &fakeAudit{trail: trail},
		tx:        &passThroughTx{},
		trail:     trail,
	}
	laptops, err := f.types.Create(context.Background(), entities.AssetType{Name: "Ноутбуки", Prefix: "NB"})
	require.NoError(t, err)
	f.laptops = laptops

	f.svc = NewAssetService(f.tx, AssetRepositories{
		Devices:     f.devices,
		AssetTypes:  f.types,
		Tags:        f.tags,
		Statuses:    f.statuses,
		Departments: newMemoryDictionary(entities.KindDepartment, "ИТ"),
		Locations:   f.locations,
		Checks:      f.checks,
	}, f.audit, fixedClock, zap.NewNop())
	return f
}

// stock кладёт в хранилище актив "на складе".
func (f *assetFixture) stock(id int64, name string) *entities.Device {
	return f.devices.put(entities.Device{
		ID:              id,
		Name:            name,
		InventoryNumber: FormatInventoryNumber("NB", fixedNow, int(id)),
		Source:          entities.DefaultDeviceSource,
		AssetTypeID:     f.laptops.ID,
		DeviceModelID:   1,
		StatusID:        1,
		Status:          &entities.DeviceStatus{ID: 1, Name: "На складе"},
	})
}

func (f *assetFixture) createInput(name string) dto.CreateAssetDTO {
	return dto.CreateAssetDTO{Name: name, AssetTypeID: f.laptops.ID, DeviceModelID: 1, StatusID: 1}
}

func TestAssetService_CreateNumbersDeviceAndDropsUnknownTags(t *testing.T) {
	f := newAssetFixture(t)
	in := f.createInput("ThinkPad T14")
	in.TagIDs = []int64{2, 404, 1, 2}

	created, err := f.svc.Create(context.Background(), in, testActor)
	require.NoError(t, err)

	assert.Equal(t, "NB-20250115-001", created.InventoryNumber)
	assert.Equal(t, []int64{1, 2}, f.devices.tags[created.ID])
	assert.Equal(t, []string{"devices.create 1", "devices.tags 1"}, f.devices.writes)

	require.Len(t, f.audit.records, 1)
	rec := f.audit.records[0]
	assert.Equal(t, entities.ActionCreate, rec.action)
	assert.Equal(t, created.ID, rec.entityID)
	assert.Equal(t, map[string]any{"inventory_number": "NB-20250115-001", "name": "ThinkPad T14"}, rec.detail)

	second, err := f.svc.Create(context.Background(), f.createInput("ThinkPad T16"), testActor)
	require.NoError(t, err)
	assert.Equal(t, "NB-20250115-002", second.InventoryNumber)
}

func TestAssetService_CreateUnknownAssetType(t *testing.T) {
	f := newAssetFixture(t)
	in := f.createInput("ThinkPad")
	in.AssetTypeID = 404

	_, err := f.svc.Create(context.Background(), in, testActor)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Тип актива", nf.Entity)
	assert.EqualValues(t, 404, nf.ID)
	assert.Empty(t, f.devices.writes)
	assert.Empty(t, f.audit.records)
}

func TestAssetService_UpdateRecordsChangedFieldsOnly(t *testing.T) {
	f := newAssetFixture(t)
	d := f.stock(10, "A")
	d.Price = decimal.NewNullDecimal(decimal.NewFromInt(100))

	price := decimal.RequireFromString("100.00")
	updated, err := f.svc.Update(context.Background(), 10, dto.UpdateAssetDTO{
		Name:  utils.ToPtr("B"),
		Price: &price,
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, []string{"devices.update 10"}, f.devices.writes)
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, entities.ActionUpdate, f.audit.records[0].action)
	assert.Equal(t, map[string]any{
		"changes": map[string]any{"name": map[string]any{"old": "A", "new": "B"}},
	}, f.audit.records[0].detail)
}

func TestAssetService_UpdateWithCurrentStateWritesNothing(t *testing.T) {
	f := newAssetFixture(t)
	d := f.stock(10, "HP LaserJet")
	d.LocationID = utils.ToPtr(int64(2))

	current, err := f.svc.Update(context.Background(), 10, dto.UpdateAssetDTO{
		Name:        utils.ToPtr("HP LaserJet"),
		StatusID:    utils.ToPtr(int64(1)),
		LocationID:  utils.ToPtr(int64(2)),
		AssetTypeID: utils.ToPtr(f.laptops.ID),
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, "HP LaserJet", current.Name)
	assert.Empty(t, f.devices.writes)
	assert.Empty(t, f.audit.records)
	assert.Empty(t, f.checks.gotRefs)
}

func TestAssetService_UpdateReportsFirstMissingReference(t *testing.T) {
	f := newAssetFixture(t)
	f.stock(10, "HP LaserJet")
	f.checks.absent = map[string]bool{"asset_types": true, "device_statuses": true, "locations": true}

	for range 20 {
		f.checks.gotRefs = nil
		_, err := f.svc.Update(context.Background(), 10, dto.UpdateAssetDTO{
			LocationID:  utils.ToPtr(int64(55)),
			StatusID:    utils.ToPtr(int64(88)),
			AssetTypeID: utils.ToPtr(int64(77)),
		}, testActor)

		var nf *apperrors.NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "Тип актива", nf.Entity)
		require.EqualValues(t, 77, nf.ID)

		tables := make([]string, 0, len(f.checks.gotRefs))
		for _, ref := range f.checks.gotRefs {
			tables = append(tables, ref.Table)
		}
		require.Equal(t, []string{"asset_types", "device_statuses", "locations"}, tables)
	}
	assert.Empty(t, f.devices.writes)
	assert.Empty(t, f.audit.records)
}

func TestAssetService_ChangingTypeKeepsInventoryNumber(t *testing.T) {
	f := newAssetFixture(t)
	d := f.stock(10, "Dell U2419")
	monitors, err := f.types.Create(context.Background(), entities.AssetType{Name: "Мониторы", Prefix: "MON"})
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), 10, dto.UpdateAssetDTO{AssetTypeID: &monitors.ID}, testActor)
	require.NoError(t, err)

	assert.Equal(t, monitors.ID, updated.AssetTypeID)
	assert.Equal(t, d.InventoryNumber, updated.InventoryNumber)
	assert.Empty(t, f.devices.sequences)
}

func TestAssetService_DeleteLogsBeforeRemoval(t *testing.T) {
	f := newAssetFixture(t)
	d := f.stock(10, "HP LaserJet")

	require.NoError(t, f.svc.Delete(context.Background(), 10, testActor))

	assert.Equal(t, []string{"audit delete 10", "devices.delete 10"}, f.trail.calls)
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, map[string]any{"inventory_number": d.InventoryNumber, "name": "HP LaserJet"}, f.audit.records[0].detail)
	assert.NotContains(t, f.devices.items, int64(10))
}

func TestAssetService_DeleteMissing(t *testing.T) {
	f := newAssetFixture(t)

	err := f.svc.Delete(context.Background(), 404, testActor)

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, f.trail.calls)
}

func TestAssetService_BulkDeleteSkipsMissingIDs(t *testing.T) {
	f := newAssetFixture(t)
	f.stock(1, "A")
	f.stock(2, "B")
	f.stock(3, "C")

	deleted, errs, err := f.svc.BulkDelete(context.Background(), []int64{2, 404, 1, 2}, testActor)
	require.NoError(t, err)

	assert.EqualValues(t, 2, deleted)
	assert.Empty(t, errs)
	assert.NotNil(t, errs)
	assert.Equal(t, []string{"audit delete 1", "audit delete 2", "devices.bulk_delete [1 2]"}, f.trail.calls)
	assert.Contains(t, f.devices.items, int64(3))
}

func TestAssetService_BulkUpdateWithoutFieldsWritesNothing(t *testing.T) {
	f := newAssetFixture(t)
	f.stock(1, "A")

	updated, err := f.svc.BulkUpdate(context.Background(), dto.BulkUpdateAssetsDTO{IDs: []int64{1}}, testActor)
	require.NoError(t, err)

	assert.Zero(t, updated)
	assert.Empty(t, f.audit.records)
	assert.Empty(t, f.devices.writes)
	assert.Zero(t, f.tx.calls)
}

func TestAssetService_BulkUpdateLogsOnlyChangedDevices(t *testing.T) {
	f := newAssetFixture(t)
	f.stock(1, "A")
	inUse := f.stock(2, "B")
	inUse.StatusID = 2
	inUse.Status = &entities.DeviceStatus{ID: 2, Name: "В эксплуатации"}

	updated, err := f.svc.BulkUpdate(context.Background(), dto.BulkUpdateAssetsDTO{
		IDs:      []int64{1, 2, 404},
		StatusID: utils.ToPtr(int64(2)),
	}, testActor)
	require.NoError(t, err)

	assert.EqualValues(t, 2, updated)
	assert.Equal(t, []string{"devices.bulk_update [1 2]"}, f.devices.writes)
	require.Len(t, f.audit.records, 1)
	rec := f.audit.records[0]
	assert.EqualValues(t, 1, rec.entityID)
	assert.Equal(t, map[string]any{
		"diff":   map[string]any{"Статус": map[string]any{"old": "На складе", "new": "В эксплуатации"}},
		"source": "bulk_update",
	}, rec.detail)
}

func TestAssetService_BulkUpdateUnknownTarget(t *testing.T) {
	f := newAssetFixture(t)
	f.stock(1, "A")

	_, err := f.svc.BulkUpdate(context.Background(), dto.BulkUpdateAssetsDTO{
		IDs:        []int64{1},
		LocationID: utils.ToPtr(int64(404)),
	}, testActor)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Местоположение", nf.Entity)
	assert.Empty(t, f.devices.writes)
	assert.Empty(t, f.audit.records)
}
