package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/types"
)

type passThroughTx struct{ calls int }

func (t *passThroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeChecks struct {
	// existing: "таблица: условие [аргументы]" -> значение уже занято
	existing      map[string]bool
	existsCalls   []string
	deviceCount   int64
	samples       []repositories.DeviceLabel
	tableCounts   map[string]int64
	missing       []repositories.Reference
	lastDeviceSQL string

	// absent: таблицы, в которых не найдётся ни одна ссылка
	absent  map[string]bool
	gotRefs []repositories.Reference
}

func (f *fakeChecks) Exists(_ context.Context, table string, where sq.Sqlizer, _ int64) (bool, error) {
	sql, args, err := where.ToSql()
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s: %s %v", table, sql, args)
	f.existsCalls = append(f.existsCalls, key)
	return f.existing[key], nil
}

func (f *fakeChecks) Count(_ context.Context, table string, _ sq.Sqlizer) (int64, error) {
	return f.tableCounts[table], nil
}

func (f *fakeChecks) CountDevices(_ context.Context, where sq.Sqlizer) (int64, error) {
	sql, _, _ := where.ToSql()
	f.lastDeviceSQL = sql
	return f.deviceCount, nil
}

func (f *fakeChecks) SampleDevices(_ context.Context, _ sq.Sqlizer, limit uint64) ([]repositories.DeviceLabel, error) {
	if uint64(len(f.samples)) > limit {
		return f.samples[:limit], nil
	}
	return f.samples, nil
}

func (f *fakeChecks) MissingReferences(_ context.Context, refs []repositories.Reference) ([]repositories.Reference, error) {
	f.gotRefs = append(f.gotRefs, refs...)
	if f.absent == nil {
		return f.missing, nil
	}
	var missing []repositories.Reference
	for _, ref := range refs {
		if f.absent[ref.Table] {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}

type recordedAction struct {
	action     entities.ActionType
	entityType string
	entityID   int64
	detail     map[string]any
	actor      *entities.Actor
}

// callTrail - общий порядок вызовов журнала и хранилища.
type callTrail struct{ calls []string }

func (t *callTrail) add(format string, args ...any) {
	if t != nil {
		t.calls = append(t.calls, fmt.Sprintf(format, args...))
	}
}

type fakeAudit struct {
	records []recordedAction
	trail   *callTrail
}

func (f *fakeAudit) Record(_ context.Context, action entities.ActionType, entityType string, entityID int64, detail map[string]any, actor *entities.Actor) error {
	f.records = append(f.records, recordedAction{action, entityType, entityID, NormalizeDetail(detail), actor})
	f.trail.add("audit %s %d", action, entityID)
	return nil
}

func (f *fakeAudit) List(context.Context, types.AuditFilter) ([]entities.ActionLog, types.Pagination, error) {
	return nil, types.Pagination{}, nil
}

type memoryAssetTypes struct {
	items  map[int64]*entities.AssetType
	nextID int64
}

func newMemoryAssetTypes() *memoryAssetTypes {
	return &memoryAssetTypes{items: map[int64]*entities.AssetType{}, nextID: 1}
}

func (m *memoryAssetTypes) ListAll(context.Context) ([]entities.AssetType, error) {
	out := make([]entities.AssetType, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *memoryAssetTypes) FindByID(_ context.Context, id int64) (*entities.AssetType, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memoryAssetTypes) FindBySlugOrName(context.Context, string, string) (*entities.AssetType, error) {
	return nil, apperrors.ErrNotFound
}

func (m *memoryAssetTypes) Count(context.Context) (int64, error) { return int64(len(m.items)), nil }

func (m *memoryAssetTypes) Create(_ context.Context, item entities.AssetType) (*entities.AssetType, error) {
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = &item
	cp := item
	return &cp, nil
}

func (m *memoryAssetTypes) Update(_ context.Context, id int64, fields map[string]any) (*entities.AssetType, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			it.Name = v.(string)
		case "prefix":
			it.Prefix = v.(string)
		case "description":
			it.Description = v.(*string)
		}
	}
	cp := *it
	return &cp, nil
}

func (m *memoryAssetTypes) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type fakeDevices struct {
	items     map[int64]*entities.Device
	nextID    int64
	sequences map[string]int
	tags      map[int64][]int64

	// writes - все изменяющие вызовы, в порядке поступления
	writes []string
	trail  *callTrail
}

func newFakeDevices(trail *callTrail) *fakeDevices {
	return &fakeDevices{
		items:     map[int64]*entities.Device{},
		nextID:    1,
		sequences: map[string]int{},
		tags:      map[int64][]int64{},
		trail:     trail,
	}
}

func (f *fakeDevices) put(d entities.Device) *entities.Device {
	if d.ID == 0 {
		d.ID = f.nextID
	}
	if d.ID >= f.nextID {
		f.nextID = d.ID + 1
	}
	f.items[d.ID] = &d
	return &d
}

func (f *fakeDevices) write(format string, args ...any) {
	f.writes = append(f.writes, fmt.Sprintf(format, args...))
	f.trail.add(format, args...)
}

func (f *fakeDevices) FindByID(_ context.Context, id int64) (*entities.Device, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDevices) FindByIDs(_ context.Context, ids []int64) ([]entities.Device, error) {
	out := make([]entities.Device, 0, len(ids))
	for _, id := range ids {
		if d, ok := f.items[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDevices) List(_ context.Context, _ types.Filter) ([]entities.Device, int64, error) {
	ids := make([]int64, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out, _ := f.FindByIDs(context.Background(), ids)
	return out, int64(len(out)), nil
}

func (f *fakeDevices) NextInventorySequence(_ context.Context, prefix string) (int, error) {
	f.sequences[prefix]++
	return f.sequences[prefix], nil
}

func (f *fakeDevices) Create(_ context.Context, d entities.Device) (int64, error) {
	d.ID = 0
	created := f.put(d)
	f.write("devices.create %d", created.ID)
	return created.ID, nil
}

func (f *fakeDevices) apply(d *entities.Device, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "name":
			d.Name = v.(string)
		case "asset_type_id":
			d.AssetTypeID = v.(int64)
		case "status_id":
			d.StatusID = v.(int64)
		case "department_id":
			if id, ok := v.(int64); ok {
				d.DepartmentID = &id
			} else {
				d.DepartmentID = v.(*int64)
			}
		case "location_id":
			if id, ok := v.(int64); ok {
				d.LocationID = &id
			} else {
				d.LocationID = v.(*int64)
			}
		case "serial_number":
			d.SerialNumber = v.(*string)
		}
	}
}

func (f *fakeDevices) Update(_ context.Context, id int64, fields map[string]any) error {
	d, ok := f.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.apply(d, fields)
	f.write("devices.update %d", id)
	return nil
}

func (f *fakeDevices) ReplaceTags(_ context.Context, deviceID int64, tagIDs []int64) error {
	f.tags[deviceID] = slices.Clone(tagIDs)
	if d, ok := f.items[deviceID]; ok {
		d.Tags = d.Tags[:0]
		for _, id := range tagIDs {
			d.Tags = append(d.Tags, entities.Tag{ID: id})
		}
	}
	f.write("devices.tags %d", deviceID)
	return nil
}

func (f *fakeDevices) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.items, id)
	f.write("devices.delete %d", id)
	return nil
}

func (f *fakeDevices) BulkDelete(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := f.items[id]; ok {
			delete(f.items, id)
			n++
		}
	}
	f.write("devices.bulk_delete %v", ids)
	return n, nil
}

func (f *fakeDevices) BulkUpdate(_ context.Context, ids []int64, fields map[string]any) (int64, error) {
	var n int64
	for _, id := range ids {
		if d, ok := f.items[id]; ok {
			f.apply(d, fields)
			n++
		}
	}
	f.write("devices.bulk_update %v", ids)
	return n, nil
}

func (f *fakeDevices) DashboardCounts(context.Context) (*entities.AssetDashboard, error) {
	return &entities.AssetDashboard{Total: int64(len(f.items))}, nil
}

// memoryDictionary - простой справочник в памяти.
type memoryDictionary struct {
	kind   entities.DictionaryKind
	items  map[int64]*entities.DictionaryItem
	nextID int64
}

func newMemoryDictionary(kind entities.DictionaryKind, names ...string) *memoryDictionary {
	m := &memoryDictionary{kind: kind, items: map[int64]*entities.DictionaryItem{}, nextID: 1}
	for _, name := range names {
		_, _ = m.Create(context.Background(), entities.DictionaryItem{Name: name})
	}
	return m
}

func (m *memoryDictionary) Meta() entities.DictionaryMeta { return m.kind.Meta() }

func (m *memoryDictionary) ListAll(ctx context.Context) ([]entities.DictionaryItem, error) {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return m.FindByIDs(ctx, ids)
}

func (m *memoryDictionary) FindByID(_ context.Context, id int64) (*entities.DictionaryItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memoryDictionary) FindByIDs(_ context.Context, ids []int64) ([]entities.DictionaryItem, error) {
	out := make([]entities.DictionaryItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *memoryDictionary) FindBySlugOrName(context.Context, string, string) (*entities.DictionaryItem, error) {
	return nil, apperrors.ErrNotFound
}

func (m *memoryDictionary) Search(ctx context.Context, _ string, limit uint64) ([]entities.DictionaryItem, error) {
	all, _ := m.ListAll(ctx)
	if uint64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memoryDictionary) Count(context.Context) (int64, error) { return int64(len(m.items)), nil }

func (m *memoryDictionary) Create(_ context.Context, item entities.DictionaryItem) (*entities.DictionaryItem, error) {
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = &item
	cp := item
	return &cp, nil
}

func (m *memoryDictionary) Update(_ context.Context, id int64, fields map[string]any) (*entities.DictionaryItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			it.Name = v.(string)
		case "description":
			it.Description = v.(*string)
		}
	}
	cp := *it
	return &cp, nil
}

func (m *memoryDictionary) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
