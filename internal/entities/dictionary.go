package entities

import (
	"fmt"

	"it-inventory/pkg/types"
)

// DictionaryKind - вид справочника.
type DictionaryKind string

const (
	KindAssetType    DictionaryKind = "asset_types"
	KindDeviceModel  DictionaryKind = "device_models"
	KindDeviceStatus DictionaryKind = "device_statuses"
	KindManufacturer DictionaryKind = "manufacturers"
	KindDepartment   DictionaryKind = "departments"
	KindLocation     DictionaryKind = "locations"
	KindEmployee     DictionaryKind = "employees"
	KindSupplier     DictionaryKind = "suppliers"
	KindTag          DictionaryKind = "tags"
)

// DictionaryMeta описывает хранение справочника и его связь с активами.
type DictionaryMeta struct {
	Kind       DictionaryKind
	Table      string
	EntityType string // имя сущности в журнале действий
	Label      string
	// DeviceColumn - колонка в devices, ссылающаяся на справочник.
	DeviceColumn string
	// LinkTable/LinkColumn задаются, если активы ссылаются через таблицу связей.
	LinkTable      string
	LinkColumn     string
	HasSlug        bool
	HasDescription bool
}

var dictionaryMetas = map[DictionaryKind]DictionaryMeta{
	KindAssetType:    {Kind: KindAssetType, Table: "asset_types", EntityType: "AssetType", Label: "Тип актива", DeviceColumn: "asset_type_id", HasSlug: true, HasDescription: true},
	KindDeviceModel:  {Kind: KindDeviceModel, Table: "device_models", EntityType: "DeviceModel", Label: "Модель устройства", DeviceColumn: "device_model_id", HasDescription: true},
	KindDeviceStatus: {Kind: KindDeviceStatus, Table: "device_statuses", EntityType: "DeviceStatus", Label: "Статус", DeviceColumn: "status_id", HasSlug: true, HasDescription: true},
	KindManufacturer: {Kind: KindManufacturer, Table: "manufacturers", EntityType: "Manufacturer", Label: "Производитель", HasDescription: true},
	KindDepartment:   {Kind: KindDepartment, Table: "departments", EntityType: "Department", Label: "Отдел", DeviceColumn: "department_id", HasSlug: true, HasDescription: true},
	KindLocation:     {Kind: KindLocation, Table: "locations", EntityType: "Location", Label: "Местоположение", DeviceColumn: "location_id", HasSlug: true, HasDescription: true},
	KindEmployee:     {Kind: KindEmployee, Table: "employees", EntityType: "Employee", Label: "Сотрудник", DeviceColumn: "employee_id"},
	KindSupplier:     {Kind: KindSupplier, Table: "suppliers", EntityType: "Supplier", Label: "Поставщик", DeviceColumn: "supplier_id", HasDescription: true},
	KindTag:          {Kind: KindTag, Table: "tags", EntityType: "Tag", Label: "Тег", LinkTable: "device_tags", LinkColumn: "tag_id"},
}

var dictionaryOrder = []DictionaryKind{
	KindAssetType, KindDeviceModel, KindDeviceStatus, KindManufacturer,
	KindDepartment, KindLocation, KindEmployee, KindSupplier, KindTag,
}

func (k DictionaryKind) Meta() DictionaryMeta {
	return dictionaryMetas[k]
}

func (k DictionaryKind) Valid() bool {
	_, ok := dictionaryMetas[k]
	return ok
}

func ParseDictionaryKind(s string) (DictionaryKind, error) {
	k := DictionaryKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("неизвестный справочник: %s", s)
	}
	return k, nil
}

func AllDictionaryKinds() []DictionaryKind {
	out := make([]DictionaryKind, len(dictionaryOrder))
	copy(out, dictionaryOrder)
	return out
}

// DictionaryItem - запись простого справочника.
type DictionaryItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`

	types.BaseEntity
}

type (
	Manufacturer = DictionaryItem
	DeviceStatus = DictionaryItem
	Department   = DictionaryItem
	Location     = DictionaryItem
	Supplier     = DictionaryItem
	Tag          = DictionaryItem
)
