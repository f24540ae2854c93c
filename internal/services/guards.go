package services

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
)

const deviceSampleLimit = 3

// UniqueRule - одно правило уникальности: простое или составное.
type UniqueRule struct {
	Field string
	Value string
	Where sq.Sqlizer
	// Msg переопределяет стандартное сообщение об ошибке.
	Msg string
}

// EqualRule - правило уникальности по одной колонке.
func EqualRule(column, value string) UniqueRule {
	return UniqueRule{Field: column, Value: value, Where: sq.Eq{column: value}}
}

// DuplicateCheck проверяет правила уникальности запросом до вставки.
type DuplicateCheck struct {
	checks repositories.CheckRepositoryInterface
}

func NewDuplicateCheck(checks repositories.CheckRepositoryInterface) *DuplicateCheck {
	return &DuplicateCheck{checks: checks}
}

// Ensure возвращает DuplicateError по первому нарушенному правилу.
// excludeID исключает обновляемую запись (0 при создании).
func (c *DuplicateCheck) Ensure(ctx context.Context, table, entity string, excludeID int64, rules ...UniqueRule) error {
	for _, rule := range rules {
		exists, err := c.checks.Exists(ctx, table, rule.Where, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewDuplicateError(entity, rule.Field, rule.Value, rule.Msg)
		}
	}
	return nil
}

// DependencyCheck запрещает удаление справочника, на который есть ссылки.
type DependencyCheck struct {
	checks repositories.CheckRepositoryInterface
}

func NewDependencyCheck(checks repositories.CheckRepositoryInterface) *DependencyCheck {
	return &DependencyCheck{checks: checks}
}

// deviceCondition - условие на devices d, выбирающее активы, ссылающиеся на запись.
func deviceCondition(meta entities.DictionaryMeta, id int64) sq.Sqlizer {
	switch {
	case meta.Kind == entities.KindManufacturer:
		return sq.Expr("d.device_model_id IN (SELECT dm.id FROM device_models dm WHERE dm.manufacturer_id = ?)", id)
	case meta.LinkTable != "":
		return sq.Expr(fmt.Sprintf("EXISTS (SELECT 1 FROM %s l WHERE l.device_id = d.id AND l.%s = ?)", meta.LinkTable, meta.LinkColumn), id)
	case meta.DeviceColumn != "":
		return sq.Eq{"d." + meta.DeviceColumn: id}
	default:
		return nil
	}
}

type dependentTable struct {
	table  string
	column string
	kind   string
}

// ссылки не со стороны активов
var otherDependents = map[entities.DictionaryKind][]dependentTable{
	entities.KindAssetType:    {{table: "device_models", column: "asset_type_id", kind: "моделей устройств"}},
	entities.KindManufacturer: {{table: "device_models", column: "manufacturer_id", kind: "моделей устройств"}},
	entities.KindDepartment:   {{table: "employees", column: "department_id", kind: "сотрудников"}},
}

// Ensure возвращает DeletionError, если на запись ссылаются активы или другие справочники.
func (c *DependencyCheck) Ensure(ctx context.Context, kind entities.DictionaryKind, id int64, label string) error {
	meta := kind.Meta()

	if cond := deviceCondition(meta, id); cond != nil {
		count, err := c.checks.CountDevices(ctx, cond)
		if err != nil {
			return err
		}
		if count > 0 {
			samples, err := c.checks.SampleDevices(ctx, cond, deviceSampleLimit)
			if err != nil {
				return err
			}
			return &apperrors.DeletionError{
				Entity:        meta.Label,
				Label:         label,
				DependentKind: "активов",
				Count:         count,
				Samples:       formatDeviceSamples(samples),
			}
		}
	}

	for _, dep := range otherDependents[kind] {
		count, err := c.checks.Count(ctx, dep.table, sq.Eq{dep.column: id})
		if err != nil {
			return err
		}
		if count > 0 {
			return &apperrors.DeletionError{Entity: meta.Label, Label: label, DependentKind: dep.kind, Count: count}
		}
	}
	return nil
}

func formatDeviceSamples(samples []repositories.DeviceLabel) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, fmt.Sprintf("'%s' (инв. %s)", s.Name, s.InventoryNumber))
	}
	return out
}
