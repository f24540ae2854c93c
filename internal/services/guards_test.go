package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
)

func TestDuplicateCheck_FirstViolatedRuleWins(t *testing.T) {
	checks := &fakeChecks{existing: map[string]bool{
		"asset_types: UPPER(prefix) = ? [PRN]": true,
	}}
	err := NewDuplicateCheck(checks).Ensure(context.Background(), "asset_types", "Тип актива", 0,
		EqualRule("name", "Принтеры"), prefixRule("PRN"))

	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "prefix", dup.Field)
	assert.Contains(t, err.Error(), "PRN")
	assert.Len(t, checks.existsCalls, 2)
}

func TestDuplicateCheck_NoRules(t *testing.T) {
	checks := &fakeChecks{}
	require.NoError(t, NewDuplicateCheck(checks).Ensure(context.Background(), "devices", "Актив", 0))
	assert.Empty(t, checks.existsCalls)
}

func TestDependencyCheck_DeviceReferences(t *testing.T) {
	checks := &fakeChecks{
		deviceCount: 5,
		samples: []repositories.DeviceLabel{
			{Name: "HP LaserJet", InventoryNumber: "PRN-20250115-001"},
			{Name: "Canon", InventoryNumber: "PRN-20250115-002"},
			{Name: "Epson", InventoryNumber: "PRN-20250115-003"},
		},
	}
	err := NewDependencyCheck(checks).Ensure(context.Background(), entities.KindDeviceStatus, 7, "В эксплуатации")

	var del *apperrors.DeletionError
	require.True(t, errors.As(err, &del))
	assert.Equal(t, int64(5), del.Count)
	assert.Equal(t, "'HP LaserJet' (инв. PRN-20250115-001)", del.Samples[0])
	assert.Contains(t, err.Error(), "и еще 2 активов")
	assert.Equal(t, "d.status_id = ?", checks.lastDeviceSQL)
}

func TestDependencyCheck_ManufacturerGoesThroughModels(t *testing.T) {
	checks := &fakeChecks{tableCounts: map[string]int64{"device_models": 2}}
	err := NewDependencyCheck(checks).Ensure(context.Background(), entities.KindManufacturer, 3, "HP")

	assert.Contains(t, checks.lastDeviceSQL, "device_models")
	var del *apperrors.DeletionError
	require.True(t, errors.As(err, &del))
	assert.Equal(t, int64(2), del.Count)
	assert.Empty(t, del.Samples)
}

func TestDependencyCheck_TagUsesLinkTable(t *testing.T) {
	checks := &fakeChecks{}
	require.NoError(t, NewDependencyCheck(checks).Ensure(context.Background(), entities.KindTag, 1, "сеть"))
	assert.Contains(t, checks.lastDeviceSQL, "device_tags")
}

func TestDependencyCheck_FreeRecord(t *testing.T) {
	checks := &fakeChecks{}
	assert.NoError(t, NewDependencyCheck(checks).Ensure(context.Background(), entities.KindDepartment, 1, "ИТ"))
}
