package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeletionError_ListsSamples(t *testing.T) {
	err := &DeletionError{
		Entity:        "Тип актива",
		Label:         "Компьютер",
		DependentKind: "активов",
		Count:         5,
		Samples:       []string{"'A' (инв. PC-20250115-001)", "'B' (инв. PC-20250115-002)", "'C' (инв. PC-20250115-003)"},
	}
	msg := err.Error()
	assert.Contains(t, msg, "'Компьютер'")
	assert.Contains(t, msg, "(5)")
	assert.Contains(t, msg, "PC-20250115-003")
	assert.Contains(t, msg, "и еще 2 активов")
	assert.ErrorIs(t, err, ErrDeletion)
}

func TestDeletionError_WithoutSamples(t *testing.T) {
	err := &DeletionError{Label: "ИТ отдел", DependentKind: "сотрудников", Count: 3}
	assert.Equal(t, "Невозможно удалить запись 'ИТ отдел', так как с ней связано 3 сотрудников.", err.Error())
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("Статус", 4))
	assert.ErrorIs(t, wrapped, ErrNotFound)

	var nf *NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.EqualValues(t, 4, nf.ID)

	assert.ErrorIs(t, NewDuplicateError("Актив", "serial_number", "SN1", ""), ErrDuplicate)
	assert.ErrorIs(t, NewValidationError("name", "обязательное поле"), ErrValidation)
	assert.ErrorIs(t, NewStorageError("insert", errors.New("conn reset")), ErrStorage)
}

func TestDuplicateError_CustomMessage(t *testing.T) {
	err := NewDuplicateError("Тип актива", "prefix", "PRN", "Тип актива с префиксом 'PRN' уже существует.")
	assert.Equal(t, "Тип актива с префиксом 'PRN' уже существует.", err.Error())
}
