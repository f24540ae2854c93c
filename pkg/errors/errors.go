package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrInvalidCredentials = fmt.Errorf("неверный email или пароль")
	ErrUnauthenticated    = fmt.Errorf("требуется аутентификация")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrInactiveUser       = fmt.Errorf("пользователь деактивирован")
	ErrSessionNotFound    = fmt.Errorf("сессия не найдена")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrDuplicate  = fmt.Errorf("запись уже существует")
	ErrDeletion   = fmt.Errorf("запись невозможно удалить")
	ErrValidation = fmt.Errorf("ошибка валидации")
	ErrStorage    = fmt.Errorf("ошибка хранилища данных")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// NotFoundError - ссылка на несуществующую сущность.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Не найдено: %s с id=%d.", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateError - нарушение правила уникальности (простого или составного).
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
	Msg    string
}

func (e *DuplicateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s с полем '%s' = '%s' уже существует.", e.Entity, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func NewDuplicateError(entity, field, value, msg string) error {
	return &DuplicateError{Entity: entity, Field: field, Value: value, Msg: msg}
}

// DeletionError - на запись ссылаются другие сущности.
type DeletionError struct {
	Entity        string
	Label         string
	DependentKind string
	Count         int64
	// Samples заполняется только для ссылок со стороны активов.
	Samples []string
}

func (e *DeletionError) Error() string {
	if len(e.Samples) > 0 {
		list := strings.Join(e.Samples, ", ")
		if rest := e.Count - int64(len(e.Samples)); rest > 0 {
			list += fmt.Sprintf(" и еще %d активов", rest)
		}
		return fmt.Sprintf("Невозможно удалить запись '%s', так как с ней связаны активы (%d): %s.", e.Label, e.Count, list)
	}
	return fmt.Sprintf("Невозможно удалить запись '%s', так как с ней связано %d %s.", e.Label, e.Count, e.DependentKind)
}

func (e *DeletionError) Is(target error) bool { return target == ErrDeletion }

// ValidationError - диагностика входных данных по полям.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "Ошибка валидации: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// StorageError оборачивает ошибку драйвера БД.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	// доменные ошибки не переупаковываем
	for _, domain := range []error{ErrNotFound, ErrDuplicate, ErrDeletion, ErrValidation, ErrStorage} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
