package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "it-inventory/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapStorageError переводит ошибки драйвера в доменные.
func mapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &apperrors.DuplicateError{
				Field: pgErr.ConstraintName,
				Msg:   "Нарушено ограничение уникальности: " + pgErr.ConstraintName,
			}
		case pgCheckViolation:
			return &apperrors.ValidationError{Fields: map[string]string{
				strings.TrimSuffix(pgErr.ConstraintName, "_check"): "значение вне допустимого диапазона",
			}}
		case pgForeignKeyViolation:
			return &apperrors.ValidationError{Fields: map[string]string{
				pgErr.ConstraintName: "ссылка на несуществующую запись",
			}}
		}
	}
	return apperrors.NewStorageError(op, err)
}

// mapDeleteError - как mapStorageError, но нарушение внешнего ключа
// при удалении означает наличие зависимых записей.
func mapDeleteError(op, label string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &apperrors.DeletionError{Label: label, Count: 1, DependentKind: "зависимых записей (" + pgErr.TableName + ")"}
	}
	return mapStorageError(op, err)
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
