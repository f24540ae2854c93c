package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
)

const employeeTable = "employees"

var employeeColumns = []string{
	"id", "last_name", "first_name", "patronymic", "employee_code", "email", "phone", "department_id",
	"created_at", "updated_at",
}

type EmployeeRepositoryInterface interface {
	ListAll(ctx context.Context) ([]entities.Employee, error)
	FindByID(ctx context.Context, id int64) (*entities.Employee, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, item entities.Employee) (*entities.Employee, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*entities.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type EmployeeRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEmployeeRepository(storage *pgxpool.Pool, logger *zap.Logger) EmployeeRepositoryInterface {
	return &EmployeeRepository{storage: storage, logger: logger}
}

func scanEmployee(row pgx.Row) (*entities.Employee, error) {
	var e entities.Employee
	err := row.Scan(
		&e.ID, &e.LastName, &e.FirstName, &e.Patronymic, &e.EmployeeCode, &e.Email, &e.Phone,
		&e.DepartmentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования сотрудника", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select(employeeColumns...).From(employeeTable).PlaceholderFormat(sq.Dollar)
}

func (r *EmployeeRepository) ListAll(ctx context.Context) ([]entities.Employee, error) {
	query, args, err := r.selectBuilder().OrderBy("last_name", "first_name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("ошибка получения сотрудников", err)
	}
	defer rows.Close()

	items := make([]entities.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*entities.Employee, error) {
	query, args, err := r.selectBuilder().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEmployee(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *EmployeeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := dbFrom(ctx, r.storage).QueryRow(ctx, "SELECT COUNT(*) FROM "+employeeTable).Scan(&total); err != nil {
		return 0, mapStorageError("ошибка подсчета сотрудников", err)
	}
	return total, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, item entities.Employee) (*entities.Employee, error) {
	query, args, err := sq.Insert(employeeTable).
		PlaceholderFormat(sq.Dollar).
		Columns("last_name", "first_name", "patronymic", "employee_code", "email", "phone", "department_id").
		Values(item.LastName, item.FirstName, item.Patronymic, item.EmployeeCode, item.Email, item.Phone, item.DepartmentID).
		Suffix("RETURNING " + joinColumns(employeeColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanEmployee(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *EmployeeRepository) Update(ctx context.Context, id int64, fields map[string]any) (*entities.Employee, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}
	query, args, err := sq.Update(employeeTable).
		PlaceholderFormat(sq.Dollar).
		SetMap(fields).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(employeeColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanEmployee(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	result, err := dbFrom(ctx, r.storage).Exec(ctx, "DELETE FROM "+employeeTable+" WHERE id = $1", id)
	if err != nil {
		return mapDeleteError("ошибка удаления сотрудника", "Сотрудник", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
