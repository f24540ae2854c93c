package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
)

const userTable = "users"

var userColumns = []string{"id", "email", "hashed_password", "full_name", "is_active", "is_superuser", "created_at", "updated_at"}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	Create(ctx context.Context, user entities.User) (*entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.FullName,
		&user.IsActive, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapStorageError("ошибка сканирования пользователя", err)
	}
	return &user, nil
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq) (*entities.User, error) {
	query, args, err := sq.Select(userColumns...).From(userTable).Where(where).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) List(ctx context.Context) ([]entities.User, error) {
	query, args, err := sq.Select(userColumns...).From(userTable).OrderBy("id").PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError("ошибка получения пользователей", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, user entities.User) (*entities.User, error) {
	query, args, err := sq.Insert(userTable).
		PlaceholderFormat(sq.Dollar).
		Columns("email", "hashed_password", "full_name", "is_active", "is_superuser").
		Values(user.Email, user.HashedPassword, user.FullName, user.IsActive, user.IsSuperuser).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(dbFrom(ctx, r.storage).QueryRow(ctx, query, args...))
}
