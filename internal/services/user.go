package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

const entityUser = "User"

type UserServiceInterface interface {
	List(ctx context.Context) ([]entities.User, error)
	Create(ctx context.Context, in dto.CreateUserDTO, actor *entities.Actor) (*entities.User, error)
}

type UserService struct {
	txManager repositories.TxManagerInterface
	repo      repositories.UserRepositoryInterface
	audit     AuditServiceInterface
	logger    *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	repo repositories.UserRepositoryInterface,
	audit AuditServiceInterface,
	logger *zap.Logger,
) *UserService {
	return &UserService{txManager: txManager, repo: repo, audit: audit, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]entities.User, error) {
	return runList(ctx, s.txManager, s.repo.List)
}

func (s *UserService) Create(ctx context.Context, in dto.CreateUserDTO, actor *entities.Actor) (*entities.User, error) {
	email := normalizeEmail(in.Email)
	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *entities.User
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return apperrors.NewDuplicateError("Пользователь", "email", email, "")
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}
		created, err = s.repo.Create(ctx, entities.User{
			Email:          email,
			HashedPassword: hashed,
			FullName:       emptyToNil(in.FullName.Ptr()),
			IsActive:       true,
			IsSuperuser:    in.IsSuperuser,
		})
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, entities.ActionCreate, entityUser, created.ID, map[string]any{
			"email":        created.Email,
			"is_superuser": created.IsSuperuser,
		}, actor)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании пользователя", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.Int64("id", created.ID))
	return created, nil
}
