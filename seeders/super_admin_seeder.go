package seeders

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

// SeedSuperAdmin создает администратора, если пользователя с таким email нет.
// Возвращает true, если пользователь был создан.
func SeedSuperAdmin(ctx context.Context, txManager repositories.TxManagerInterface, users repositories.UserRepositoryInterface, email, password string, logger *zap.Logger) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, apperrors.NewValidationError("admin", "не заданы SEED_ADMIN_EMAIL и SEED_ADMIN_PASSWORD")
	}

	created := false
	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := users.FindByEmail(ctx, email)
		if err == nil {
			logger.Info("Администратор уже существует, пропускаем", zap.String("email", email))
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		hashed, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		fullName := "Администратор"
		if _, err := users.Create(ctx, entities.User{
			Email:          email,
			HashedPassword: hashed,
			FullName:       &fullName,
			IsActive:       true,
			IsSuperuser:    true,
		}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		logger.Error("Ошибка создания администратора", zap.Error(err))
		return false, err
	}
	if created {
		logger.Info("Администратор создан", zap.String("email", email))
	}
	return created, nil
}
