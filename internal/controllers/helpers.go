package controllers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
)

func parseID(ctx echo.Context) (int64, error) {
	raw := ctx.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: неверный ID '%s'", apperrors.ErrBadRequest, raw)
	}
	return id, nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: неверный формат данных (%v)", apperrors.ErrBadRequest, err)
}

func toUserPublic(u *entities.User) dto.UserPublicDTO {
	return dto.UserPublicDTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}
