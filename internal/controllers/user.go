package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/services"
	"it-inventory/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	users, err := c.userService.List(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list := make([]dto.UserPublicDTO, 0, len(users))
	for i := range users {
		list = append(list, toUserPublic(&users[i]))
	}
	return utils.SuccessResponse(ctx, list, "Список пользователей успешно получен", http.StatusOK)
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	var payload dto.CreateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.userService.Create(ctx.Request().Context(), payload, utils.ActorFromCtx(ctx.Request().Context()))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, toUserPublic(created), "Пользователь успешно создан", http.StatusCreated)
}
