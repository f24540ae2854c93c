package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/services"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

// DictionaryController обслуживает любой справочник через общий контракт сервиса.
type DictionaryController[T any, C any, U any] struct {
	service services.DictionaryService[T, C, U]
	logger  *zap.Logger
}

func NewDictionaryController[T any, C any, U any](service services.DictionaryService[T, C, U], logger *zap.Logger) *DictionaryController[T, C, U] {
	return &DictionaryController[T, C, U]{service: service, logger: logger}
}

// Register вешает маршруты справочника на группу /dictionaries/<kind>.
func (c *DictionaryController[T, C, U]) Register(g *echo.Group, write ...echo.MiddlewareFunc) {
	kind := g.Group("/" + string(c.service.Kind()))
	kind.GET("", c.List)
	kind.GET("/count", c.Count)
	kind.GET("/:id", c.Find)
	kind.POST("", c.Create, write...)
	kind.PUT("/:id", c.Update, write...)
	kind.DELETE("/:id", c.Delete, write...)
}

func (c *DictionaryController[T, C, U]) label() string {
	return c.service.Kind().Meta().Label
}

func (c *DictionaryController[T, C, U]) List(ctx echo.Context) error {
	items, err := c.service.ListAll(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, items, "Справочник успешно получен", http.StatusOK)
}

func (c *DictionaryController[T, C, U]) Count(ctx echo.Context) error {
	total, err := c.service.Count(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]int64{"count": total}, "Количество записей", http.StatusOK)
}

func (c *DictionaryController[T, C, U]) Find(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	item, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if item == nil {
		return utils.ErrorResponse(ctx, apperrors.NewNotFoundError(c.label(), id), c.logger)
	}
	return utils.SuccessResponse(ctx, item, fmt.Sprintf("%s: запись найдена", c.label()), http.StatusOK)
}

func (c *DictionaryController[T, C, U]) Create(ctx echo.Context) error {
	var payload C
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	item, err := c.service.Create(reqCtx, payload, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, fmt.Sprintf("%s: запись создана", c.label()), http.StatusCreated)
}

func (c *DictionaryController[T, C, U]) Update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload U
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	item, err := c.service.Update(reqCtx, id, payload, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, fmt.Sprintf("%s: запись обновлена", c.label()), http.StatusOK)
}

func (c *DictionaryController[T, C, U]) Delete(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	if err := c.service.Delete(reqCtx, id, utils.ActorFromCtx(reqCtx)); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, fmt.Sprintf("%s: запись удалена", c.label()), http.StatusOK)
}
