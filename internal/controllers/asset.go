package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/services"
	"it-inventory/pkg/utils"
)

type AssetController struct {
	assetService services.AssetServiceInterface
	logger       *zap.Logger
}

func NewAssetController(assetService services.AssetServiceInterface, logger *zap.Logger) *AssetController {
	return &AssetController{assetService: assetService, logger: logger}
}

func (c *AssetController) GetAssets(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	devices, pagination, err := c.assetService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, devices, pagination, "Список активов успешно получен")
}

func (c *AssetController) FindAsset(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	device, err := c.assetService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Актив успешно найден", http.StatusOK)
}

func (c *AssetController) CreateAsset(ctx echo.Context) error {
	var payload dto.CreateAssetDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("CreateAsset: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	device, err := c.assetService.Create(reqCtx, payload, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Актив успешно создан", http.StatusCreated)
}

// UpdateAsset читает тело целиком, чтобы отличить отсутствующее поле от явного null.
func (c *AssetController) UpdateAsset(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}

	var payload dto.UpdateAssetDTO
	if err := json.Unmarshal(raw, &payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if payload.Provided, err = utils.ProvidedFields(raw); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	device, err := c.assetService.Update(reqCtx, id, payload, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Актив успешно обновлен", http.StatusOK)
}

func (c *AssetController) DeleteAsset(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	if err := c.assetService.Delete(reqCtx, id, utils.ActorFromCtx(reqCtx)); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Актив успешно удален", http.StatusOK)
}

func (c *AssetController) BulkDeleteAssets(ctx echo.Context) error {
	var payload dto.BulkDeleteAssetsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	deleted, errs, err := c.assetService.BulkDelete(reqCtx, payload.IDs, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.BulkDeleteResultDTO{Deleted: deleted, Errors: errs}, "Активы удалены", http.StatusOK)
}

func (c *AssetController) BulkUpdateAssets(ctx echo.Context) error {
	var payload dto.BulkUpdateAssetsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	updated, err := c.assetService.BulkUpdate(reqCtx, payload, utils.ActorFromCtx(reqCtx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.BulkUpdateResultDTO{Updated: updated}, "Активы обновлены", http.StatusOK)
}

func (c *AssetController) Dashboard(ctx echo.Context) error {
	dash, err := c.assetService.DashboardCounts(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dash, "Сводка по активам", http.StatusOK)
}

func (c *AssetController) SearchTags(ctx echo.Context) error {
	tags, err := c.assetService.SearchTags(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, tags, "Теги найдены", http.StatusOK)
}
