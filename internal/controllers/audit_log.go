package controllers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/services"
	"it-inventory/pkg/utils"
)

type AuditLogController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditLogController(auditService services.AuditServiceInterface, logger *zap.Logger) *AuditLogController {
	return &AuditLogController{auditService: auditService, logger: logger}
}

func (c *AuditLogController) GetAuditLogs(ctx echo.Context) error {
	filter := utils.ParseAuditFilterFromQuery(ctx.Request().URL.Query())

	logs, pagination, err := c.auditService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, logs, pagination, "Журнал действий успешно получен")
}
