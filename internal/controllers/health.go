package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

const healthTimeout = 3 * time.Second

// Pinger - всё, что умеет проверить соединение (пул БД, клиент Redis).
type Pinger func(ctx context.Context) error

type HealthController struct {
	db     Pinger
	cache  Pinger
	logger *zap.Logger
}

func NewHealthController(db, cache Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, cache: cache, logger: logger}
}

func (c *HealthController) Health(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"database": "ok", "cache": "ok"}
	if err := c.db(reqCtx); err != nil {
		c.logger.Error("Health: база данных недоступна", zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewStorageError("проверка базы данных", err), c.logger)
	}
	if c.cache != nil {
		if err := c.cache(reqCtx); err != nil {
			c.logger.Warn("Health: кеш недоступен", zap.Error(err))
			status["cache"] = fmt.Sprintf("error: %v", err)
		}
	}
	return utils.SuccessResponse(ctx, status, "Сервис работает", http.StatusOK)
}
