package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/services"
	"it-inventory/pkg/utils"
)

type DashboardController struct {
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{analyticsService: analyticsService, logger: logger}
}

func (ctrl *DashboardController) GetAnalytics(c echo.Context) error {
	dash, err := ctrl.analyticsService.Dashboard(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, dash, "Аналитика успешно получена", http.StatusOK)
}
