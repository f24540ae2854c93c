package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/services"
	"it-inventory/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	sessionTTL  time.Duration
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, sessionTTL time.Duration, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, sessionTTL: sessionTTL, logger: logger}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     utils.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	}
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Warn("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, bindError(err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	c.SetCookie(ctrl.sessionCookie(c, res.SessionCookie, int(ctrl.sessionTTL.Seconds())))
	return utils.SuccessResponse(c, dto.AuthResponseDTO{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		User:        toUserPublic(res.User),
	}, "Авторизация прошла успешно", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(utils.SessionCookieName); err == nil {
		if err := ctrl.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			ctrl.logger.Warn("Logout: не удалось удалить сессию", zap.Error(err))
		}
	}
	c.SetCookie(ctrl.sessionCookie(c, "", -1))
	return utils.SuccessResponse(c, nil, "Вы успешно вышли из системы.", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	user, err := utils.GetUserFromCtx(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, toUserPublic(user), "Профиль пользователя успешно получен", http.StatusOK)
}
