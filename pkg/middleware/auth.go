package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/services"
	"it-inventory/pkg/contextkeys"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

const (
	authViaToken   = "token"
	authViaSession = "session"
)

type AuthMiddleware struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthMiddleware(authService services.AuthServiceInterface, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, logger: logger}
}

// bearerToken: пустая строка, если заголовка нет.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// Auth определяет текущего пользователя по токену или cookie сессии и кладёт его в контекст.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			m.logger.Warn("Auth: неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, err, m.logger)
		}
		var cookieValue string
		if cookie, err := c.Cookie(utils.SessionCookieName); err == nil {
			cookieValue = cookie.Value
		}

		ctx := c.Request().Context()
		user, err := m.authService.CurrentUser(ctx, token, cookieValue)
		if err != nil {
			m.logger.Debug("Auth: пользователь не определен", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		via := authViaSession
		if token != "" {
			via = authViaToken
		}
		ctx = context.WithValue(ctx, contextkeys.UserKey, user)
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, contextkeys.AuthViaKey, via)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (m *AuthMiddleware) RequireActive(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := utils.GetUserFromCtx(c.Request().Context())
		if err == nil {
			err = m.authService.CheckActive(user)
		}
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		return next(c)
	}
}

func (m *AuthMiddleware) RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := utils.GetUserFromCtx(c.Request().Context())
		if err == nil {
			err = m.authService.CheckSuperuser(user)
		}
		if err != nil {
			m.logger.Warn("Доступ только для администратора", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		return next(c)
	}
}
