package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/types"
	"it-inventory/pkg/validation"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type ListBody struct {
	List       interface{}      `json:"list"`
	Pagination types.Pagination `json:"pagination"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

func PaginatedResponse(ctx echo.Context, list interface{}, pagination types.Pagination, message string) error {
	return SuccessResponse(ctx, ListBody{List: list, Pagination: pagination}, message, http.StatusOK)
}

// StatusFor сопоставляет доменную ошибку с HTTP-кодом.
func StatusFor(err error) int {
	if _, ok := validation.FieldErrors(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrDeletion):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrInvalidSigningMethod),
		errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInactiveUser), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	code := StatusFor(err)
	response := &HTTPResponse{Status: false, Message: err.Error()}

	if fields, ok := validation.FieldErrors(err); ok {
		response.Message = apperrors.ErrValidation.Error()
		response.Body = fields
		return c.JSON(code, response)
	}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		response.Body = verr.Fields
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		response.Message = http.StatusText(code)
	}

	if code == http.StatusInternalServerError {
		logger.Error("Внутренняя ошибка при обработке запроса",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		response.Message = "Внутренняя ошибка сервера"
	}
	return c.JSON(code, response)
}
