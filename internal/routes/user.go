package routes

import (
	"github.com/labstack/echo/v4"

	"it-inventory/internal/controllers"
	"it-inventory/pkg/middleware"
)

// пользователями управляет только администратор
func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users", authMW.RequireSuperuser)
	users.GET("", userCtrl.GetUsers)
	users.POST("", userCtrl.CreateUser)
}
