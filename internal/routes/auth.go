package routes

import (
	"github.com/labstack/echo/v4"

	"it-inventory/internal/controllers"
	"it-inventory/pkg/middleware"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout", authCtrl.Logout)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth, authMW.RequireActive)
	}
}
