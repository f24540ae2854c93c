package routes

import (
	"github.com/labstack/echo/v4"

	"it-inventory/internal/controllers"
)

func runAssetRouter(secureGroup *echo.Group, assetCtrl *controllers.AssetController) {
	assets := secureGroup.Group("/assets")
	{
		assets.GET("", assetCtrl.GetAssets)
		assets.GET("/dashboard", assetCtrl.Dashboard)
		assets.POST("", assetCtrl.CreateAsset)
		assets.POST("/bulk-delete", assetCtrl.BulkDeleteAssets)
		assets.POST("/bulk-update", assetCtrl.BulkUpdateAssets)
		assets.GET("/:id", assetCtrl.FindAsset)
		assets.PUT("/:id", assetCtrl.UpdateAsset)
		assets.DELETE("/:id", assetCtrl.DeleteAsset)
	}
	secureGroup.GET("/tags/search", assetCtrl.SearchTags)
}
