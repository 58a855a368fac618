package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Prep      *controllers.PrepController
	Forecast  *controllers.ForecastController
	Label     *controllers.LabelController
	Search    *controllers.SearchController
	Inventory *controllers.InventoryController
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, ctls Controllers) {
	RegisterPrepRoutes(router, ctls.Prep)
	RegisterForecastRoutes(router, ctls.Forecast)
	RegisterLabelRoutes(router, ctls.Label)
	RegisterSearchRoutes(router, ctls.Search)
	RegisterInventoryRoutes(router, ctls.Inventory)

	// 健康检查路由
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
