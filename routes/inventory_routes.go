package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
	"github.com/BerniceZTT/prep_end/middleware"
)

// RegisterInventoryRoutes 注册库存盘点相关路由
func RegisterInventoryRoutes(router *gin.Engine, ctl *controllers.InventoryController) {
	inventoryRoutes := router.Group("/api/inventory")

	inventoryRoutes.GET("/stock-counting", ctl.StockCounting)
	inventoryRoutes.GET("/weekly-stock-counting", ctl.WeeklyStockCounting)
	inventoryRoutes.GET("/stock-order", ctl.StockOrder)
	inventoryRoutes.GET("/pending", ctl.PendingUpdates)

	// 数量修改与批量保存需要认证
	authed := inventoryRoutes.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.PUT("/items/:id/quantity", ctl.AddPendingUpdate)
	authed.DELETE("/pending", ctl.ClearPendingUpdates)
	authed.POST("/save-all", ctl.SaveAll)
}
