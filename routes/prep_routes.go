package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
	"github.com/BerniceZTT/prep_end/middleware"
)

// RegisterPrepRoutes 注册备餐流程相关路由
func RegisterPrepRoutes(router *gin.Engine, ctl *controllers.PrepController) {
	prepRoutes := router.Group("/api/prep")

	// 读操作
	prepRoutes.GET("/items", ctl.ListItems)
	prepRoutes.GET("/refresh-key", ctl.RefreshKey)
	prepRoutes.GET("/ingredients/:ingredientId", ctl.Detail)

	// 写操作需要认证
	authed := prepRoutes.Group("")
	authed.Use(middleware.AuthMiddleware())

	authed.POST("/items/:id/start", ctl.StartPrep)
	authed.POST("/items/:id/increment", ctl.Increment)
	authed.POST("/items/:id/decrement", ctl.Decrement)
	authed.POST("/items/:id/check-temp", ctl.ConfirmTempCheck)
	authed.POST("/items/:id/prepared", ctl.MarkPrepared)
	authed.POST("/items/:id/prepare-more", ctl.PrepareMore)
	authed.POST("/prep-all", ctl.PrepAll)
	authed.PATCH("/ingredients/:ingredientId/on-hand", ctl.UpdateOnHand)
	authed.PATCH("/ingredients/:ingredientId/expired", ctl.UpdateExpired)
	authed.DELETE("/ingredients/:ingredientId/expired", ctl.ClearExpired)
}
