package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
	"github.com/BerniceZTT/prep_end/middleware"
)

// RegisterForecastRoutes 注册预测查看与审批相关路由
func RegisterForecastRoutes(router *gin.Engine, ctl *controllers.ForecastController) {
	forecastRoutes := router.Group("/api/forecasts")

	forecastRoutes.GET("/:date", ctl.GetForecasts)
	forecastRoutes.GET("/:date/approved", ctl.GetApprovedForecasts)
	forecastRoutes.GET("/:date/ingredients", ctl.GetIngredientForecasts)

	// 审批需要认证
	authed := forecastRoutes.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.POST("/approve", ctl.ApproveForecasts)
}
