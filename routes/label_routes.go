package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
	"github.com/BerniceZTT/prep_end/middleware"
)

// RegisterLabelRoutes 注册标签打印相关路由
func RegisterLabelRoutes(router *gin.Engine, ctl *controllers.LabelController) {
	labelRoutes := router.Group("/api/labels")

	labelRoutes.GET("/items", ctl.ListItems)
	labelRoutes.GET("/preview", ctl.Preview)
	labelRoutes.GET("/document", ctl.Document)

	// 修改选择状态与提交打印需要认证
	authed := labelRoutes.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.POST("/items/:id/selected", ctl.SetSelected)
	authed.POST("/select-all", ctl.SelectAll)
	authed.POST("/clear-all", ctl.ClearAll)
	authed.POST("/items/:id/count", ctl.SetCount)
	authed.POST("/items/:id/count/increment", ctl.IncrementCount)
	authed.POST("/items/:id/count/decrement", ctl.DecrementCount)
	authed.POST("/print", ctl.Submit)
}
