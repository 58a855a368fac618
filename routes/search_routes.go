package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/controllers"
)

// RegisterSearchRoutes 注册食材搜索相关路由
func RegisterSearchRoutes(router *gin.Engine, ctl *controllers.SearchController) {
	searchRoutes := router.Group("/api/search")

	searchRoutes.POST("/term", ctl.SetTerm)
	searchRoutes.GET("/results", ctl.Results)
	searchRoutes.GET("", ctl.Search)
	searchRoutes.GET("/recent", ctl.RecentSearches)
	searchRoutes.DELETE("/recent", ctl.ClearRecentSearches)
}
