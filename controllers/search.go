package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"
)

// SearchController 搜索控制器
type SearchController struct {
	Svc *service.SearchService
}

// NewSearchController 创建搜索控制器
func NewSearchController(svc *service.SearchService) *SearchController {
	return &SearchController{Svc: svc}
}

// SetTerm 更新搜索词，触发防抖查询
func (ctl *SearchController) SetTerm(c *gin.Context) {
	var req struct {
		Term string `json:"term"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}

	ctl.Svc.SetTerm(req.Term)
	utils.SuccessResponse(c, nil, "")
}

// Results 当前搜索结果，前端轮询获取
func (ctl *SearchController) Results(c *gin.Context) {
	utils.SuccessResponse(c, ctl.Svc.Results(), "")
}

// Search 立即搜索，跳过防抖
func (ctl *SearchController) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		utils.HandleError(c, utils.CreateBadRequestError("缺少查询参数 q"))
		return
	}

	ctl.Svc.SearchNow(term)
	utils.SuccessResponse(c, ctl.Svc.Results(), "")
}

// RecentSearches 最近搜索记录
func (ctl *SearchController) RecentSearches(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"recentSearches": ctl.Svc.RecentSearches()}, "")
}

// ClearRecentSearches 清空最近搜索记录
func (ctl *SearchController) ClearRecentSearches(c *gin.Context) {
	ctl.Svc.ClearRecentSearches()
	utils.SuccessResponse(c, nil, "已清空最近搜索")
}
